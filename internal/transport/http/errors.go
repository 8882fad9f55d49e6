package http

import (
	"errors"

	apierrors "uddannelsebi/internal/errors"
	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/services"
)

// toAPIError maps service sentinels onto API errors. Errors it does not
// know are returned unchanged for the ErrorHandler to classify.
func toAPIError(err error, selection interface{}) error {
	switch {
	case errors.Is(err, services.ErrNoCoordinates):
		return apierrors.NoCoordinatesError(err.Error(), selection)
	case errors.Is(err, services.ErrDirectionIncomplete):
		return apierrors.DirectionIncompleteError(services.ErrDirectionIncomplete.Error(), selection)
	case errors.Is(err, services.ErrNoData),
		errors.Is(err, services.ErrLineNotFound),
		errors.Is(err, services.ErrCombinationNotFound):
		msg, _ := services.Warning(err)
		return apierrors.NoDataError(msg, selection)
	case errors.Is(err, services.ErrUnknownChart):
		return apierrors.NotFoundError("chart")
	case errors.Is(err, services.ErrInvalidYear):
		return apierrors.ErrValidation("year", err.Error())
	case errors.Is(err, services.ErrInvalidMeasure):
		return apierrors.ErrValidation("measure", err.Error())
	case errors.Is(err, forecast.ErrInsufficientData):
		return apierrors.InsufficientDataError(err)
	}
	return err
}
