package services

import (
	"errors"

	"uddannelsebi/internal/forecast"
	"uddannelsebi/internal/geo"
)

// Selection warnings. Their messages are shown to the user as is.
var (
	ErrNoData              = errors.New("Ingen data fundet for det valgte valg.")
	ErrLineNotFound        = errors.New("Ingen data fundet for den valgte FagLinje.")
	ErrCombinationNotFound = errors.New("Ingen data for den valgte kombination.")
	ErrNoCoordinates       = geo.ErrNoCoordinates
	ErrDirectionIncomplete = forecast.ErrDirectionIncomplete
)

// Request errors
var (
	ErrUnknownChart   = errors.New("unknown chart")
	ErrInvalidYear    = errors.New("invalid year")
	ErrInvalidMeasure = errors.New("invalid measure")
)

var warnings = []error{
	ErrNoData,
	ErrLineNotFound,
	ErrCombinationNotFound,
	ErrNoCoordinates,
	ErrDirectionIncomplete,
}

// Warning reports whether err is an empty selection rather than a failure,
// and returns the message to show in that case.
func Warning(err error) (string, bool) {
	for _, w := range warnings {
		if errors.Is(err, w) {
			return w.Error(), true
		}
	}
	return "", false
}
