package middleware

import (
	"encoding/json"
	"net/http"

	apierrors "uddannelsebi/internal/errors"
)

// problemType picks the problem type of a failure raised by the middleware
// chain itself, before any handler ran.
func problemType(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return apierrors.TypeRateLimit
	case http.StatusGatewayTimeout:
		return apierrors.TypeTimeout
	case http.StatusInternalServerError:
		return apierrors.TypeInternal
	}
	return "about:blank"
}

// writeProblem answers with an RFC 7807 body carrying the request ID as
// trace_id. It does not go through render so it works after a panic.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	problem := apierrors.NewProblemDetails(status, problemType(status), http.StatusText(status), detail, r.URL.Path).
		WithExtension("trace_id", GetRequestID(r.Context()))

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}
