package api

import (
	"errors"
	"net/http"

	"pinot-bridge/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
// QueryNotPushedDown is a user error (the query shape or session policy),
// never a system fault; metadata unavailability is a bad-gateway condition
// so the caller's retry policy applies.
func httpStatusFromDomainError(err error) int {
	var notPushedDown *domain.QueryNotPushedDownError
	var validation *domain.ValidationError
	var unavailable *domain.UnavailableError

	switch {
	case errors.As(err, &notPushedDown):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
