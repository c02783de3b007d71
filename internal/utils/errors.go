package utils

import (
	"errors"
	"net/http"
)

// Common application errors used across services. Services wrap them with
// fmt.Errorf("...: %w", err) so handlers can map them with errors.Is.
var (
	ErrValidation          = errors.New("VALIDATION_ERROR")
	ErrInvalidCredentials  = errors.New("INVALID_CREDENTIALS")
	ErrUnauthenticated     = errors.New("UNAUTHENTICATED")
	ErrMalformedAuthHeader = errors.New("MALFORMED_AUTH_HEADER")
	ErrInvalidToken        = errors.New("INVALID_TOKEN")
	ErrUserNotFound        = errors.New("USER_NOT_FOUND")
	ErrUserExists          = errors.New("USER_EXISTS")
	ErrProductNotFound     = errors.New("PRODUCT_NOT_FOUND")
	ErrUploadRejected      = errors.New("UPLOAD_REJECTED")
	ErrUploadTimeout       = errors.New("UPLOAD_TIMEOUT")
	ErrMediaStore          = errors.New("MEDIA_STORE_ERROR")
)

// StatusFor maps an error to its HTTP status and API error code.
// Anything outside the taxonomy is reported as an internal error.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUploadRejected):
		return http.StatusBadRequest, ErrValidation.Error()
	case errors.Is(err, ErrMalformedAuthHeader):
		return http.StatusBadRequest, ErrMalformedAuthHeader.Error()
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrInvalidCredentials.Error()
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, ErrUnauthenticated.Error()
	case errors.Is(err, ErrUserNotFound):
		return http.StatusUnauthorized, ErrUserNotFound.Error()
	case errors.Is(err, ErrInvalidToken):
		return http.StatusForbidden, ErrInvalidToken.Error()
	case errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound, ErrProductNotFound.Error()
	case errors.Is(err, ErrUserExists):
		return http.StatusConflict, ErrUserExists.Error()
	case errors.Is(err, ErrUploadTimeout):
		return http.StatusInternalServerError, ErrUploadTimeout.Error()
	case errors.Is(err, ErrMediaStore):
		return http.StatusInternalServerError, ErrMediaStore.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
