package utils

import (
	"errors"
	"net/http"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrQuotaExceeded     = errors.New("client limit reached for current plan")
	ErrArtifactPipeline  = errors.New("receipt artifact generation failed")
	ErrReceiptMissing    = errors.New("receipt record missing")
	ErrStorage           = errors.New("file storage unavailable")
)

// StatusFor maps an error from any service to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrArtifactPipeline), errors.Is(err, ErrStorage):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text put in the error envelope. Internal failures are not echoed.
func PublicMessage(err error) string {
	if StatusFor(err) == http.StatusInternalServerError {
		if errors.Is(err, ErrReceiptMissing) {
			return "Receipt record missing"
		}
		return "Internal server error"
	}
	return err.Error()
}
