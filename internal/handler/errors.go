package handler

import (
	"errors"
	"net/http"

	"github.com/locvowork/ltxbench/internal/domain"
	"github.com/locvowork/ltxbench/internal/service"
	"github.com/locvowork/ltxbench/pkg/evalworkbook"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case evalworkbook.IsConfigurationError(err), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
