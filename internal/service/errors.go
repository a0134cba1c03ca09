package service

import (
	"errors"

	"print-order-service/internal/repository"
)

var (
	ErrNotFound        = repository.ErrNotFound
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidStatus   = errors.New("invalid status value")
	ErrMissingIdentity = errors.New("missing identity")
	ErrEmptyNote       = errors.New("admin note is required")
	ErrNothingSelected = errors.New("no cart lines selected")
	ErrInvalidProduct  = errors.New("invalid product")
)
