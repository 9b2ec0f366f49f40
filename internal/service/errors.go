package service

import (
	"errors"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
	"github.com/listenupapp/listenup-flags/internal/store"
)

// translate converts store errors into domain errors. Other errors pass through.
func translate(err error) error {
	var se *store.Error
	if !errors.As(err, &se) {
		return err
	}

	switch {
	case errors.Is(se, store.ErrNotFound):
		return domainerrors.NotFound(se.Message)
	case errors.Is(se, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(se.Message)
	case errors.Is(se, store.ErrInvalidInput):
		return domainerrors.Validation(se.Message)
	default:
		return domainerrors.Internal(se.Message)
	}
}
