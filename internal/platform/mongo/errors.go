package mongo

import (
	"errors"
	"fmt"

	"github.com/phrazzld/tasker/internal/store"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
)

// MapError maps a driver error to an appropriate store error.
// It wraps the original error to preserve context.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, mongodrv.ErrNoDocuments):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case mongodrv.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: duplicate key: %v", store.ErrInvalidEntity, err)
	}

	return err
}
