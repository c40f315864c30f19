package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/pkg/database"
)

var (
	// ErrNotFound replaces gorm.ErrRecordNotFound and zero-row writes.
	ErrNotFound = errors.New("repositories: record not found")

	// ErrDuplicate is a unique-key violation on insert.
	ErrDuplicate = errors.New("repositories: record already exists")

	// ErrConflict means a conditional update matched no row because the
	// record changed state concurrently.
	ErrConflict = errors.New("repositories: record changed concurrently")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case database.IsUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}
