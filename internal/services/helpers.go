package services

import (
	"errors"
	"fmt"
	"log/slog"

	"repairdesk/internal/storage"
)

// mapRepoError maps storage errors to service errors
func mapRepoError(err error, operation string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, operation)
	}
	if errors.Is(err, storage.ErrStaleStatus) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	if errors.Is(err, storage.ErrConflict) {
		return fmt.Errorf("%w: %s (%v)", ErrConflict, operation, err)
	}
	// Log other unexpected errors
	slog.Error("unexpected repository error", slog.String("operation", operation), slog.Any("error", err))
	return fmt.Errorf("internal error during %s: %w", operation, err)
}
