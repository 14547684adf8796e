package sqlite

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/miapp/secure-notes/internal/core/domain"
)

// mapError translates driver errors into the domain taxonomy. The driver
// error stays in the chain for logging.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch {
		case sqliteErr.Code == sqlite3.ErrBusy, sqliteErr.Code == sqlite3.ErrLocked:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageBusy, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrUserExists, err)
		case sqliteErr.ExtendedCode == sqlite3.ErrConstraintCheck:
			// Schema CHECKs mirror domain validation; a hit here is bad input.
			return fmt.Errorf("%s: %w: %w", op, domain.ErrValidation, err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageBusy, err)
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}
