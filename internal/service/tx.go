package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-fleet-api/internal/repository"
	appErrors "github.com/noah-isme/campus-fleet-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// busCachePattern covers every cached bus listing.
const busCachePattern = "fleet:buses:*"

// runInTx runs fn in one transaction. Any error from fn, or a panic, rolls
// the transaction back.
func runInTx(ctx context.Context, provider txProvider, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := provider.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Internal(err, "failed to start transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeError(err, "failed to commit transaction")
	}
	return nil
}

var constraintMessages = map[string]string{
	"buses_bus_number_key":           "bus number already registered",
	"buses_registration_number_key":  "registration number already registered",
	"buses_chassis_number_key":       "chassis number already registered",
	"buses_engine_number_key":        "engine number already registered",
	"buses_driver_id_key":            "driver already assigned to another bus",
	"buses_conductor_id_key":         "conductor already assigned to another bus",
	"drivers_assigned_bus_id_key":    "bus already has a driver bound to it",
	"conductors_assigned_bus_id_key": "bus already has a conductor bound to it",
	"drivers_employee_code_key":      "employee code already used by another driver",
	"conductors_employee_code_key":   "employee code already used by another conductor",
}

// storeError turns a persistence failure into an application error. Errors
// that are already typed pass through unchanged.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case repository.IsUniqueViolation(err):
		msg, ok := constraintMessages[repository.ConstraintName(err)]
		if !ok {
			msg = "record already exists"
		}
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, msg)
	case repository.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "referenced record changed, retry")
	case repository.IsLockTimeout(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "bus is being updated by another request, retry")
	case repository.IsCheckViolation(err):
		if repository.ConstraintName(err) == "buses_seating_ceiling" {
			return appErrors.Wrap(err, appErrors.ErrCapacityExceeded.Code, appErrors.ErrCapacityExceeded.Status, appErrors.ErrCapacityExceeded.Message)
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "value out of range")
	default:
		return appErrors.Internal(err, message)
	}
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// lookupError reports a missing row as "<what> not found".
func lookupError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return storeError(err, "failed to load "+what)
}
