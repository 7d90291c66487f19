package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vending-inventory/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes raised by the schema constraints
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"

	// class 22 covers out of range numbers and malformed values
	pgDataExceptionClass = "22"
)

// Constraint names declared in migrations/
const (
	constraintProductName        = "products_name_key"
	constraintMachineName        = "vending_machines_name_key"
	constraintStockMachine       = "stocks_machine_product_key"
	constraintStockMachineFK     = "stocks_machine_id_fkey"
	constraintStockProductFK     = "stocks_product_id_fkey"
	constraintProductPriceCheck  = "products_price_check"
	constraintStockQuantityCheck = "stocks_quantity_check"
)

// classify maps a driver error to a domain failure kind. Constraint violations
// and data exceptions become their kind, anything else is wrapped as
// ErrStoreUnavailable.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, pgDataExceptionClass) {
			return fmt.Errorf("failed to %s: %w: %s", op, domain.ErrInvalidInput, pgErr.Message)
		}
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case constraintProductName:
				return domain.ErrDuplicateProductName
			case constraintMachineName:
				return domain.ErrDuplicateMachineName
			case constraintStockMachine:
				return domain.ErrAlreadyStocked
			}
			return fmt.Errorf("failed to %s: %w", op, domain.ErrDuplicateName)
		case pgForeignKeyViolation:
			switch pgErr.ConstraintName {
			case constraintStockMachineFK:
				return domain.ErrMachineNotFound
			case constraintStockProductFK:
				return domain.ErrProductNotFound
			}
		case pgCheckViolation:
			switch pgErr.ConstraintName {
			case constraintProductPriceCheck:
				return &domain.InvalidInputError{Field: "price", Rule: "gte", Param: "1"}
			case constraintStockQuantityCheck:
				return &domain.InvalidInputError{Field: "quantity", Rule: "gte", Param: "0"}
			}
			return fmt.Errorf("failed to %s: %w", op, domain.ErrInvalidInput)
		}
	}

	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// isForeignKeyViolation reports whether err was raised by the named foreign key
func isForeignKeyViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == constraint
}
