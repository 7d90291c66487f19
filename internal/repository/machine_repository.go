package repository

import (
	"context"
	"database/sql"
	"errors"

	"vending-inventory/internal/domain"
)

// MachineRepository defines the interface for vending machine data access
type MachineRepository interface {
	Create(ctx context.Context, machine *domain.VendingMachine) error
	Update(ctx context.Context, machine *domain.VendingMachine) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.VendingMachine, error)
	// FindByIDForUpdate also locks the row until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.VendingMachine, error)
	List(ctx context.Context) ([]*domain.VendingMachine, error)
}

type machineRepository struct {
	db DBTX
}

// NewMachineRepository creates a new instance of MachineRepository
func NewMachineRepository(db DBTX) MachineRepository {
	return &machineRepository{db: db}
}

const selectMachine = `
	SELECT id, name, location, created_at, updated_at
	FROM vending_machines
`

func (r *machineRepository) Create(ctx context.Context, machine *domain.VendingMachine) error {
	query := `
		INSERT INTO vending_machines (name, location)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, machine.Name, machine.Location).Scan(
		&machine.ID,
		&machine.CreatedAt,
		&machine.UpdatedAt,
	)
	if err != nil {
		return classify(err, "create vending machine")
	}

	return nil
}

func (r *machineRepository) Update(ctx context.Context, machine *domain.VendingMachine) error {
	query := `
		UPDATE vending_machines
		SET name = $2, location = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, machine.ID, machine.Name, machine.Location).Scan(&machine.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrMachineNotFound
		}
		return classify(err, "update vending machine")
	}

	return nil
}

// Delete removes a machine row. Its stock lines go with it through ON DELETE CASCADE.
func (r *machineRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vending_machines WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete vending machine")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(err, "get rows affected")
	}

	if rowsAffected == 0 {
		return domain.ErrMachineNotFound
	}

	return nil
}

func (r *machineRepository) FindByID(ctx context.Context, id int64) (*domain.VendingMachine, error) {
	return r.findOne(ctx, selectMachine+` WHERE id = $1`, id)
}

func (r *machineRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.VendingMachine, error) {
	return r.findOne(ctx, selectMachine+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *machineRepository) findOne(ctx context.Context, query string, id int64) (*domain.VendingMachine, error) {
	machine := &domain.VendingMachine{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&machine.ID,
		&machine.Name,
		&machine.Location,
		&machine.CreatedAt,
		&machine.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMachineNotFound
		}
		return nil, classify(err, "find vending machine by ID")
	}

	return machine, nil
}

func (r *machineRepository) List(ctx context.Context) ([]*domain.VendingMachine, error) {
	rows, err := r.db.QueryContext(ctx, selectMachine+` ORDER BY id ASC`)
	if err != nil {
		return nil, classify(err, "list vending machines")
	}
	defer rows.Close()

	machines := []*domain.VendingMachine{}
	for rows.Next() {
		machine := &domain.VendingMachine{}
		if err := rows.Scan(
			&machine.ID,
			&machine.Name,
			&machine.Location,
			&machine.CreatedAt,
			&machine.UpdatedAt,
		); err != nil {
			return nil, classify(err, "scan vending machine")
		}
		machines = append(machines, machine)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err, "iterate vending machines")
	}

	return machines, nil
}
