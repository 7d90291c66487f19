package repository

import (
	"context"
	"database/sql"
	"errors"

	"vending-inventory/internal/domain"
)

// StockRepository defines the interface for stock line data access
type StockRepository interface {
	Create(ctx context.Context, stock *domain.Stock) error
	Find(ctx context.Context, machineID, productID int64) (*domain.Stock, error)
	UpdateQuantity(ctx context.Context, stock *domain.Stock) error
	Delete(ctx context.Context, machineID, productID int64) error
	DeleteByMachine(ctx context.Context, machineID int64) (int64, error)
	ListByMachine(ctx context.Context, machineID int64) ([]domain.StockLine, error)
	List(ctx context.Context) ([]*domain.Stock, error)
}

type stockRepository struct {
	db DBTX
}

// NewStockRepository creates a new instance of StockRepository
func NewStockRepository(db DBTX) StockRepository {
	return &stockRepository{db: db}
}

// Create inserts a stock line. The (machine_id, product_id) unique constraint
// turns a concurrent duplicate into ErrAlreadyStocked.
func (r *stockRepository) Create(ctx context.Context, stock *domain.Stock) error {
	query := `
		INSERT INTO stocks (machine_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, stock.MachineID, stock.ProductID, stock.Quantity).Scan(
		&stock.ID,
		&stock.CreatedAt,
		&stock.UpdatedAt,
	)
	if err != nil {
		return classify(err, "create stock line")
	}

	return nil
}

func (r *stockRepository) Find(ctx context.Context, machineID, productID int64) (*domain.Stock, error) {
	query := `
		SELECT id, machine_id, product_id, quantity, created_at, updated_at
		FROM stocks
		WHERE machine_id = $1 AND product_id = $2
	`

	stock := &domain.Stock{}
	err := r.db.QueryRowContext(ctx, query, machineID, productID).Scan(
		&stock.ID,
		&stock.MachineID,
		&stock.ProductID,
		&stock.Quantity,
		&stock.CreatedAt,
		&stock.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotStocked
		}
		return nil, classify(err, "find stock line")
	}

	return stock, nil
}

func (r *stockRepository) UpdateQuantity(ctx context.Context, stock *domain.Stock) error {
	query := `
		UPDATE stocks
		SET quantity = $3, updated_at = NOW()
		WHERE machine_id = $1 AND product_id = $2
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, stock.MachineID, stock.ProductID, stock.Quantity).Scan(&stock.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotStocked
		}
		return classify(err, "update stock quantity")
	}

	return nil
}

func (r *stockRepository) Delete(ctx context.Context, machineID, productID int64) error {
	query := `DELETE FROM stocks WHERE machine_id = $1 AND product_id = $2`

	result, err := r.db.ExecContext(ctx, query, machineID, productID)
	if err != nil {
		return classify(err, "delete stock line")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(err, "get rows affected")
	}

	if rowsAffected == 0 {
		return domain.ErrNotStocked
	}

	return nil
}

// DeleteByMachine removes every stock line owned by a machine and returns how many went
func (r *stockRepository) DeleteByMachine(ctx context.Context, machineID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stocks WHERE machine_id = $1`, machineID)
	if err != nil {
		return 0, classify(err, "delete machine stock lines")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, classify(err, "get rows affected")
	}

	return rowsAffected, nil
}

// ListByMachine returns the products a machine holds, in the order they were stocked
func (r *stockRepository) ListByMachine(ctx context.Context, machineID int64) ([]domain.StockLine, error) {
	query := `
		SELECT p.id, p.name, s.quantity
		FROM stocks s
		JOIN products p ON p.id = s.product_id
		WHERE s.machine_id = $1
		ORDER BY s.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, machineID)
	if err != nil {
		return nil, classify(err, "list machine stock")
	}
	defer rows.Close()

	lines := []domain.StockLine{}
	for rows.Next() {
		var line domain.StockLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.Quantity); err != nil {
			return nil, classify(err, "scan stock line")
		}
		lines = append(lines, line)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err, "iterate stock lines")
	}

	return lines, nil
}

func (r *stockRepository) List(ctx context.Context) ([]*domain.Stock, error) {
	query := `
		SELECT id, machine_id, product_id, quantity, created_at, updated_at
		FROM stocks
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err, "list stock lines")
	}
	defer rows.Close()

	stocks := []*domain.Stock{}
	for rows.Next() {
		stock := &domain.Stock{}
		if err := rows.Scan(
			&stock.ID,
			&stock.MachineID,
			&stock.ProductID,
			&stock.Quantity,
			&stock.CreatedAt,
			&stock.UpdatedAt,
		); err != nil {
			return nil, classify(err, "scan stock line")
		}
		stocks = append(stocks, stock)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err, "iterate stock lines")
	}

	return stocks, nil
}
