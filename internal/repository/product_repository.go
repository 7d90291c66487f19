package repository

import (
	"context"
	"database/sql"
	"errors"

	"vending-inventory/internal/domain"
)

// DBTX is the subset of *sql.DB and *sql.Tx the repositories need
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product and fills in its generated ID and timestamp
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, price)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query, product.Name, product.Price).Scan(
		&product.ID,
		&product.CreatedAt,
	)
	if err != nil {
		return classify(err, "create product")
	}

	return nil
}

// Delete removes a product. Products that are still stocked are kept.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		if isForeignKeyViolation(err, constraintStockProductFK) {
			return domain.ErrProductInUse
		}
		return classify(err, "delete product")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(err, "get rows affected")
	}

	if rowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, name, price, created_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Price,
		&product.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, classify(err, "find product by ID")
	}

	return product, nil
}

// List retrieves every product in insertion order
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, price, created_at
		FROM products
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err, "list products")
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Price,
			&product.CreatedAt,
		)
		if err != nil {
			return nil, classify(err, "scan product")
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, classify(err, "iterate products")
	}

	return products, nil
}
