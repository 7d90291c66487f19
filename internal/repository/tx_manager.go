package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vending-inventory/internal/domain"
)

// TxRepos exposes the repositories bound to a single transaction
type TxRepos interface {
	Products() ProductRepository
	Machines() MachineRepository
	Stocks() StockRepository
}

// TransactionManager runs fn inside one transaction. fn's reads and writes
// commit together when it returns nil and roll back otherwise.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

// ErrCommitFailed marks a failure at COMMIT, where the outcome is unknown
var ErrCommitFailed = errors.New("commit failed")

type txRepos struct {
	products ProductRepository
	machines MachineRepository
	stocks   StockRepository
}

func (r *txRepos) Products() ProductRepository { return r.products }
func (r *txRepos) Machines() MachineRepository { return r.machines }
func (r *txRepos) Stocks() StockRepository     { return r.stocks }

type sqlTxManager struct {
	db *sql.DB
}

// NewTxManager creates a TransactionManager backed by database/sql transactions
func NewTxManager(db *sql.DB) TransactionManager {
	return &sqlTxManager{db: db}
}

func (m *sqlTxManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) (err error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	repos := &txRepos{
		products: NewProductRepository(tx),
		machines: NewMachineRepository(tx),
		stocks:   NewStockRepository(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrCommitFailed, domain.ErrStoreUnavailable, err)
	}

	return nil
}
