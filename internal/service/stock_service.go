package service

import (
	"context"
	"errors"

	"vending-inventory/internal/domain"
	"vending-inventory/internal/repository"
)

// StockService defines the stock ledger operations
type StockService interface {
	AddStock(ctx context.Context, machineID, productID int64, quantity int) (*domain.Stock, error)
	EditStockQuantity(ctx context.Context, machineID, productID int64, newQuantity int) (*domain.Stock, error)
	RemoveStock(ctx context.Context, machineID, productID int64) error
	ListStock(ctx context.Context, machineID int64) ([]domain.StockLine, error)
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

type stockService struct {
	tx repository.TransactionManager
}

// NewStockService creates a new instance of StockService
func NewStockService(tx repository.TransactionManager) StockService {
	return &stockService{tx: tx}
}

// AddStock links a product to a machine. Checks run in a fixed order: machine,
// product, existing link, quantity. Concurrent adds for the same pair are
// settled by the store's unique constraint.
func (s *stockService) AddStock(ctx context.Context, machineID, productID int64, quantity int) (*domain.Stock, error) {
	stock := &domain.Stock{
		MachineID: machineID,
		ProductID: productID,
		Quantity:  quantity,
	}

	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if _, err := r.Machines().FindByIDForUpdate(ctx, machineID); err != nil {
			return err
		}
		if _, err := r.Products().FindByID(ctx, productID); err != nil {
			return err
		}

		_, err := r.Stocks().Find(ctx, machineID, productID)
		switch {
		case err == nil:
			return domain.ErrAlreadyStocked
		case !errors.Is(err, domain.ErrNotStocked):
			return err
		}

		if err := stock.Validate(); err != nil {
			return err
		}

		return r.Stocks().Create(ctx, stock)
	})
	if err != nil {
		return nil, err
	}

	return stock, nil
}

func (s *stockService) EditStockQuantity(ctx context.Context, machineID, productID int64, newQuantity int) (*domain.Stock, error) {
	var stock *domain.Stock
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if _, err := r.Machines().FindByIDForUpdate(ctx, machineID); err != nil {
			return err
		}

		var err error
		stock, err = r.Stocks().Find(ctx, machineID, productID)
		if err != nil {
			return err
		}

		if err := domain.ValidateQuantity(newQuantity); err != nil {
			return err
		}

		stock.Quantity = newQuantity
		return r.Stocks().UpdateQuantity(ctx, stock)
	})
	if err != nil {
		return nil, err
	}

	return stock, nil
}

func (s *stockService) RemoveStock(ctx context.Context, machineID, productID int64) error {
	return s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if _, err := r.Machines().FindByIDForUpdate(ctx, machineID); err != nil {
			return err
		}
		if _, err := r.Stocks().Find(ctx, machineID, productID); err != nil {
			return err
		}
		return r.Stocks().Delete(ctx, machineID, productID)
	})
}

// ListStock returns the products held by a machine in the order they were added
func (s *stockService) ListStock(ctx context.Context, machineID int64) ([]domain.StockLine, error) {
	var lines []domain.StockLine
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if _, err := r.Machines().FindByID(ctx, machineID); err != nil {
			return err
		}

		var err error
		lines, err = r.Stocks().ListByMachine(ctx, machineID)
		return err
	})
	return lines, err
}

// Snapshot reads every machine, product and stock line in one transaction
func (s *stockService) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	snapshot := &domain.Snapshot{}
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		var err error
		if snapshot.Machines, err = r.Machines().List(ctx); err != nil {
			return err
		}
		if snapshot.Products, err = r.Products().List(ctx); err != nil {
			return err
		}
		snapshot.Stocks, err = r.Stocks().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
