package service

import (
	"context"

	"vending-inventory/internal/domain"
	"vending-inventory/internal/repository"
)

// ProductService defines the product catalog operations
type ProductService interface {
	CreateProduct(ctx context.Context, name string, price int) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	tx repository.TransactionManager
}

// NewProductService creates a new instance of ProductService
func NewProductService(tx repository.TransactionManager) ProductService {
	return &productService{tx: tx}
}

// CreateProduct registers a product. Name uniqueness is enforced by the store.
func (s *productService) CreateProduct(ctx context.Context, name string, price int) (*domain.Product, error) {
	product, err := domain.NewProduct(name, price)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		return r.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		var err error
		products, err = r.Products().List(ctx)
		return err
	})
	return products, err
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product *domain.Product
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		var err error
		product, err = r.Products().FindByID(ctx, id)
		return err
	})
	return product, err
}

// DeleteProduct removes a product unless a vending machine still stocks it
func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		return r.Products().Delete(ctx, id)
	})
}
