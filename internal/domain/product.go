package domain

import (
	"time"
)

// Product represents an item that vending machines can carry
type Product struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required,max=100"`
	Price     int       `json:"price" db:"price" validate:"gte=1,lte=2147483647"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewProduct builds an unsaved product and checks its field rules
func NewProduct(name string, price int) (*Product, error) {
	product := &Product{
		Name:  name,
		Price: price,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// Validate checks the product field rules
func (p *Product) Validate() error {
	return validateStruct(p)
}
