package domain

import (
	"time"
)

// Stock links a product to a vending machine and carries the quantity held
type Stock struct {
	ID        int64     `json:"id" db:"id"`
	MachineID int64     `json:"machine_id" db:"machine_id"`
	ProductID int64     `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity" validate:"gte=0,lte=2147483647"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the stock field rules
func (s *Stock) Validate() error {
	return validateStruct(s)
}

// ValidateQuantity checks a quantity against the stock rules without building a Stock
func ValidateQuantity(quantity int) error {
	return validateStruct(&Stock{Quantity: quantity})
}

// StockLine is one product held by a machine, as listed for that machine
type StockLine struct {
	ProductID int64  `json:"product_id" db:"product_id"`
	Name      string `json:"name" db:"name"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// Snapshot is a consistent read of every entity in the store
type Snapshot struct {
	Machines []*VendingMachine `json:"vending_machines"`
	Products []*Product        `json:"products"`
	Stocks   []*Stock          `json:"stocks"`
}
