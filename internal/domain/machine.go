package domain

import (
	"time"
)

// VendingMachine represents a registered vending machine
type VendingMachine struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" validate:"required,max=100"`
	Location  string    `json:"location" db:"location" validate:"required,max=100"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewVendingMachine builds an unsaved machine and checks its field rules
func NewVendingMachine(name, location string) (*VendingMachine, error) {
	machine := &VendingMachine{
		Name:     name,
		Location: location,
	}
	if err := machine.Validate(); err != nil {
		return nil, err
	}
	return machine, nil
}

// Validate checks the machine field rules
func (m *VendingMachine) Validate() error {
	return validateStruct(m)
}

// ApplyEdit overwrites the fields that were supplied. Empty strings count as
// not supplied. It reports whether anything was supplied at all.
func (m *VendingMachine) ApplyEdit(newName, newLocation string) bool {
	if newName == "" && newLocation == "" {
		return false
	}
	if newName != "" {
		m.Name = newName
	}
	if newLocation != "" {
		m.Location = newLocation
	}
	return true
}
