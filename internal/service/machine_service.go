package service

import (
	"context"

	"vending-inventory/internal/domain"
	"vending-inventory/internal/repository"
)

// MachineService defines the vending machine registry operations
type MachineService interface {
	CreateMachine(ctx context.Context, name, location string) (*domain.VendingMachine, error)
	EditMachine(ctx context.Context, id int64, newName, newLocation string) (*domain.VendingMachine, error)
	DeleteMachine(ctx context.Context, id int64) error
	ListMachines(ctx context.Context) ([]*domain.VendingMachine, error)
	GetMachine(ctx context.Context, id int64) (*domain.VendingMachine, error)
}

type machineService struct {
	tx repository.TransactionManager
}

// NewMachineService creates a new instance of MachineService
func NewMachineService(tx repository.TransactionManager) MachineService {
	return &machineService{tx: tx}
}

func (s *machineService) CreateMachine(ctx context.Context, name, location string) (*domain.VendingMachine, error) {
	machine, err := domain.NewVendingMachine(name, location)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		return r.Machines().Create(ctx, machine)
	})
	if err != nil {
		return nil, err
	}

	return machine, nil
}

// EditMachine overwrites the supplied (non-empty) fields only. With nothing
// supplied it returns the current record unchanged.
func (s *machineService) EditMachine(ctx context.Context, id int64, newName, newLocation string) (*domain.VendingMachine, error) {
	var machine *domain.VendingMachine
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		var err error
		machine, err = r.Machines().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if !machine.ApplyEdit(newName, newLocation) {
			return nil
		}
		if err := machine.Validate(); err != nil {
			return err
		}

		return r.Machines().Update(ctx, machine)
	})
	if err != nil {
		return nil, err
	}

	return machine, nil
}

// DeleteMachine removes a machine together with all of its stock lines
func (s *machineService) DeleteMachine(ctx context.Context, id int64) error {
	return s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if _, err := r.Machines().FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if _, err := r.Stocks().DeleteByMachine(ctx, id); err != nil {
			return err
		}
		return r.Machines().Delete(ctx, id)
	})
}

func (s *machineService) ListMachines(ctx context.Context) ([]*domain.VendingMachine, error) {
	var machines []*domain.VendingMachine
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		var err error
		machines, err = r.Machines().List(ctx)
		return err
	})
	return machines, err
}

func (s *machineService) GetMachine(ctx context.Context, id int64) (*domain.VendingMachine, error) {
	var machine *domain.VendingMachine
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		var err error
		machine, err = r.Machines().FindByID(ctx, id)
		return err
	})
	return machine, err
}
