package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"vending-inventory/internal/domain"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	s := newServices()

	product, err := s.products.CreateProduct(ctx, "Coke", 25)
	require.NoError(t, err)
	assert.Equal(t, int64(1), product.ID)
	assert.False(t, product.CreatedAt.IsZero())

	_, err = s.products.CreateProduct(ctx, "Coke", 30)
	assert.ErrorIs(t, err, domain.ErrDuplicateProductName)

	_, err = s.products.CreateProduct(ctx, "Pepsi", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.products.CreateProduct(ctx, "", 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	fetched, err := s.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coke", fetched.Name)
	assert.Equal(t, 25, fetched.Price)

	_, err = s.products.GetProduct(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListProductsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newServices()

	for _, name := range []string{"Water", "Coke", "Anchovy Snack"} {
		_, err := s.products.CreateProduct(ctx, name, 10)
		require.NoError(t, err)
	}

	products, err := s.products.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Water", products[0].Name)
	assert.Equal(t, "Coke", products[1].Name)
	assert.Equal(t, "Anchovy Snack", products[2].Name)
}

func TestDeleteProductIsRestrictedWhileStocked(t *testing.T) {
	ctx := context.Background()
	s := newServices()

	machine, err := s.machines.CreateMachine(ctx, "Soda Zaaa", "4th floor")
	require.NoError(t, err)
	product, err := s.products.CreateProduct(ctx, "Coke", 25)
	require.NoError(t, err)
	_, err = s.stocks.AddStock(ctx, machine.ID, product.ID, 10)
	require.NoError(t, err)

	assert.ErrorIs(t, s.products.DeleteProduct(ctx, product.ID), domain.ErrProductInUse)

	lines, err := s.stocks.ListStock(ctx, machine.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1, "stock line survives the rejected delete")

	require.NoError(t, s.stocks.RemoveStock(ctx, machine.ID, product.ID))
	require.NoError(t, s.products.DeleteProduct(ctx, product.ID))

	assert.ErrorIs(t, s.products.DeleteProduct(ctx, product.ID), domain.ErrProductNotFound)
}

// Feature: vending-inventory, product names are unique
func TestProperty_ProductNamesAreUnique(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("the second of any colliding pair fails with DuplicateName", prop.ForAll(
		func(names []string, price int) bool {
			ctx := context.Background()
			s := newServices()

			created := map[string]bool{}
			for _, name := range names {
				_, err := s.products.CreateProduct(ctx, name, price)
				if created[name] {
					if !errors.Is(err, domain.ErrDuplicateName) {
						t.Logf("FAIL: duplicate %q returned %v", name, err)
						return false
					}
					continue
				}
				if err != nil {
					t.Logf("FAIL: create %q: %v", name, err)
					return false
				}
				created[name] = true
			}

			products, err := s.products.ListProducts(ctx)
			if err != nil || len(products) != len(created) {
				return false
			}
			names2 := map[string]bool{}
			for _, p := range products {
				if names2[p.Name] {
					return false
				}
				names2[p.Name] = true
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("Coke", "Pepsi", "Water", "Chips"), reflect.TypeOf("")),
		gen.IntRange(1, 500),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
