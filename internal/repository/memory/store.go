// Package memory keeps the inventory in process. Transactions are serialised
// with a mutex and run against a copy of the state that replaces the shared
// one only when the transaction function succeeds.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vending-inventory/internal/domain"
	"vending-inventory/internal/repository"
)

type stockKey struct {
	machineID int64
	productID int64
}

type state struct {
	nextProductID int64
	nextMachineID int64
	nextStockID   int64

	products map[int64]domain.Product
	machines map[int64]domain.VendingMachine
	stocks   map[stockKey]domain.Stock
}

func newState() *state {
	return &state{
		products: make(map[int64]domain.Product),
		machines: make(map[int64]domain.VendingMachine),
		stocks:   make(map[stockKey]domain.Stock),
	}
}

func (s *state) clone() *state {
	c := &state{
		nextProductID: s.nextProductID,
		nextMachineID: s.nextMachineID,
		nextStockID:   s.nextStockID,
		products:      make(map[int64]domain.Product, len(s.products)),
		machines:      make(map[int64]domain.VendingMachine, len(s.machines)),
		stocks:        make(map[stockKey]domain.Stock, len(s.stocks)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.machines {
		c.machines[k] = v
	}
	for k, v := range s.stocks {
		c.stocks[k] = v
	}
	return c
}

// Store is an in-process TransactionManager
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   time.Now,
	}
}

var _ repository.TransactionManager = (*Store)(nil)

func (s *Store) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(&txRepos{state: working, now: s.now}); err != nil {
		return err
	}

	s.state = working
	return nil
}

type txRepos struct {
	state *state
	now   func() time.Time
}

func (r *txRepos) Products() repository.ProductRepository { return &productRepository{r} }
func (r *txRepos) Machines() repository.MachineRepository { return &machineRepository{r} }
func (r *txRepos) Stocks() repository.StockRepository     { return &stockRepository{r} }

type productRepository struct{ *txRepos }

func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	for _, existing := range r.state.products {
		if existing.Name == product.Name {
			return domain.ErrDuplicateProductName
		}
	}
	if product.Price < 1 {
		return &domain.InvalidInputError{Field: "price", Rule: "gte", Param: "1"}
	}

	r.state.nextProductID++
	product.ID = r.state.nextProductID
	product.CreatedAt = r.now()
	r.state.products[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := r.state.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	for key := range r.state.stocks {
		if key.productID == id {
			return domain.ErrProductInUse
		}
	}
	delete(r.state.products, id)
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, ok := r.state.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(r.state.products))
	for _, p := range r.state.products {
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

type machineRepository struct{ *txRepos }

func (r *machineRepository) nameTaken(name string, exceptID int64) bool {
	for id, existing := range r.state.machines {
		if id != exceptID && existing.Name == name {
			return true
		}
	}
	return false
}

func (r *machineRepository) Create(ctx context.Context, machine *domain.VendingMachine) error {
	if r.nameTaken(machine.Name, 0) {
		return domain.ErrDuplicateMachineName
	}

	r.state.nextMachineID++
	machine.ID = r.state.nextMachineID
	machine.CreatedAt = r.now()
	machine.UpdatedAt = machine.CreatedAt
	r.state.machines[machine.ID] = *machine
	return nil
}

func (r *machineRepository) Update(ctx context.Context, machine *domain.VendingMachine) error {
	current, ok := r.state.machines[machine.ID]
	if !ok {
		return domain.ErrMachineNotFound
	}
	if r.nameTaken(machine.Name, machine.ID) {
		return domain.ErrDuplicateMachineName
	}

	current.Name = machine.Name
	current.Location = machine.Location
	current.UpdatedAt = r.now()
	r.state.machines[machine.ID] = current
	machine.UpdatedAt = current.UpdatedAt
	return nil
}

// Delete removes the machine and, like ON DELETE CASCADE, its stock lines
func (r *machineRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := r.state.machines[id]; !ok {
		return domain.ErrMachineNotFound
	}
	for key := range r.state.stocks {
		if key.machineID == id {
			delete(r.state.stocks, key)
		}
	}
	delete(r.state.machines, id)
	return nil
}

func (r *machineRepository) FindByID(ctx context.Context, id int64) (*domain.VendingMachine, error) {
	machine, ok := r.state.machines[id]
	if !ok {
		return nil, domain.ErrMachineNotFound
	}
	return &machine, nil
}

// FindByIDForUpdate needs no row lock, the store mutex already serialises transactions
func (r *machineRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.VendingMachine, error) {
	return r.FindByID(ctx, id)
}

func (r *machineRepository) List(ctx context.Context) ([]*domain.VendingMachine, error) {
	machines := make([]*domain.VendingMachine, 0, len(r.state.machines))
	for _, m := range r.state.machines {
		machines = append(machines, &m)
	}
	sort.Slice(machines, func(i, j int) bool { return machines[i].ID < machines[j].ID })
	return machines, nil
}

type stockRepository struct{ *txRepos }

func (r *stockRepository) Create(ctx context.Context, stock *domain.Stock) error {
	if _, ok := r.state.machines[stock.MachineID]; !ok {
		return domain.ErrMachineNotFound
	}
	if _, ok := r.state.products[stock.ProductID]; !ok {
		return domain.ErrProductNotFound
	}
	key := stockKey{machineID: stock.MachineID, productID: stock.ProductID}
	if _, ok := r.state.stocks[key]; ok {
		return domain.ErrAlreadyStocked
	}
	if err := stock.Validate(); err != nil {
		return err
	}

	r.state.nextStockID++
	stock.ID = r.state.nextStockID
	stock.CreatedAt = r.now()
	stock.UpdatedAt = stock.CreatedAt
	r.state.stocks[key] = *stock
	return nil
}

func (r *stockRepository) Find(ctx context.Context, machineID, productID int64) (*domain.Stock, error) {
	stock, ok := r.state.stocks[stockKey{machineID: machineID, productID: productID}]
	if !ok {
		return nil, domain.ErrNotStocked
	}
	return &stock, nil
}

func (r *stockRepository) UpdateQuantity(ctx context.Context, stock *domain.Stock) error {
	key := stockKey{machineID: stock.MachineID, productID: stock.ProductID}
	current, ok := r.state.stocks[key]
	if !ok {
		return domain.ErrNotStocked
	}
	if err := stock.Validate(); err != nil {
		return err
	}

	current.Quantity = stock.Quantity
	current.UpdatedAt = r.now()
	r.state.stocks[key] = current
	stock.UpdatedAt = current.UpdatedAt
	return nil
}

func (r *stockRepository) Delete(ctx context.Context, machineID, productID int64) error {
	key := stockKey{machineID: machineID, productID: productID}
	if _, ok := r.state.stocks[key]; !ok {
		return domain.ErrNotStocked
	}
	delete(r.state.stocks, key)
	return nil
}

func (r *stockRepository) DeleteByMachine(ctx context.Context, machineID int64) (int64, error) {
	var removed int64
	for key := range r.state.stocks {
		if key.machineID == machineID {
			delete(r.state.stocks, key)
			removed++
		}
	}
	return removed, nil
}

func (r *stockRepository) ListByMachine(ctx context.Context, machineID int64) ([]domain.StockLine, error) {
	owned := r.sorted(func(s domain.Stock) bool { return s.MachineID == machineID })

	lines := make([]domain.StockLine, 0, len(owned))
	for _, s := range owned {
		lines = append(lines, domain.StockLine{
			ProductID: s.ProductID,
			Name:      r.state.products[s.ProductID].Name,
			Quantity:  s.Quantity,
		})
	}
	return lines, nil
}

func (r *stockRepository) List(ctx context.Context) ([]*domain.Stock, error) {
	return r.sorted(func(domain.Stock) bool { return true }), nil
}

func (r *stockRepository) sorted(keep func(domain.Stock) bool) []*domain.Stock {
	stocks := []*domain.Stock{}
	for _, s := range r.state.stocks {
		if keep(s) {
			stocks = append(stocks, &s)
		}
	}
	sort.Slice(stocks, func(i, j int) bool { return stocks[i].ID < stocks[j].ID })
	return stocks
}
