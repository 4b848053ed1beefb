package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pos-server/core"
)

// memStore keeps everything behind one mutex. It backs tests and
// zero-config local runs; nothing here survives a restart.
type memStore struct {
	mu sync.RWMutex

	nextID int64

	businesses map[int64]*core.Business
	users      map[int64]*core.User
	categories map[int64]*core.Category
	products   map[int64]*core.Product
	tables     map[int64]*core.Table
	sales      map[int64]*core.Sale
	payments   map[int64][]core.Payment
	shifts     map[int64]*core.Shift
	movements  map[int64]*core.CashMovement
	expenses   map[int64]*core.Expense
	supplies   map[int64]*core.Supply
}

func NewStore() *memStore {
	return &memStore{
		businesses: make(map[int64]*core.Business),
		users:      make(map[int64]*core.User),
		categories: make(map[int64]*core.Category),
		products:   make(map[int64]*core.Product),
		tables:     make(map[int64]*core.Table),
		sales:      make(map[int64]*core.Sale),
		payments:   make(map[int64][]core.Payment),
		shifts:     make(map[int64]*core.Shift),
		movements:  make(map[int64]*core.CashMovement),
		expenses:   make(map[int64]*core.Expense),
		supplies:   make(map[int64]*core.Supply),
	}
}

// id must be called with the mutex held.
func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

// BusinessStore implementation

func (s *memStore) ListBusinesses(_ context.Context) ([]*core.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Business
	for _, b := range s.businesses {
		copied := *b
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) GetBusiness(_ context.Context, id int64) (*core.Business, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.businesses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (s *memStore) CreateBusiness(_ context.Context, b *core.Business) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.businesses {
		if existing.Name == b.Name {
			return 0, core.ErrDuplicate
		}
	}

	copied := *b
	copied.ID = s.id()
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	s.businesses[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) UpdateBusiness(_ context.Context, b *core.Business) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.businesses[b.ID]
	if !ok {
		return core.ErrNotFound
	}
	for id, other := range s.businesses {
		if id != b.ID && other.Name == b.Name {
			return core.ErrDuplicate
		}
	}
	copied := *b
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	s.businesses[b.ID] = &copied
	return nil
}

func (s *memStore) DeleteBusiness(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.businesses[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.businesses, id)
	return nil
}

// UserStore implementation

func (s *memStore) GetUserByUsername(_ context.Context, username string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *memStore) GetUser(_ context.Context, businessID, id int64) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok || u.BusinessID != businessID {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memStore) ListUsers(_ context.Context, businessID int64) ([]*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.User
	for _, u := range s.users {
		if u.BusinessID == businessID {
			copied := *u
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *memStore) CreateUser(_ context.Context, u *core.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return 0, core.ErrDuplicate
		}
	}
	copied := *u
	copied.ID = s.id()
	copied.CreatedAt = time.Now()
	s.users[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) UpdateUser(_ context.Context, u *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[u.ID]
	if !ok || existing.BusinessID != u.BusinessID {
		return core.ErrNotFound
	}
	for id, other := range s.users {
		if id != u.ID && other.Username == u.Username {
			return core.ErrDuplicate
		}
	}
	copied := *u
	copied.CreatedAt = existing.CreatedAt
	s.users[u.ID] = &copied
	return nil
}

func (s *memStore) DeleteUser(_ context.Context, businessID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.BusinessID != businessID {
		return core.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// CatalogStore implementation

func (s *memStore) ListCategories(_ context.Context, businessID int64) ([]*core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Category
	for _, c := range s.categories {
		if c.BusinessID == businessID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *memStore) CreateCategory(_ context.Context, c *core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.BusinessID == c.BusinessID && existing.Name == c.Name {
			return 0, core.ErrDuplicate
		}
	}
	copied := *c
	copied.ID = s.id()
	s.categories[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) UpdateCategory(_ context.Context, c *core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.categories[c.ID]
	if !ok || existing.BusinessID != c.BusinessID {
		return core.ErrNotFound
	}
	for id, other := range s.categories {
		if id != c.ID && other.BusinessID == c.BusinessID && other.Name == c.Name {
			return core.ErrDuplicate
		}
	}
	copied := *c
	s.categories[c.ID] = &copied
	return nil
}

func (s *memStore) DeleteCategory(_ context.Context, businessID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok || c.BusinessID != businessID {
		return core.ErrNotFound
	}
	delete(s.categories, id)
	return nil
}

func (s *memStore) ListProducts(_ context.Context, businessID int64) ([]*core.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Product
	for _, p := range s.products {
		if p.BusinessID == businessID {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) GetProduct(_ context.Context, businessID, id int64) (*core.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok || p.BusinessID != businessID {
		return nil, core.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) CreateProduct(_ context.Context, p *core.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.BusinessID == p.BusinessID && existing.Name == p.Name {
			return 0, core.ErrDuplicate
		}
	}
	copied := *p
	copied.ID = s.id()
	s.products[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) UpdateProduct(_ context.Context, p *core.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok || existing.BusinessID != p.BusinessID {
		return core.ErrNotFound
	}
	for id, other := range s.products {
		if id != p.ID && other.BusinessID == p.BusinessID && other.Name == p.Name {
			return core.ErrDuplicate
		}
	}
	copied := *p
	s.products[p.ID] = &copied
	return nil
}

func (s *memStore) DeleteProduct(_ context.Context, businessID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || p.BusinessID != businessID {
		return core.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *memStore) AdjustStock(_ context.Context, businessID, productID int64, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok || p.BusinessID != businessID {
		return core.ErrNotFound
	}
	p.Stock += delta
	return nil
}

// TableStore implementation

func (s *memStore) ListTables(_ context.Context, businessID int64) ([]*core.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Table
	for _, tb := range s.tables {
		if tb.BusinessID == businessID {
			copied := *tb
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) CreateTable(_ context.Context, tb *core.Table) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tables {
		if existing.BusinessID == tb.BusinessID && existing.Name == tb.Name {
			return 0, core.ErrDuplicate
		}
	}
	copied := *tb
	copied.ID = s.id()
	s.tables[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) UpdateTable(_ context.Context, tb *core.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tables[tb.ID]
	if !ok || existing.BusinessID != tb.BusinessID {
		return core.ErrNotFound
	}
	for id, other := range s.tables {
		if id != tb.ID && other.BusinessID == tb.BusinessID && other.Name == tb.Name {
			return core.ErrDuplicate
		}
	}
	copied := *tb
	s.tables[tb.ID] = &copied
	return nil
}

func (s *memStore) DeleteTable(_ context.Context, businessID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tb, ok := s.tables[id]
	if !ok || tb.BusinessID != businessID {
		return core.ErrNotFound
	}
	delete(s.tables, id)
	return nil
}

// SaleStore implementation

func (s *memStore) ListSales(_ context.Context, businessID int64) ([]*core.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Sale
	for _, sale := range s.sales {
		if sale.BusinessID == businessID {
			out = append(out, copySale(sale, nil))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) GetSale(_ context.Context, businessID, id int64) (*core.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.sales[id]
	if !ok || sale.BusinessID != businessID {
		return nil, core.ErrNotFound
	}
	return copySale(sale, s.payments[id]), nil
}

func (s *memStore) CreateSale(_ context.Context, sale *core.Sale) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := copySale(sale, nil)
	copied.ID = s.id()
	copied.CreatedAt = time.Now()
	copied.UpdatedAt = copied.CreatedAt
	s.sales[copied.ID] = copied
	return copied.ID, nil
}

func (s *memStore) CancelSale(_ context.Context, businessID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[id]
	if !ok || sale.BusinessID != businessID || sale.Status == core.SaleStatusCancelled {
		return core.ErrNotFound
	}
	sale.Status = core.SaleStatusCancelled
	sale.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) AddPayment(_ context.Context, businessID int64, p *core.Payment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.sales[p.SaleID]
	if !ok || sale.BusinessID != businessID {
		return 0, core.ErrNotFound
	}
	copied := *p
	copied.ID = s.id()
	if copied.PaidAt.IsZero() {
		copied.PaidAt = time.Now()
	}
	s.payments[p.SaleID] = append(s.payments[p.SaleID], copied)
	return copied.ID, nil
}

// ShiftStore implementation

func (s *memStore) CurrentShift(_ context.Context, businessID int64) (*core.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sh := range s.shifts {
		if sh.BusinessID == businessID && sh.Status == core.ShiftStatusOpen {
			copied := *sh
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *memStore) OpenShift(_ context.Context, sh *core.Shift) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.shifts {
		if existing.BusinessID == sh.BusinessID && existing.Status == core.ShiftStatusOpen {
			return 0, core.ErrDuplicate
		}
	}
	copied := *sh
	copied.ID = s.id()
	copied.Status = core.ShiftStatusOpen
	copied.OpenedAt = time.Now()
	s.shifts[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) CloseShift(_ context.Context, businessID, id, closingCash int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shifts[id]
	if !ok || sh.BusinessID != businessID || sh.Status != core.ShiftStatusOpen {
		return core.ErrNotFound
	}
	now := time.Now()
	sh.Status = core.ShiftStatusClosed
	sh.ClosingCash = &closingCash
	sh.ClosedAt = &now
	return nil
}

func (s *memStore) AddCashMovement(_ context.Context, m *core.CashMovement) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *m
	copied.ID = s.id()
	copied.CreatedAt = time.Now()
	s.movements[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) ListCashMovements(_ context.Context, businessID, shiftID int64) ([]*core.CashMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.CashMovement
	for _, m := range s.movements {
		if m.BusinessID == businessID && m.ShiftID == shiftID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ExpenseStore implementation

func (s *memStore) ListExpenses(_ context.Context, businessID int64) ([]*core.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Expense
	for _, e := range s.expenses {
		if e.BusinessID == businessID {
			copied := *e
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) CreateExpense(_ context.Context, e *core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *e
	copied.ID = s.id()
	copied.CreatedAt = time.Now()
	s.expenses[copied.ID] = &copied
	return copied.ID, nil
}

func (s *memStore) DeleteExpense(_ context.Context, businessID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok || e.BusinessID != businessID {
		return core.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

// SupplyStore implementation

func (s *memStore) ListSupplies(_ context.Context, businessID int64) ([]*core.Supply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*core.Supply
	for _, sp := range s.supplies {
		if sp.BusinessID == businessID {
			copied := *sp
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *memStore) CreateSupply(_ context.Context, sp *core.Supply) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sp
	copied.ID = s.id()
	copied.CreatedAt = time.Now()
	s.supplies[copied.ID] = &copied
	return copied.ID, nil
}

func copySale(sale *core.Sale, payments []core.Payment) *core.Sale {
	copied := *sale
	copied.Items = append([]core.SaleItem(nil), sale.Items...)
	copied.Payments = append([]core.Payment(nil), payments...)
	if len(copied.Payments) == 0 {
		copied.Payments = nil
	}
	return &copied
}
