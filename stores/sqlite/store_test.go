package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"pos-server/core"
)

func newTestStore(t *testing.T) *sqliteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pos_test.db")
	return NewStore(dbPath)
}

func seedBusiness(t *testing.T, s *sqliteStore) int64 {
	t.Helper()
	id, err := s.CreateBusiness(context.Background(), &core.Business{Name: "Trattoria"})
	if err != nil {
		t.Fatalf("Failed to create business: %v", err)
	}
	return id
}

func TestBusinessDuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateBusiness(ctx, &core.Business{Name: "Trattoria"}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	if _, err := s.CreateBusiness(ctx, &core.Business{Name: "Trattoria"}); err != core.ErrDuplicate {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}
}

func TestGetBusinessNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetBusiness(context.Background(), 9999); err != core.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestProductLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	businessID := seedBusiness(t, s)

	catID, err := s.CreateCategory(ctx, &core.Category{BusinessID: businessID, Name: "Drinks"})
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	id, err := s.CreateProduct(ctx, &core.Product{
		BusinessID: businessID,
		CategoryID: catID,
		Name:       "Espresso",
		Price:      250,
		Stock:      10,
		Active:     true,
	})
	if err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	p, err := s.GetProduct(ctx, businessID, id)
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if p.Name != "Espresso" || p.Price != 250 {
		t.Errorf("Unexpected product: %+v", p)
	}

	if err := s.AdjustStock(ctx, businessID, id, -3); err != nil {
		t.Fatalf("Failed to adjust stock: %v", err)
	}
	p, _ = s.GetProduct(ctx, businessID, id)
	if p.Stock != 7 {
		t.Errorf("Expected stock 7 after adjustment, got %v", p.Stock)
	}

	// A product under another business must be invisible.
	if _, err := s.GetProduct(ctx, businessID+1, id); err != core.ErrNotFound {
		t.Errorf("Expected ErrNotFound across businesses, got %v", err)
	}

	if err := s.DeleteProduct(ctx, businessID, id); err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}
	if err := s.DeleteProduct(ctx, businessID, id); err != core.ErrNotFound {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestProductDuplicateNamePerBusiness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	businessID := seedBusiness(t, s)

	other, err := s.CreateBusiness(ctx, &core.Business{Name: "Osteria"})
	if err != nil {
		t.Fatalf("Failed to create second business: %v", err)
	}

	p := core.Product{BusinessID: businessID, CategoryID: 1, Name: "Espresso", Price: 250}
	if _, err := s.CreateProduct(ctx, &p); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	if _, err := s.CreateProduct(ctx, &core.Product{BusinessID: businessID, CategoryID: 1, Name: "Espresso"}); err != core.ErrDuplicate {
		t.Errorf("Expected ErrDuplicate within a business, got %v", err)
	}
	if _, err := s.CreateProduct(ctx, &core.Product{BusinessID: other, CategoryID: 1, Name: "Espresso"}); err != nil {
		t.Errorf("Same name under another business must be allowed, got %v", err)
	}
}

func TestSaleRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	businessID := seedBusiness(t, s)

	sale := core.Sale{
		BusinessID: businessID,
		UserID:     1,
		Status:     core.SaleStatusOpen,
		Items: []core.SaleItem{
			{ProductID: 1, Name: "Espresso", Quantity: 2, UnitPrice: 250, Total: 500},
			{ProductID: 2, Name: "Croissant", Quantity: 1, UnitPrice: 300, Total: 300},
		},
		Total: 800,
	}
	id, err := s.CreateSale(ctx, &sale)
	if err != nil {
		t.Fatalf("Failed to create sale: %v", err)
	}

	got, err := s.GetSale(ctx, businessID, id)
	if err != nil {
		t.Fatalf("Failed to get sale: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].Name != "Espresso" || got.Total != 800 {
		t.Errorf("Sale did not round-trip: %+v", got)
	}

	paymentID, err := s.AddPayment(ctx, businessID, &core.Payment{SaleID: id, Method: "cash", Amount: 800})
	if err != nil {
		t.Fatalf("Failed to add payment: %v", err)
	}
	if paymentID == 0 {
		t.Error("Expected non-zero payment id")
	}

	got, _ = s.GetSale(ctx, businessID, id)
	if len(got.Payments) != 1 || got.Payments[0].Amount != 800 {
		t.Errorf("Expected 1 payment of 800, got %+v", got.Payments)
	}

	if err := s.CancelSale(ctx, businessID, id); err != nil {
		t.Fatalf("Failed to cancel sale: %v", err)
	}
	got, _ = s.GetSale(ctx, businessID, id)
	if got.Status != core.SaleStatusCancelled {
		t.Errorf("Expected status cancelled, got %q", got.Status)
	}
	// Cancelling twice is a not-found condition.
	if err := s.CancelSale(ctx, businessID, id); err != core.ErrNotFound {
		t.Errorf("Expected ErrNotFound on double cancel, got %v", err)
	}
}

func TestPaymentForMissingSale(t *testing.T) {
	s := newTestStore(t)
	businessID := seedBusiness(t, s)

	_, err := s.AddPayment(context.Background(), businessID, &core.Payment{SaleID: 404, Method: "card", Amount: 100})
	if err != core.ErrNotFound {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestShiftLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	businessID := seedBusiness(t, s)

	if _, err := s.CurrentShift(ctx, businessID); err != core.ErrNotFound {
		t.Fatalf("Expected no current shift, got %v", err)
	}

	id, err := s.OpenShift(ctx, &core.Shift{BusinessID: businessID, UserID: 1, OpeningCash: 5000})
	if err != nil {
		t.Fatalf("Failed to open shift: %v", err)
	}

	// Only one open shift per business.
	if _, err := s.OpenShift(ctx, &core.Shift{BusinessID: businessID, UserID: 2}); err != core.ErrDuplicate {
		t.Errorf("Expected ErrDuplicate for second open shift, got %v", err)
	}

	current, err := s.CurrentShift(ctx, businessID)
	if err != nil {
		t.Fatalf("Failed to get current shift: %v", err)
	}
	if current.ID != id || current.OpeningCash != 5000 {
		t.Errorf("Unexpected current shift: %+v", current)
	}

	mvID, err := s.AddCashMovement(ctx, &core.CashMovement{
		BusinessID: businessID, ShiftID: id, Kind: core.CashOut, Amount: 1500, Reason: "change",
	})
	if err != nil {
		t.Fatalf("Failed to add cash movement: %v", err)
	}
	if mvID == 0 {
		t.Error("Expected non-zero movement id")
	}
	movements, err := s.ListCashMovements(ctx, businessID, id)
	if err != nil || len(movements) != 1 {
		t.Fatalf("Expected 1 movement, got %d (err %v)", len(movements), err)
	}

	if err := s.CloseShift(ctx, businessID, id, 3500); err != nil {
		t.Fatalf("Failed to close shift: %v", err)
	}
	if _, err := s.CurrentShift(ctx, businessID); err != core.ErrNotFound {
		t.Errorf("Expected no current shift after close, got %v", err)
	}
	if err := s.CloseShift(ctx, businessID, id, 3500); err != core.ErrNotFound {
		t.Errorf("Expected ErrNotFound on double close, got %v", err)
	}
}

func TestUserUniqueUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	businessID := seedBusiness(t, s)

	u := core.User{BusinessID: businessID, Username: "ana", Name: "Ana", Role: core.RoleAdmin, PasswordHash: "x"}
	if _, err := s.CreateUser(ctx, &u); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, &core.User{BusinessID: businessID, Username: "ana", Role: core.RoleWaiter, PasswordHash: "y"}); err != core.ErrDuplicate {
		t.Errorf("Expected ErrDuplicate, got %v", err)
	}

	got, err := s.GetUserByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("Failed to get user by username: %v", err)
	}
	if got.Role != core.RoleAdmin {
		t.Errorf("Unexpected user: %+v", got)
	}
}

func TestExpensesAndSupplies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	businessID := seedBusiness(t, s)

	eid, err := s.CreateExpense(ctx, &core.Expense{BusinessID: businessID, Description: "gas", Amount: 2000})
	if err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}
	expenses, err := s.ListExpenses(ctx, businessID)
	if err != nil || len(expenses) != 1 {
		t.Fatalf("Expected 1 expense, got %d (err %v)", len(expenses), err)
	}
	if err := s.DeleteExpense(ctx, businessID, eid); err != nil {
		t.Fatalf("Failed to delete expense: %v", err)
	}

	if _, err := s.CreateSupply(ctx, &core.Supply{BusinessID: businessID, ProductID: 1, Quantity: 12, UnitCost: 90}); err != nil {
		t.Fatalf("Failed to create supply: %v", err)
	}
	supplies, err := s.ListSupplies(ctx, businessID)
	if err != nil || len(supplies) != 1 {
		t.Fatalf("Expected 1 supply, got %d (err %v)", len(supplies), err)
	}
	if supplies[0].Quantity != 12 || supplies[0].UnitCost != 90 {
		t.Errorf("Unexpected supply: %+v", supplies[0])
	}
}
