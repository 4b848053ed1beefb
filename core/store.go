package core

import (
	"context"
	"errors"
)

// Sentinel errors shared by every storage backend so handlers can map them
// to 404 and 409 without knowing the backend.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type (
	BusinessStore interface {
		ListBusinesses(ctx context.Context) ([]*Business, error)
		GetBusiness(ctx context.Context, id int64) (*Business, error)
		CreateBusiness(ctx context.Context, b *Business) (int64, error)
		UpdateBusiness(ctx context.Context, b *Business) error
		DeleteBusiness(ctx context.Context, id int64) error
	}

	UserStore interface {
		GetUserByUsername(ctx context.Context, username string) (*User, error)
		GetUser(ctx context.Context, businessID, id int64) (*User, error)
		ListUsers(ctx context.Context, businessID int64) ([]*User, error)
		CreateUser(ctx context.Context, u *User) (int64, error)
		UpdateUser(ctx context.Context, u *User) error
		DeleteUser(ctx context.Context, businessID, id int64) error
	}

	// CatalogStore covers categories and products. All operations are scoped
	// to a business; an id that exists under another business is not found.
	CatalogStore interface {
		ListCategories(ctx context.Context, businessID int64) ([]*Category, error)
		CreateCategory(ctx context.Context, c *Category) (int64, error)
		UpdateCategory(ctx context.Context, c *Category) error
		DeleteCategory(ctx context.Context, businessID, id int64) error

		ListProducts(ctx context.Context, businessID int64) ([]*Product, error)
		GetProduct(ctx context.Context, businessID, id int64) (*Product, error)
		CreateProduct(ctx context.Context, p *Product) (int64, error)
		UpdateProduct(ctx context.Context, p *Product) error
		DeleteProduct(ctx context.Context, businessID, id int64) error
		AdjustStock(ctx context.Context, businessID, productID int64, delta float64) error
	}

	TableStore interface {
		ListTables(ctx context.Context, businessID int64) ([]*Table, error)
		CreateTable(ctx context.Context, t *Table) (int64, error)
		UpdateTable(ctx context.Context, t *Table) error
		DeleteTable(ctx context.Context, businessID, id int64) error
	}

	SaleStore interface {
		ListSales(ctx context.Context, businessID int64) ([]*Sale, error)
		GetSale(ctx context.Context, businessID, id int64) (*Sale, error)
		CreateSale(ctx context.Context, s *Sale) (int64, error)
		CancelSale(ctx context.Context, businessID, id int64) error
		AddPayment(ctx context.Context, businessID int64, p *Payment) (int64, error)
	}

	ShiftStore interface {
		// CurrentShift returns the open shift for a business, or ErrNotFound.
		CurrentShift(ctx context.Context, businessID int64) (*Shift, error)
		OpenShift(ctx context.Context, s *Shift) (int64, error)
		CloseShift(ctx context.Context, businessID, id, closingCash int64) error
		AddCashMovement(ctx context.Context, m *CashMovement) (int64, error)
		ListCashMovements(ctx context.Context, businessID, shiftID int64) ([]*CashMovement, error)
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context, businessID int64) ([]*Expense, error)
		CreateExpense(ctx context.Context, e *Expense) (int64, error)
		DeleteExpense(ctx context.Context, businessID, id int64) error
	}

	SupplyStore interface {
		ListSupplies(ctx context.Context, businessID int64) ([]*Supply, error)
		CreateSupply(ctx context.Context, s *Supply) (int64, error)
	}

	// ImageStore keeps uploaded product and logo images out of the relational
	// store. Keys are opaque; callers namespace them per business.
	ImageStore interface {
		SaveImage(ctx context.Context, businessID int64, key string, data []byte) error
		GetImage(ctx context.Context, businessID int64, key string) ([]byte, error)
		DeleteImage(ctx context.Context, businessID int64, key string) error
	}
)
