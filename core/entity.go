package core

import "time"

// Sale lifecycle states.
const (
	SaleStatusOpen      = "open"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Shift lifecycle states.
const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

// User roles. Authorization is coarse: admins manage the catalog and staff,
// everyone else operates the register.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
	RoleWaiter  = "waiter"
)

// Cash movement kinds.
const (
	CashIn  = "in"
	CashOut = "out"
)

type (
	// Business is the tenant unit. Every other entity, and every realtime
	// room, is scoped to exactly one business.
	Business struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Address   string    `json:"address,omitempty"`
		Phone     string    `json:"phone,omitempty"`
		LogoKey   string    `json:"logoKey,omitempty"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	User struct {
		ID           int64     `json:"id"`
		BusinessID   int64     `json:"businessId"`
		Username     string    `json:"username"`
		Name         string    `json:"name"`
		Role         string    `json:"role"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Category struct {
		ID         int64  `json:"id"`
		BusinessID int64  `json:"-"`
		Name       string `json:"name"`
		Position   int    `json:"position"`
	}

	// Product prices and costs are integer cents.
	Product struct {
		ID         int64   `json:"id"`
		BusinessID int64   `json:"-"`
		CategoryID int64   `json:"categoryId"`
		Name       string  `json:"name"`
		Price      int64   `json:"price"`
		Stock      float64 `json:"stock"`
		ImageKey   string  `json:"imageKey,omitempty"`
		Active     bool    `json:"active"`
	}

	Table struct {
		ID         int64  `json:"id"`
		BusinessID int64  `json:"-"`
		Name       string `json:"name"`
		Seats      int    `json:"seats"`
		Active     bool   `json:"active"`
	}

	SaleItem struct {
		ProductID int64   `json:"productId"`
		Name      string  `json:"name"`
		Quantity  float64 `json:"quantity"`
		UnitPrice int64   `json:"unitPrice"`
		Total     int64   `json:"total"`
	}

	Payment struct {
		ID     int64     `json:"id"`
		SaleID int64     `json:"saleId"`
		Method string    `json:"method"`
		Amount int64     `json:"amount"`
		PaidAt time.Time `json:"paidAt"`
	}

	Sale struct {
		ID         int64      `json:"id"`
		BusinessID int64      `json:"-"`
		TableID    *int64     `json:"tableId,omitempty"`
		UserID     int64      `json:"userId"`
		Status     string     `json:"status"`
		Items      []SaleItem `json:"items"`
		Payments   []Payment  `json:"payments,omitempty"`
		Total      int64      `json:"total"`
		CreatedAt  time.Time  `json:"createdAt"`
		UpdatedAt  time.Time  `json:"updatedAt"`
	}

	Shift struct {
		ID          int64      `json:"id"`
		BusinessID  int64      `json:"-"`
		UserID      int64      `json:"userId"`
		Status      string     `json:"status"`
		OpeningCash int64      `json:"openingCash"`
		ClosingCash *int64     `json:"closingCash,omitempty"`
		OpenedAt    time.Time  `json:"openedAt"`
		ClosedAt    *time.Time `json:"closedAt,omitempty"`
	}

	CashMovement struct {
		ID         int64     `json:"id"`
		BusinessID int64     `json:"-"`
		ShiftID    int64     `json:"shiftId"`
		Kind       string    `json:"kind"`
		Amount     int64     `json:"amount"`
		Reason     string    `json:"reason"`
		CreatedAt  time.Time `json:"createdAt"`
	}

	Expense struct {
		ID          int64     `json:"id"`
		BusinessID  int64     `json:"-"`
		Description string    `json:"description"`
		Amount      int64     `json:"amount"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// Supply is a stock intake: quantity of a product bought at unit cost.
	Supply struct {
		ID         int64     `json:"id"`
		BusinessID int64     `json:"-"`
		ProductID  int64     `json:"productId"`
		Quantity   float64   `json:"quantity"`
		UnitCost   int64     `json:"unitCost"`
		CreatedAt  time.Time `json:"createdAt"`
	}
)
