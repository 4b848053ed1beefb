package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"pos-server/core"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS businesses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	logo_key TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	username TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	UNIQUE (business_id, name)
);

CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	category_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	price INTEGER NOT NULL DEFAULT 0,
	stock REAL NOT NULL DEFAULT 0,
	image_key TEXT NOT NULL DEFAULT '',
	active INTEGER NOT NULL DEFAULT 1,
	UNIQUE (business_id, name)
);

CREATE TABLE IF NOT EXISTS dining_tables (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	seats INTEGER NOT NULL DEFAULT 0,
	active INTEGER NOT NULL DEFAULT 1,
	UNIQUE (business_id, name)
);

CREATE TABLE IF NOT EXISTS sales (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	table_id INTEGER,
	user_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	items TEXT NOT NULL,
	total INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_id INTEGER NOT NULL,
	business_id INTEGER NOT NULL,
	method TEXT NOT NULL,
	amount INTEGER NOT NULL,
	paid_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS shifts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	status TEXT NOT NULL,
	opening_cash INTEGER NOT NULL DEFAULT 0,
	closing_cash INTEGER,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME
);

CREATE TABLE IF NOT EXISTS cash_movements (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	shift_id INTEGER NOT NULL,
	kind TEXT NOT NULL,
	amount INTEGER NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	description TEXT NOT NULL,
	amount INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS supplies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	business_id INTEGER NOT NULL,
	product_id INTEGER NOT NULL,
	quantity REAL NOT NULL,
	unit_cost INTEGER NOT NULL,
	created_at DATETIME NOT NULL
);
`

// NewStore opens (and if needed creates) the SQLite database.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to create tables: %v", err)
	}

	return &sqliteStore{db}
}

// storeErr maps driver errors onto the shared sentinels.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return core.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return core.ErrDuplicate
	}
	return err
}

// BusinessStore implementation

func (s *sqliteStore) ListBusinesses(ctx context.Context) ([]*core.Business, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, address, phone, logo_key, created_at, updated_at FROM businesses ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var businesses []*core.Business
	for rows.Next() {
		var b core.Business
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		businesses = append(businesses, &b)
	}
	return businesses, rows.Err()
}

func (s *sqliteStore) GetBusiness(ctx context.Context, id int64) (*core.Business, error) {
	var b core.Business
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, address, phone, logo_key, created_at, updated_at FROM businesses WHERE id = ?", id).
		Scan(&b.ID, &b.Name, &b.Address, &b.Phone, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return &b, nil
}

func (s *sqliteStore) CreateBusiness(ctx context.Context, b *core.Business) (int64, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO businesses (name, address, phone, logo_key, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		b.Name, b.Address, b.Phone, b.LogoKey, now, now)
	if err != nil {
		return 0, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{"business_id": id, "name": b.Name}).Info("Business created")
	return id, nil
}

func (s *sqliteStore) UpdateBusiness(ctx context.Context, b *core.Business) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE businesses SET name = ?, address = ?, phone = ?, logo_key = ?, updated_at = ? WHERE id = ?",
		b.Name, b.Address, b.Phone, b.LogoKey, time.Now(), b.ID)
	if err != nil {
		return storeErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) DeleteBusiness(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM businesses WHERE id = ?", id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// UserStore implementation

func (s *sqliteStore) GetUserByUsername(ctx context.Context, username string) (*core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, business_id, username, name, role, password_hash, created_at FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.BusinessID, &u.Username, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return &u, nil
}

func (s *sqliteStore) GetUser(ctx context.Context, businessID, id int64) (*core.User, error) {
	var u core.User
	err := s.db.QueryRowContext(ctx,
		"SELECT id, business_id, username, name, role, password_hash, created_at FROM users WHERE business_id = ? AND id = ?",
		businessID, id).
		Scan(&u.ID, &u.BusinessID, &u.Username, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return &u, nil
}

func (s *sqliteStore) ListUsers(ctx context.Context, businessID int64) ([]*core.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, username, name, role, created_at FROM users WHERE business_id = ? ORDER BY username", businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.BusinessID, &u.Username, &u.Name, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func (s *sqliteStore) CreateUser(ctx context.Context, u *core.User) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (business_id, username, name, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		u.BusinessID, u.Username, u.Name, u.Role, u.PasswordHash, time.Now())
	if err != nil {
		return 0, storeErr(err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) UpdateUser(ctx context.Context, u *core.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, name = ?, role = ?, password_hash = ? WHERE business_id = ? AND id = ?",
		u.Username, u.Name, u.Role, u.PasswordHash, u.BusinessID, u.ID)
	if err != nil {
		return storeErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) DeleteUser(ctx context.Context, businessID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE business_id = ? AND id = ?", businessID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// CatalogStore implementation

func (s *sqliteStore) ListCategories(ctx context.Context, businessID int64) ([]*core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, name, position FROM categories WHERE business_id = ? ORDER BY position, name", businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.Position); err != nil {
			return nil, err
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (s *sqliteStore) CreateCategory(ctx context.Context, c *core.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (business_id, name, position) VALUES (?, ?, ?)",
		c.BusinessID, c.Name, c.Position)
	if err != nil {
		return 0, storeErr(err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) UpdateCategory(ctx context.Context, c *core.Category) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, position = ? WHERE business_id = ? AND id = ?",
		c.Name, c.Position, c.BusinessID, c.ID)
	if err != nil {
		return storeErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) DeleteCategory(ctx context.Context, businessID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE business_id = ? AND id = ?", businessID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) ListProducts(ctx context.Context, businessID int64) ([]*core.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, category_id, name, price, stock, image_key, active FROM products WHERE business_id = ? ORDER BY name", businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*core.Product
	for rows.Next() {
		var p core.Product
		if err := rows.Scan(&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Price, &p.Stock, &p.ImageKey, &p.Active); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (s *sqliteStore) GetProduct(ctx context.Context, businessID, id int64) (*core.Product, error) {
	var p core.Product
	err := s.db.QueryRowContext(ctx,
		"SELECT id, business_id, category_id, name, price, stock, image_key, active FROM products WHERE business_id = ? AND id = ?",
		businessID, id).
		Scan(&p.ID, &p.BusinessID, &p.CategoryID, &p.Name, &p.Price, &p.Stock, &p.ImageKey, &p.Active)
	if err != nil {
		return nil, storeErr(err)
	}
	return &p, nil
}

func (s *sqliteStore) CreateProduct(ctx context.Context, p *core.Product) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO products (business_id, category_id, name, price, stock, image_key, active) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.BusinessID, p.CategoryID, p.Name, p.Price, p.Stock, p.ImageKey, p.Active)
	if err != nil {
		return 0, storeErr(err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) UpdateProduct(ctx context.Context, p *core.Product) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET category_id = ?, name = ?, price = ?, stock = ?, image_key = ?, active = ? WHERE business_id = ? AND id = ?",
		p.CategoryID, p.Name, p.Price, p.Stock, p.ImageKey, p.Active, p.BusinessID, p.ID)
	if err != nil {
		return storeErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) DeleteProduct(ctx context.Context, businessID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE business_id = ? AND id = ?", businessID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) AdjustStock(ctx context.Context, businessID, productID int64, delta float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET stock = stock + ? WHERE business_id = ? AND id = ?",
		delta, businessID, productID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// TableStore implementation

func (s *sqliteStore) ListTables(ctx context.Context, businessID int64) ([]*core.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, name, seats, active FROM dining_tables WHERE business_id = ? ORDER BY name", businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []*core.Table
	for rows.Next() {
		var t core.Table
		if err := rows.Scan(&t.ID, &t.BusinessID, &t.Name, &t.Seats, &t.Active); err != nil {
			return nil, err
		}
		tables = append(tables, &t)
	}
	return tables, rows.Err()
}

func (s *sqliteStore) CreateTable(ctx context.Context, t *core.Table) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO dining_tables (business_id, name, seats, active) VALUES (?, ?, ?, ?)",
		t.BusinessID, t.Name, t.Seats, t.Active)
	if err != nil {
		return 0, storeErr(err)
	}
	return res.LastInsertId()
}

func (s *sqliteStore) UpdateTable(ctx context.Context, t *core.Table) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE dining_tables SET name = ?, seats = ?, active = ? WHERE business_id = ? AND id = ?",
		t.Name, t.Seats, t.Active, t.BusinessID, t.ID)
	if err != nil {
		return storeErr(err)
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) DeleteTable(ctx context.Context, businessID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM dining_tables WHERE business_id = ? AND id = ?", businessID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// SaleStore implementation

func (s *sqliteStore) ListSales(ctx context.Context, businessID int64) ([]*core.Sale, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, table_id, user_id, status, items, total, created_at, updated_at FROM sales WHERE business_id = ? ORDER BY created_at DESC",
		businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*core.Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *sqliteStore) GetSale(ctx context.Context, businessID, id int64) (*core.Sale, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, business_id, table_id, user_id, status, items, total, created_at, updated_at FROM sales WHERE business_id = ? AND id = ?",
		businessID, id)
	sale, err := scanSale(row)
	if err != nil {
		return nil, storeErr(err)
	}

	payments, err := s.listPayments(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Payments = payments
	return sale, nil
}

func (s *sqliteStore) CreateSale(ctx context.Context, sale *core.Sale) (int64, error) {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to encode sale items: %w", err)
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO sales (business_id, table_id, user_id, status, items, total, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		sale.BusinessID, sale.TableID, sale.UserID, sale.Status, string(items), sale.Total, now, now)
	if err != nil {
		return 0, storeErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	logrus.WithFields(logrus.Fields{
		"sale_id":     id,
		"business_id": sale.BusinessID,
		"total":       sale.Total,
	}).Info("Sale created")
	return id, nil
}

func (s *sqliteStore) CancelSale(ctx context.Context, businessID, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sales SET status = ?, updated_at = ? WHERE business_id = ? AND id = ? AND status != ?",
		core.SaleStatusCancelled, time.Now(), businessID, id, core.SaleStatusCancelled)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) AddPayment(ctx context.Context, businessID int64, p *core.Payment) (int64, error) {
	var saleExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM sales WHERE business_id = ? AND id = ?", businessID, p.SaleID).Scan(&saleExists)
	if err != nil {
		return 0, storeErr(err)
	}

	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO payments (sale_id, business_id, method, amount, paid_at) VALUES (?, ?, ?, ?, ?)",
		p.SaleID, businessID, p.Method, p.Amount, p.PaidAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) listPayments(ctx context.Context, saleID int64) ([]core.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, sale_id, method, amount, paid_at FROM payments WHERE sale_id = ? ORDER BY paid_at", saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []core.Payment
	for rows.Next() {
		var p core.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ShiftStore implementation

func (s *sqliteStore) CurrentShift(ctx context.Context, businessID int64) (*core.Shift, error) {
	var sh core.Shift
	err := s.db.QueryRowContext(ctx,
		"SELECT id, business_id, user_id, status, opening_cash, closing_cash, opened_at, closed_at FROM shifts WHERE business_id = ? AND status = ? ORDER BY opened_at DESC LIMIT 1",
		businessID, core.ShiftStatusOpen).
		Scan(&sh.ID, &sh.BusinessID, &sh.UserID, &sh.Status, &sh.OpeningCash, &sh.ClosingCash, &sh.OpenedAt, &sh.ClosedAt)
	if err != nil {
		return nil, storeErr(err)
	}
	return &sh, nil
}

func (s *sqliteStore) OpenShift(ctx context.Context, sh *core.Shift) (int64, error) {
	// One open shift per business at a time.
	if _, err := s.CurrentShift(ctx, sh.BusinessID); err == nil {
		return 0, core.ErrDuplicate
	} else if err != core.ErrNotFound {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO shifts (business_id, user_id, status, opening_cash, opened_at) VALUES (?, ?, ?, ?, ?)",
		sh.BusinessID, sh.UserID, core.ShiftStatusOpen, sh.OpeningCash, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) CloseShift(ctx context.Context, businessID, id, closingCash int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE shifts SET status = ?, closing_cash = ?, closed_at = ? WHERE business_id = ? AND id = ? AND status = ?",
		core.ShiftStatusClosed, closingCash, time.Now(), businessID, id, core.ShiftStatusOpen)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *sqliteStore) AddCashMovement(ctx context.Context, m *core.CashMovement) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO cash_movements (business_id, shift_id, kind, amount, reason, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		m.BusinessID, m.ShiftID, m.Kind, m.Amount, m.Reason, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) ListCashMovements(ctx context.Context, businessID, shiftID int64) ([]*core.CashMovement, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, shift_id, kind, amount, reason, created_at FROM cash_movements WHERE business_id = ? AND shift_id = ? ORDER BY created_at",
		businessID, shiftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*core.CashMovement
	for rows.Next() {
		var m core.CashMovement
		if err := rows.Scan(&m.ID, &m.BusinessID, &m.ShiftID, &m.Kind, &m.Amount, &m.Reason, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

// ExpenseStore implementation

func (s *sqliteStore) ListExpenses(ctx context.Context, businessID int64) ([]*core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, description, amount, created_at FROM expenses WHERE business_id = ? ORDER BY created_at DESC",
		businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.BusinessID, &e.Description, &e.Amount, &e.CreatedAt); err != nil {
			return nil, err
		}
		expenses = append(expenses, &e)
	}
	return expenses, rows.Err()
}

func (s *sqliteStore) CreateExpense(ctx context.Context, e *core.Expense) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (business_id, description, amount, created_at) VALUES (?, ?, ?, ?)",
		e.BusinessID, e.Description, e.Amount, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *sqliteStore) DeleteExpense(ctx context.Context, businessID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE business_id = ? AND id = ?", businessID, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// SupplyStore implementation

func (s *sqliteStore) ListSupplies(ctx context.Context, businessID int64) ([]*core.Supply, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, business_id, product_id, quantity, unit_cost, created_at FROM supplies WHERE business_id = ? ORDER BY created_at DESC",
		businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var supplies []*core.Supply
	for rows.Next() {
		var sp core.Supply
		if err := rows.Scan(&sp.ID, &sp.BusinessID, &sp.ProductID, &sp.Quantity, &sp.UnitCost, &sp.CreatedAt); err != nil {
			return nil, err
		}
		supplies = append(supplies, &sp)
	}
	return supplies, rows.Err()
}

func (s *sqliteStore) CreateSupply(ctx context.Context, sp *core.Supply) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO supplies (business_id, product_id, quantity, unit_cost, created_at) VALUES (?, ?, ?, ?, ?)",
		sp.BusinessID, sp.ProductID, sp.Quantity, sp.UnitCost, time.Now())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*core.Sale, error) {
	var sale core.Sale
	var items string
	if err := row.Scan(&sale.ID, &sale.BusinessID, &sale.TableID, &sale.UserID, &sale.Status, &items, &sale.Total, &sale.CreatedAt, &sale.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &sale.Items); err != nil {
		return nil, fmt.Errorf("failed to decode sale items: %w", err)
	}
	return &sale, nil
}

func affectedOrNotFound(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}
