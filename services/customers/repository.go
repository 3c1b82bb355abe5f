package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/matheusmosca/ecommerce-services/internal/money"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// CustomerRepository is the persistence port of the customers service.
type CustomerRepository interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, username string) (*Customer, error)
	CreateCustomer(ctx context.Context, customer *Customer) (int64, error)
	UpdateCustomer(ctx context.Context, customer *Customer) error
	DeleteCustomer(ctx context.Context, username string) error
	ListTransactions(ctx context.Context, customerID int64) ([]WalletTransaction, error)
	ListWishlist(ctx context.Context, customerID int64) ([]WishlistEntry, error)
	AddToWishlist(ctx context.Context, customerID, itemID int64) (int64, error)
	RemoveFromWishlist(ctx context.Context, customerID, wishlistID int64) error

	BeginTx(ctx context.Context) (Tx, error)
	// DebitWallet subtracts amount only if the balance covers it and returns
	// the customer id and the new balance.
	DebitWallet(ctx context.Context, tx Tx, username string, amount decimal.Decimal) (int64, decimal.Decimal, error)
	CreditWallet(ctx context.Context, tx Tx, username string, amount decimal.Decimal) (int64, decimal.Decimal, error)
	RecordTransaction(ctx context.Context, tx Tx, transaction *WalletTransaction) error
}

type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PostgresTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

type PostgresCustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db}
}

const customerColumns = `id, username, password_hash, fullname, age, address, gender, marital_status,
	wallet::text, role, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var (
		c      Customer
		wallet string
	)
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.Fullname, &c.Age, &c.Address, &c.Gender,
		&c.MaritalStatus, &wallet, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if c.Wallet, err = money.Parse(wallet); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCustomerRepository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}

	customers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Customer, error) {
		c, err := scanCustomer(row)
		if err != nil {
			return Customer{}, err
		}
		return *c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan customers: %w", err)
	}
	return customers, nil
}

func (r *PostgresCustomerRepository) GetCustomer(ctx context.Context, username string) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE username = $1`, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (r *PostgresCustomerRepository) CreateCustomer(ctx context.Context, c *Customer) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (username, password_hash, fullname, age, address, gender, marital_status,
		                       wallet, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text::numeric, $9, $10, $11)
		RETURNING id
	`, c.Username, c.PasswordHash, c.Fullname, c.Age, c.Address, c.Gender, c.MaritalStatus,
		c.Wallet.StringFixed(money.Scale), c.Role, c.CreatedAt, c.UpdatedAt).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("failed to insert customer: %w", err)
	}
	return id, nil
}

// UpdateCustomer writes profile fields only. The wallet is changed exclusively
// through DebitWallet and CreditWallet.
func (r *PostgresCustomerRepository) UpdateCustomer(ctx context.Context, c *Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET fullname = $2, age = $3, address = $4, gender = $5, marital_status = $6, updated_at = $7
		WHERE username = $1
	`, c.Username, c.Fullname, c.Age, c.Address, c.Gender, c.MaritalStatus, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *PostgresCustomerRepository) DeleteCustomer(ctx context.Context, username string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *PostgresCustomerRepository) ListTransactions(ctx context.Context, customerID int64) ([]WalletTransaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, customer_id, amount::text, transaction_type, actor, created_at
		FROM wallet_transactions
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet transactions: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (WalletTransaction, error) {
		var (
			t      WalletTransaction
			amount string
		)
		if err := row.Scan(&t.ID, &t.CustomerID, &amount, &t.Type, &t.Actor, &t.CreatedAt); err != nil {
			return t, err
		}
		var err error
		t.Amount, err = money.Parse(amount)
		return t, err
	})
}

func (r *PostgresCustomerRepository) ListWishlist(ctx context.Context, customerID int64) ([]WishlistEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT w.wishlist_id, w.item_id, i.name, i.price_per_item::text, w.created_at
		FROM wishlist w
		JOIN inventory i ON i.id = w.item_id
		WHERE w.customer_id = $1
		ORDER BY w.created_at DESC, w.wishlist_id DESC
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (WishlistEntry, error) {
		var (
			e     WishlistEntry
			price string
		)
		if err := row.Scan(&e.ID, &e.ItemID, &e.ItemName, &price, &e.CreatedAt); err != nil {
			return e, err
		}
		var err error
		e.ItemPrice, err = money.Parse(price)
		return e, err
	})
}

func (r *PostgresCustomerRepository) AddToWishlist(ctx context.Context, customerID, itemID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO wishlist (customer_id, item_id)
		VALUES ($1, $2)
		RETURNING wishlist_id
	`, customerID, itemID).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return 0, ErrAlreadyWishlisted
			case foreignKeyViolation:
				return 0, ErrItemNotFound
			}
		}
		return 0, fmt.Errorf("failed to insert wishlist entry: %w", err)
	}
	return id, nil
}

func (r *PostgresCustomerRepository) RemoveFromWishlist(ctx context.Context, customerID, wishlistID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM wishlist WHERE wishlist_id = $1 AND customer_id = $2`, wishlistID, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWishlistEntryNotFound
	}
	return nil
}

func (r *PostgresCustomerRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

func (r *PostgresCustomerRepository) DebitWallet(ctx context.Context, tx Tx, username string, amount decimal.Decimal) (int64, decimal.Decimal, error) {
	pgTx := tx.(*PostgresTx).tx

	var (
		id      int64
		balance string
	)
	err := pgTx.QueryRow(ctx, `
		UPDATE customers
		SET wallet = wallet - $2::text::numeric,
		    updated_at = NOW()
		WHERE username = $1 AND wallet >= $2::text::numeric
		RETURNING id, wallet::text
	`, username, amount.StringFixed(money.Scale)).Scan(&id, &balance)
	if err == nil {
		newBalance, err := money.Parse(balance)
		return id, newBalance, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, decimal.Zero, fmt.Errorf("failed to debit wallet: %w", err)
	}

	var exists bool
	if err := pgTx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM customers WHERE username = $1)`, username).Scan(&exists); err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to check customer: %w", err)
	}
	if !exists {
		return 0, decimal.Zero, ErrCustomerNotFound
	}
	return 0, decimal.Zero, ErrInsufficientBalance
}

func (r *PostgresCustomerRepository) CreditWallet(ctx context.Context, tx Tx, username string, amount decimal.Decimal) (int64, decimal.Decimal, error) {
	pgTx := tx.(*PostgresTx).tx

	var (
		id      int64
		balance string
	)
	err := pgTx.QueryRow(ctx, `
		UPDATE customers
		SET wallet = wallet + $2::text::numeric,
		    updated_at = NOW()
		WHERE username = $1
		RETURNING id, wallet::text
	`, username, amount.StringFixed(money.Scale)).Scan(&id, &balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, decimal.Zero, ErrCustomerNotFound
	}
	if err != nil {
		return 0, decimal.Zero, fmt.Errorf("failed to credit wallet: %w", err)
	}

	newBalance, err := money.Parse(balance)
	return id, newBalance, err
}

func (r *PostgresCustomerRepository) RecordTransaction(ctx context.Context, tx Tx, t *WalletTransaction) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		INSERT INTO wallet_transactions (id, customer_id, amount, transaction_type, actor, created_at)
		VALUES ($1, $2, $3::text::numeric, $4, $5, $6)
	`, t.ID, t.CustomerID, t.Amount.StringFixed(money.Scale), t.Type, t.Actor, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	return nil
}
