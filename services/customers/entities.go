package main

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/ecommerce-services/internal/money"
)

var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrUsernameTaken         = errors.New("username is already taken")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidCustomer       = errors.New("invalid customer")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidRole           = errors.New("invalid role")
	ErrItemNotFound          = errors.New("item not found")
	ErrAlreadyWishlisted     = errors.New("item is already on the wishlist")
	ErrWishlistEntryNotFound = errors.New("wishlist entry not found")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

// Customer is a registered account. The password hash never leaves the service.
type Customer struct {
	ID            int64           `json:"id" db:"id"`
	Username      string          `json:"username" db:"username"`
	PasswordHash  string          `json:"-" db:"password_hash"`
	Fullname      string          `json:"fullname" db:"fullname"`
	Age           int             `json:"age" db:"age"`
	Address       string          `json:"address" db:"address"`
	Gender        string          `json:"gender" db:"gender"`
	MaritalStatus string          `json:"marital_status" db:"marital_status"`
	Wallet        decimal.Decimal `json:"wallet" db:"wallet"`
	Role          string          `json:"role" db:"role"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// NewCustomer builds a customer with an empty wallet. The password must already be hashed.
func NewCustomer(req RegisterRequest, role, passwordHash string) *Customer {
	now := time.Now().UTC()
	return &Customer{
		Username:      strings.TrimSpace(req.Username),
		PasswordHash:  passwordHash,
		Fullname:      strings.TrimSpace(req.Fullname),
		Age:           req.Age,
		Address:       strings.TrimSpace(req.Address),
		Gender:        strings.TrimSpace(req.Gender),
		MaritalStatus: strings.TrimSpace(req.MaritalStatus),
		Wallet:        decimal.Zero,
		Role:          role,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate checks the profile fields shared by registration and updates.
func (c *Customer) Validate() error {
	switch {
	case !usernamePattern.MatchString(c.Username):
		return fmt.Errorf("%w: username must be 3-50 letters, digits, '.', '_' or '-'", ErrInvalidCustomer)
	case c.Fullname == "" || len(c.Fullname) > 100:
		return fmt.Errorf("%w: fullname is required and must be at most 100 characters", ErrInvalidCustomer)
	case c.Age <= 0 || c.Age > 150:
		return fmt.Errorf("%w: age must be between 1 and 150", ErrInvalidCustomer)
	case c.Address == "" || len(c.Address) > 200:
		return fmt.Errorf("%w: address is required and must be at most 200 characters", ErrInvalidCustomer)
	case c.Gender == "" || len(c.Gender) > 10:
		return fmt.Errorf("%w: gender is required and must be at most 10 characters", ErrInvalidCustomer)
	case c.MaritalStatus == "" || len(c.MaritalStatus) > 10:
		return fmt.Errorf("%w: marital_status is required and must be at most 10 characters", ErrInvalidCustomer)
	}
	return nil
}

type RegisterRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Fullname      string `json:"fullname"`
	Age           int    `json:"age"`
	Address       string `json:"address"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"marital_status"`
}

func (r RegisterRequest) validatePassword() error {
	if len(r.Password) < 8 || len(r.Password) > 128 {
		return fmt.Errorf("%w: password must be between 8 and 128 characters", ErrInvalidCustomer)
	}
	return nil
}

// StaffRegisterRequest is a registration that names the account role.
type StaffRegisterRequest struct {
	RegisterRequest
	Role string `json:"role"`
}

// CustomerUpdate lists the only profile fields an owner may change. Nil means unchanged.
type CustomerUpdate struct {
	Fullname      *string `json:"fullname"`
	Age           *int    `json:"age"`
	Address       *string `json:"address"`
	Gender        *string `json:"gender"`
	MaritalStatus *string `json:"marital_status"`
}

// Apply merges u into a copy of customer and validates the result.
func (u CustomerUpdate) Apply(customer Customer) (*Customer, error) {
	if u.Fullname != nil {
		customer.Fullname = strings.TrimSpace(*u.Fullname)
	}
	if u.Age != nil {
		customer.Age = *u.Age
	}
	if u.Address != nil {
		customer.Address = strings.TrimSpace(*u.Address)
	}
	if u.Gender != nil {
		customer.Gender = strings.TrimSpace(*u.Gender)
	}
	if u.MaritalStatus != nil {
		customer.MaritalStatus = strings.TrimSpace(*u.MaritalStatus)
	}

	if err := customer.Validate(); err != nil {
		return nil, err
	}
	customer.UpdatedAt = time.Now().UTC()
	return &customer, nil
}

// WalletTransaction is one wallet change, written in the same transaction as the change.
type WalletTransaction struct {
	ID         string          `json:"id" db:"id"`
	CustomerID int64           `json:"customer_id" db:"customer_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Type       string          `json:"type" db:"transaction_type"`
	Actor      string          `json:"actor" db:"actor"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

func NewWalletTransaction(id string, customerID int64, amount decimal.Decimal, transactionType, actor string) *WalletTransaction {
	return &WalletTransaction{
		ID:         id,
		CustomerID: customerID,
		Amount:     amount,
		Type:       transactionType,
		Actor:      actor,
		CreatedAt:  time.Now().UTC(),
	}
}

const (
	TransactionTypeDebit  = "debit"
	TransactionTypeCredit = "credit"
)

// WishlistEntry is an inventory item saved by a customer, joined with its
// current name and price.
type WishlistEntry struct {
	ID        int64           `json:"wishlist_id" db:"wishlist_id"`
	ItemID    int64           `json:"item_id" db:"item_id"`
	ItemName  string          `json:"item_name" db:"item_name"`
	ItemPrice decimal.Decimal `json:"item_price" db:"item_price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// validateAmount accepts positive amounts with at most two fractional digits.
func validateAmount(amount decimal.Decimal) error {
	if err := money.RequirePositive(amount); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if !amount.Equal(amount.Round(money.Scale)) {
		return fmt.Errorf("%w: at most %d decimal places", ErrInvalidAmount, money.Scale)
	}
	return nil
}
