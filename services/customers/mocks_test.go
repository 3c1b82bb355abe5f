package main

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context) ([]Customer, error) {
	args := m.Called(ctx)
	customers, _ := args.Get(0).([]Customer)
	return customers, args.Error(1)
}

func (m *MockCustomerRepository) GetCustomer(ctx context.Context, username string) (*Customer, error) {
	args := m.Called(ctx, username)
	customer, _ := args.Get(0).(*Customer)
	return customer, args.Error(1)
}

func (m *MockCustomerRepository) CreateCustomer(ctx context.Context, customer *Customer) (int64, error) {
	args := m.Called(ctx, customer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) UpdateCustomer(ctx context.Context, customer *Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteCustomer(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockCustomerRepository) ListTransactions(ctx context.Context, customerID int64) ([]WalletTransaction, error) {
	args := m.Called(ctx, customerID)
	transactions, _ := args.Get(0).([]WalletTransaction)
	return transactions, args.Error(1)
}

func (m *MockCustomerRepository) ListWishlist(ctx context.Context, customerID int64) ([]WishlistEntry, error) {
	args := m.Called(ctx, customerID)
	entries, _ := args.Get(0).([]WishlistEntry)
	return entries, args.Error(1)
}

func (m *MockCustomerRepository) AddToWishlist(ctx context.Context, customerID, itemID int64) (int64, error) {
	args := m.Called(ctx, customerID, itemID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) RemoveFromWishlist(ctx context.Context, customerID, wishlistID int64) error {
	args := m.Called(ctx, customerID, wishlistID)
	return args.Error(0)
}

func (m *MockCustomerRepository) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(Tx)
	return tx, args.Error(1)
}

func (m *MockCustomerRepository) DebitWallet(ctx context.Context, tx Tx, username string, amount decimal.Decimal) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, tx, username, amount)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockCustomerRepository) CreditWallet(ctx context.Context, tx Tx, username string, amount decimal.Decimal) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, tx, username, amount)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockCustomerRepository) RecordTransaction(ctx context.Context, tx Tx, transaction *WalletTransaction) error {
	args := m.Called(ctx, tx, transaction)
	return args.Error(0)
}

type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
