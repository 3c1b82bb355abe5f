package main

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
)

type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) GetItem(ctx context.Context, token string, itemID int64) (*Item, error) {
	args := m.Called(ctx, token, itemID)
	item, _ := args.Get(0).(*Item)
	return item, args.Error(1)
}

func (m *MockInventoryStore) ListItems(ctx context.Context, token string) ([]Item, error) {
	args := m.Called(ctx, token)
	items, _ := args.Get(0).([]Item)
	return items, args.Error(1)
}

func (m *MockInventoryStore) DecrementStock(ctx context.Context, token string, itemID int64, quantity int) (int, error) {
	args := m.Called(ctx, token, itemID, quantity)
	return args.Int(0), args.Error(1)
}

type MockCustomerStore struct {
	mock.Mock
}

func (m *MockCustomerStore) GetCustomer(ctx context.Context, token string, username string) (*Customer, error) {
	args := m.Called(ctx, token, username)
	customer, _ := args.Get(0).(*Customer)
	return customer, args.Error(1)
}

func (m *MockCustomerStore) DebitWallet(ctx context.Context, token string, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, token, username, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockOrderLedger struct {
	mock.Mock
}

func (m *MockOrderLedger) AppendOrder(ctx context.Context, order *Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderLedger) ListOrdersByCustomer(ctx context.Context, username string) ([]Order, error) {
	args := m.Called(ctx, username)
	orders, _ := args.Get(0).([]Order)
	return orders, args.Error(1)
}

type MockIncidentRecorder struct {
	mock.Mock
}

func (m *MockIncidentRecorder) RecordPartialFailure(ctx context.Context, incident *PurchaseIncident) error {
	args := m.Called(ctx, incident)
	return args.Error(0)
}

func (m *MockIncidentRecorder) ListIncidents(ctx context.Context, limit int) ([]PurchaseIncident, error) {
	args := m.Called(ctx, limit)
	incidents, _ := args.Get(0).([]PurchaseIncident)
	return incidents, args.Error(1)
}

type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) GetItem(ctx context.Context, itemID int64) (*Item, bool) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*Item)
	return item, args.Bool(1)
}

func (m *MockCatalogCache) SetItem(ctx context.Context, item *Item) {
	m.Called(ctx, item)
}

func (m *MockCatalogCache) GetItems(ctx context.Context) ([]Item, bool) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]Item)
	return items, args.Bool(1)
}

func (m *MockCatalogCache) SetItems(ctx context.Context, items []Item) {
	m.Called(ctx, items)
}

func (m *MockCatalogCache) Invalidate(ctx context.Context, itemID int64) {
	m.Called(ctx, itemID)
}

// stubTokens hands out a fixed downstream token.
type stubTokens struct {
	token string
	err   error
}

func (s stubTokens) DownstreamToken(authn.Identity) (string, error) {
	return s.token, s.err
}
