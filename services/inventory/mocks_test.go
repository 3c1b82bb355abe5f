package main

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ListItems(ctx context.Context) ([]Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]Item)
	return items, args.Error(1)
}

func (m *MockInventoryRepository) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	args := m.Called(ctx, itemID)
	item, _ := args.Get(0).(*Item)
	return item, args.Error(1)
}

func (m *MockInventoryRepository) CreateItem(ctx context.Context, item *Item) (int64, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInventoryRepository) UpdateItem(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockInventoryRepository) DeleteItem(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockInventoryRepository) ListMovements(ctx context.Context, itemID int64) ([]InventoryMovement, error) {
	args := m.Called(ctx, itemID)
	movements, _ := args.Get(0).([]InventoryMovement)
	return movements, args.Error(1)
}

func (m *MockInventoryRepository) BeginTx(ctx context.Context) (Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(Tx)
	return tx, args.Error(1)
}

func (m *MockInventoryRepository) RemoveStock(ctx context.Context, tx Tx, itemID int64, quantity int) (int, error) {
	args := m.Called(ctx, tx, itemID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) AddStock(ctx context.Context, tx Tx, itemID int64, quantity int) (int, error) {
	args := m.Called(ctx, tx, itemID, quantity)
	return args.Int(0), args.Error(1)
}

func (m *MockInventoryRepository) RecordMovement(ctx context.Context, tx Tx, movement *InventoryMovement) error {
	args := m.Called(ctx, tx, movement)
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
