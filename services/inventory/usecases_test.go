package main

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func newTestUseCase() (*InventoryUseCase, *MockInventoryRepository, *MockTx) {
	repo := new(MockInventoryRepository)
	tx := new(MockTx)
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()
	return NewInventoryUseCase(repo, tracenoop.NewTracerProvider().Tracer("test")), repo, tx
}

func laptop() *Item {
	return &Item{
		ID:           1,
		Name:         "Laptop",
		Category:     "Electronics",
		PricePerItem: decimal.RequireFromString("999.99"),
		StockCount:   10,
	}
}

func TestRemoveStock_Success(t *testing.T) {
	// Arrange
	uc, repo, tx := newTestUseCase()
	ctx := context.Background()

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("RemoveStock", mock.Anything, tx, int64(1), 3).Return(7, nil)
	repo.On("RecordMovement", mock.Anything, tx, mock.MatchedBy(func(m *InventoryMovement) bool {
		return m.ItemID == 1 && m.ChangeQuantity == -3 && m.MovementType == MovementTypeDecreased && m.Actor == "sales" && m.ID != ""
	})).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)

	// Act
	stock, err := uc.RemoveStock(ctx, 1, 3, "sales")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 7, stock)
	repo.AssertExpectations(t)
	tx.AssertCalled(t, "Commit", mock.Anything)
}

func TestRemoveStock_NotEnoughStock(t *testing.T) {
	// Arrange
	uc, repo, tx := newTestUseCase()

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("RemoveStock", mock.Anything, tx, int64(1), 50).Return(0, ErrNotEnoughStock)

	// Act
	stock, err := uc.RemoveStock(context.Background(), 1, 50, "sales")

	// Assert
	assert.ErrorIs(t, err, ErrNotEnoughStock)
	assert.Zero(t, stock)
	repo.AssertNotCalled(t, "RecordMovement", mock.Anything, mock.Anything, mock.Anything)
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	tx.AssertCalled(t, "Rollback", mock.Anything)
}

func TestRemoveStock_ItemNotFound(t *testing.T) {
	// Arrange
	uc, repo, tx := newTestUseCase()

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("RemoveStock", mock.Anything, tx, int64(404), 1).Return(0, ErrItemNotFound)

	// Act
	_, err := uc.RemoveStock(context.Background(), 404, 1, "sales")

	// Assert
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestChangeStock_RejectsNonPositiveQuantity(t *testing.T) {
	for _, quantity := range []int{0, -1} {
		// Arrange
		uc, repo, _ := newTestUseCase()

		// Act
		_, removeErr := uc.RemoveStock(context.Background(), 1, quantity, "sales")
		_, addErr := uc.AddStock(context.Background(), 1, quantity, "admin")

		// Assert
		assert.ErrorIs(t, removeErr, ErrInvalidQuantity)
		assert.ErrorIs(t, addErr, ErrInvalidQuantity)
		repo.AssertNotCalled(t, "BeginTx", mock.Anything)
	}
}

func TestAddStock_RecordsIncrease(t *testing.T) {
	// Arrange
	uc, repo, tx := newTestUseCase()

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("AddStock", mock.Anything, tx, int64(1), 5).Return(15, nil)
	repo.On("RecordMovement", mock.Anything, tx, mock.MatchedBy(func(m *InventoryMovement) bool {
		return m.ChangeQuantity == 5 && m.MovementType == MovementTypeIncreased && m.Actor == "admin"
	})).Return(nil)
	tx.On("Commit", mock.Anything).Return(nil)

	// Act
	stock, err := uc.AddStock(context.Background(), 1, 5, "admin")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 15, stock)
	repo.AssertNotCalled(t, "RemoveStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeStock_MovementFailureRollsBack(t *testing.T) {
	// Arrange
	uc, repo, tx := newTestUseCase()

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("RemoveStock", mock.Anything, tx, int64(1), 1).Return(9, nil)
	repo.On("RecordMovement", mock.Anything, tx, mock.Anything).Return(errors.New("insert failed"))

	// Act
	_, err := uc.RemoveStock(context.Background(), 1, 1, "sales")

	// Assert
	assert.EqualError(t, err, "insert failed")
	tx.AssertNotCalled(t, "Commit", mock.Anything)
	tx.AssertCalled(t, "Rollback", mock.Anything)
}

func TestChangeStock_CommitFailure(t *testing.T) {
	// Arrange
	uc, repo, tx := newTestUseCase()

	repo.On("BeginTx", mock.Anything).Return(tx, nil)
	repo.On("RemoveStock", mock.Anything, tx, int64(1), 1).Return(9, nil)
	repo.On("RecordMovement", mock.Anything, tx, mock.Anything).Return(nil)
	tx.On("Commit", mock.Anything).Return(errors.New("connection reset"))

	// Act
	_, err := uc.RemoveStock(context.Background(), 1, 1, "sales")

	// Assert
	assert.ErrorContains(t, err, "failed to commit stock change")
}

func TestCreateItem_Validates(t *testing.T) {
	// Arrange
	uc, repo, _ := newTestUseCase()

	// Act
	_, err := uc.CreateItem(context.Background(), CreateItemRequest{Name: "Laptop", Category: "Electronics"})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidItem)
	repo.AssertNotCalled(t, "CreateItem", mock.Anything, mock.Anything)
}

func TestCreateItem_Persists(t *testing.T) {
	// Arrange
	uc, repo, _ := newTestUseCase()
	repo.On("CreateItem", mock.Anything, mock.MatchedBy(func(item *Item) bool {
		return item.Name == "Laptop" && item.PricePerItem.Equal(decimal.RequireFromString("999.99"))
	})).Return(int64(42), nil)

	// Act
	id, err := uc.CreateItem(context.Background(), CreateItemRequest{
		Name:         " Laptop ",
		Category:     "Electronics",
		PricePerItem: decimal.RequireFromString("999.99"),
		StockCount:   3,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestUpdateItem_MergesFields(t *testing.T) {
	// Arrange
	uc, repo, _ := newTestUseCase()
	price := decimal.RequireFromString("899.00")

	repo.On("GetItem", mock.Anything, int64(1)).Return(laptop(), nil)
	repo.On("UpdateItem", mock.Anything, mock.MatchedBy(func(item *Item) bool {
		return item.Name == "Laptop" && item.PricePerItem.Equal(price) && item.StockCount == 10
	})).Return(nil)

	// Act
	item, err := uc.UpdateItem(context.Background(), 1, ItemUpdate{PricePerItem: &price})

	// Assert
	require.NoError(t, err)
	assert.True(t, item.PricePerItem.Equal(price))
}

func TestUpdateItem_RejectsInvalidResult(t *testing.T) {
	// Arrange
	uc, repo, _ := newTestUseCase()
	negative := -1

	repo.On("GetItem", mock.Anything, int64(1)).Return(laptop(), nil)

	// Act
	_, err := uc.UpdateItem(context.Background(), 1, ItemUpdate{StockCount: &negative})

	// Assert
	assert.ErrorIs(t, err, ErrInvalidItem)
	repo.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
}

func TestListMovements_UnknownItem(t *testing.T) {
	// Arrange
	uc, repo, _ := newTestUseCase()
	repo.On("GetItem", mock.Anything, int64(9)).Return(nil, ErrItemNotFound)

	// Act
	_, err := uc.ListMovements(context.Background(), 9)

	// Assert
	assert.ErrorIs(t, err, ErrItemNotFound)
	repo.AssertNotCalled(t, "ListMovements", mock.Anything, mock.Anything)
}
