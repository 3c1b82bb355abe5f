package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/logging"
)

// InventoryUseCase holds the inventory business rules.
type InventoryUseCase struct {
	repository InventoryRepository
	tracer     trace.Tracer
}

func NewInventoryUseCase(repository InventoryRepository, tracer trace.Tracer) *InventoryUseCase {
	return &InventoryUseCase{
		repository: repository,
		tracer:     tracer,
	}
}

func (uc *InventoryUseCase) ListItems(ctx context.Context) ([]Item, error) {
	return uc.repository.ListItems(ctx)
}

func (uc *InventoryUseCase) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	return uc.repository.GetItem(ctx, itemID)
}

func (uc *InventoryUseCase) CreateItem(ctx context.Context, req CreateItemRequest) (int64, error) {
	item, err := NewItem(req)
	if err != nil {
		return 0, err
	}

	id, err := uc.repository.CreateItem(ctx, item)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("✅ [ITEM] created", zap.Int64("item_id", id), zap.String("name", item.Name))
	return id, nil
}

func (uc *InventoryUseCase) UpdateItem(ctx context.Context, itemID int64, update ItemUpdate) (*Item, error) {
	current, err := uc.repository.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	updated, err := update.Apply(*current)
	if err != nil {
		return nil, err
	}

	if err := uc.repository.UpdateItem(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *InventoryUseCase) DeleteItem(ctx context.Context, itemID int64) error {
	if err := uc.repository.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("🗑️ [ITEM] deleted", zap.Int64("item_id", itemID))
	return nil
}

func (uc *InventoryUseCase) ListMovements(ctx context.Context, itemID int64) ([]InventoryMovement, error) {
	if _, err := uc.repository.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	return uc.repository.ListMovements(ctx, itemID)
}

// RemoveStock decrements stock with a conditional update so the count never
// goes negative, and records the movement in the same transaction.
func (uc *InventoryUseCase) RemoveStock(ctx context.Context, itemID int64, quantity int, actor string) (int, error) {
	return uc.changeStock(ctx, itemID, quantity, actor, MovementTypeDecreased)
}

func (uc *InventoryUseCase) AddStock(ctx context.Context, itemID int64, quantity int, actor string) (int, error) {
	return uc.changeStock(ctx, itemID, quantity, actor, MovementTypeIncreased)
}

func (uc *InventoryUseCase) changeStock(ctx context.Context, itemID int64, quantity int, actor, movementType string) (int, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory."+movementType, trace.WithAttributes(
		attribute.Int64("item_id", itemID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	logger := logging.FromContext(ctx).With(
		zap.Int64("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.String("actor", actor),
	)

	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	var (
		stock  int
		change int
	)
	if movementType == MovementTypeDecreased {
		stock, err = uc.repository.RemoveStock(ctx, tx, itemID, quantity)
		change = -quantity
	} else {
		stock, err = uc.repository.AddStock(ctx, tx, itemID, quantity)
		change = quantity
	}
	if err != nil {
		logger.Info("❌ [STOCK] change rejected", zap.String("movement", movementType), zap.Error(err))
		span.RecordError(err)
		return 0, err
	}

	movement := NewInventoryMovement(uuid.New().String(), itemID, change, movementType, actor)
	if err := uc.repository.RecordMovement(ctx, tx, movement); err != nil {
		span.RecordError(err)
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to commit stock change: %w", err)
	}

	logger.Info("✅ [STOCK] "+movementType, zap.Int("new_stock", stock))
	return stock, nil
}
