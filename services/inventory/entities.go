package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrNotEnoughStock  = errors.New("not enough stock available")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidItem     = errors.New("invalid item")
)

// Item is a sellable good with its stock count.
type Item struct {
	ID           int64           `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Category     string          `json:"category" db:"category"`
	Description  *string         `json:"description,omitempty" db:"description"`
	PricePerItem decimal.Decimal `json:"price_per_item" db:"price_per_item"`
	StockCount   int             `json:"stock_count" db:"stock_count"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// NewItem builds a validated item from a create request.
func NewItem(req CreateItemRequest) (*Item, error) {
	item := &Item{
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Description:  req.Description,
		PricePerItem: req.PricePerItem,
		StockCount:   req.StockCount,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func (i *Item) Validate() error {
	switch {
	case i.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	case len(i.Name) > 100:
		return fmt.Errorf("%w: name must be at most 100 characters", ErrInvalidItem)
	case i.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidItem)
	case len(i.Category) > 50:
		return fmt.Errorf("%w: category must be at most 50 characters", ErrInvalidItem)
	case !i.PricePerItem.IsPositive():
		return fmt.Errorf("%w: price_per_item must be greater than zero", ErrInvalidItem)
	case i.StockCount < 0:
		return fmt.Errorf("%w: stock_count must not be negative", ErrInvalidItem)
	}
	return nil
}

type CreateItemRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  *string         `json:"description"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	StockCount   int             `json:"stock_count"`
}

// ItemUpdate lists the only fields a PUT may change. Nil means unchanged.
type ItemUpdate struct {
	Name         *string          `json:"name"`
	Category     *string          `json:"category"`
	Description  *string          `json:"description"`
	PricePerItem *decimal.Decimal `json:"price_per_item"`
	StockCount   *int             `json:"stock_count"`
}

// Apply merges u into a copy of item and validates the result.
func (u ItemUpdate) Apply(item Item) (*Item, error) {
	if u.Name != nil {
		item.Name = strings.TrimSpace(*u.Name)
	}
	if u.Category != nil {
		item.Category = strings.TrimSpace(*u.Category)
	}
	if u.Description != nil {
		item.Description = u.Description
	}
	if u.PricePerItem != nil {
		item.PricePerItem = *u.PricePerItem
	}
	if u.StockCount != nil {
		item.StockCount = *u.StockCount
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.UpdatedAt = time.Now().UTC()
	return &item, nil
}

// InventoryMovement is one stock change, written in the same transaction as the change.
type InventoryMovement struct {
	ID             string    `json:"id" db:"id"`
	ItemID         int64     `json:"item_id" db:"item_id"`
	ChangeQuantity int       `json:"change_quantity" db:"change_quantity"`
	MovementType   string    `json:"movement_type" db:"movement_type"`
	Actor          string    `json:"actor" db:"actor"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func NewInventoryMovement(id string, itemID int64, changeQuantity int, movementType, actor string) *InventoryMovement {
	return &InventoryMovement{
		ID:             id,
		ItemID:         itemID,
		ChangeQuantity: changeQuantity,
		MovementType:   movementType,
		Actor:          actor,
		CreatedAt:      time.Now().UTC(),
	}
}

const (
	MovementTypeDecreased = "decreased"
	MovementTypeIncreased = "increased"
)
