package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/ecommerce-services/internal/money"
)

// InventoryRepository is the persistence port of the inventory service.
type InventoryRepository interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	CreateItem(ctx context.Context, item *Item) (int64, error)
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, itemID int64) error
	ListMovements(ctx context.Context, itemID int64) ([]InventoryMovement, error)

	BeginTx(ctx context.Context) (Tx, error)
	// RemoveStock decrements only if enough stock remains and returns the new count.
	RemoveStock(ctx context.Context, tx Tx, itemID int64, quantity int) (int, error)
	AddStock(ctx context.Context, tx Tx, itemID int64, quantity int) (int, error)
	RecordMovement(ctx context.Context, tx Tx, movement *InventoryMovement) error
}

type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// PostgresTx wraps a pgx transaction.
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *PostgresTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

type PostgresInventoryRepository struct {
	db *pgxpool.Pool
}

func NewInventoryRepository(db *pgxpool.Pool) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{db: db}
}

const itemColumns = `id, name, category, description, price_per_item::text, stock_count, created_at, updated_at`

func scanItem(row pgx.Row) (*Item, error) {
	var (
		item  Item
		price string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Category, &item.Description, &price,
		&item.StockCount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if item.PricePerItem, err = money.Parse(price); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *PostgresInventoryRepository) ListItems(ctx context.Context) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Item, error) {
		item, err := scanItem(row)
		if err != nil {
			return Item{}, err
		}
		return *item, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	return items, nil
}

func (r *PostgresInventoryRepository) GetItem(ctx context.Context, itemID int64) (*Item, error) {
	item, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory WHERE id = $1`, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *PostgresInventoryRepository) CreateItem(ctx context.Context, item *Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO inventory (name, category, description, price_per_item, stock_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4::text::numeric, $5, $6, $7)
		RETURNING id
	`, item.Name, item.Category, item.Description, item.PricePerItem.StringFixed(money.Scale),
		item.StockCount, item.CreatedAt, item.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	return id, nil
}

func (r *PostgresInventoryRepository) UpdateItem(ctx context.Context, item *Item) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory
		SET name = $2, category = $3, description = $4, price_per_item = $5::text::numeric,
		    stock_count = $6, updated_at = $7
		WHERE id = $1
	`, item.ID, item.Name, item.Category, item.Description, item.PricePerItem.StringFixed(money.Scale),
		item.StockCount, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresInventoryRepository) DeleteItem(ctx context.Context, itemID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresInventoryRepository) ListMovements(ctx context.Context, itemID int64) ([]InventoryMovement, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, item_id, change_quantity, movement_type, actor, created_at
		FROM inventory_movements
		WHERE item_id = $1
		ORDER BY created_at DESC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (InventoryMovement, error) {
		var m InventoryMovement
		err := row.Scan(&m.ID, &m.ItemID, &m.ChangeQuantity, &m.MovementType, &m.Actor, &m.CreatedAt)
		return m, err
	})
}

func (r *PostgresInventoryRepository) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &PostgresTx{tx: tx}, nil
}

func (r *PostgresInventoryRepository) RemoveStock(ctx context.Context, tx Tx, itemID int64, quantity int) (int, error) {
	pgTx := tx.(*PostgresTx).tx

	var stock int
	err := pgTx.QueryRow(ctx, `
		UPDATE inventory
		SET stock_count = stock_count - $2,
		    updated_at = NOW()
		WHERE id = $1 AND stock_count >= $2
		RETURNING stock_count
	`, itemID, quantity).Scan(&stock)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to decrease stock: %w", err)
	}

	var exists bool
	if err := pgTx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM inventory WHERE id = $1)`, itemID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return 0, ErrItemNotFound
	}
	return 0, ErrNotEnoughStock
}

func (r *PostgresInventoryRepository) AddStock(ctx context.Context, tx Tx, itemID int64, quantity int) (int, error) {
	pgTx := tx.(*PostgresTx).tx

	var stock int
	err := pgTx.QueryRow(ctx, `
		UPDATE inventory
		SET stock_count = stock_count + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING stock_count
	`, itemID, quantity).Scan(&stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increase stock: %w", err)
	}
	return stock, nil
}

func (r *PostgresInventoryRepository) RecordMovement(ctx context.Context, tx Tx, movement *InventoryMovement) error {
	pgTx := tx.(*PostgresTx).tx

	_, err := pgTx.Exec(ctx, `
		INSERT INTO inventory_movements (id, item_id, change_quantity, movement_type, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, movement.ID, movement.ItemID, movement.ChangeQuantity, movement.MovementType, movement.Actor, movement.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert movement record: %w", err)
	}
	return nil
}
