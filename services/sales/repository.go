package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/ecommerce-services/internal/money"
)

// PostgresOrderLedger implements OrderLedger on the orders table.
type PostgresOrderLedger struct {
	db *pgxpool.Pool
}

func NewOrderLedger(db *pgxpool.Pool) *PostgresOrderLedger {
	return &PostgresOrderLedger{db: db}
}

func (r *PostgresOrderLedger) AppendOrder(ctx context.Context, order *Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (id, customer_id, customer_username, item_id, good_name, quantity, unit_price, total_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8::text::numeric, $9)
	`, order.ID, order.CustomerID, order.CustomerUsername, order.ItemID, order.GoodName, order.Quantity,
		order.UnitPrice.String(), order.TotalCost.String(), order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *PostgresOrderLedger) ListOrdersByCustomer(ctx context.Context, username string) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, customer_id, customer_username, item_id, good_name, quantity,
		       unit_price::text, total_cost::text, created_at
		FROM orders
		WHERE customer_username = $1
		ORDER BY created_at DESC
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row pgx.CollectableRow) (Order, error) {
	var (
		o                Order
		unitPrice, total string
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerUsername, &o.ItemID, &o.GoodName, &o.Quantity,
		&unitPrice, &total, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}

	if o.UnitPrice, err = money.Parse(unitPrice); err != nil {
		return Order{}, err
	}
	if o.TotalCost, err = money.Parse(total); err != nil {
		return Order{}, err
	}
	return o, nil
}

// PostgresIncidentRecorder implements PartialFailureRecorder on purchase_incidents.
type PostgresIncidentRecorder struct {
	db *pgxpool.Pool
}

func NewIncidentRecorder(db *pgxpool.Pool) *PostgresIncidentRecorder {
	return &PostgresIncidentRecorder{db: db}
}

func (r *PostgresIncidentRecorder) RecordPartialFailure(ctx context.Context, incident *PurchaseIncident) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO purchase_incidents (
			id, order_id, customer_username, item_id, quantity, total_cost,
			failed_step, wallet_charged, stock_decremented, error, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8, $9, $10, $11)
	`, incident.ID, incident.OrderID, incident.CustomerUsername, incident.ItemID, incident.Quantity,
		incident.TotalCost.String(), string(incident.FailedStep), incident.WalletCharged,
		incident.StockDecremented, incident.Error, incident.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase incident: %w", err)
	}
	return nil
}

// ListIncidents returns incidents newest first, for operators.
func (r *PostgresIncidentRecorder) ListIncidents(ctx context.Context, limit int) ([]PurchaseIncident, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id::text, order_id::text, customer_username, item_id, quantity, total_cost::text,
		       failed_step, wallet_charged, stock_decremented, error, created_at
		FROM purchase_incidents
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (PurchaseIncident, error) {
		var (
			in    PurchaseIncident
			total string
			step  string
		)
		err := row.Scan(&in.ID, &in.OrderID, &in.CustomerUsername, &in.ItemID, &in.Quantity, &total,
			&step, &in.WalletCharged, &in.StockDecremented, &in.Error, &in.CreatedAt)
		if err != nil {
			return PurchaseIncident{}, err
		}
		in.FailedStep = PurchaseStep(step)
		in.TotalCost, err = money.Parse(total)
		return in, err
	})
}
