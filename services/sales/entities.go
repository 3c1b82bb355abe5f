package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/ecommerce-services/internal/money"
)

// Item is the inventory service's view of a sellable good.
type Item struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Description  *string         `json:"description,omitempty"`
	PricePerItem decimal.Decimal `json:"price_per_item"`
	StockCount   int             `json:"stock_count"`
}

// Customer carries only what the purchase flow reads from the customers service.
type Customer struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Fullname string          `json:"fullname"`
	Wallet   decimal.Decimal `json:"wallet"`
}

// Order is an append-only ledger row; it exists only for completed purchases.
type Order struct {
	ID               string          `json:"id" db:"id"`
	CustomerID       int64           `json:"customer_id" db:"customer_id"`
	CustomerUsername string          `json:"customer_username" db:"customer_username"`
	ItemID           int64           `json:"item_id" db:"item_id"`
	GoodName         string          `json:"good_name" db:"good_name"`
	Quantity         int             `json:"quantity" db:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalCost        decimal.Decimal `json:"total_cost" db:"total_cost"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// NewOrder snapshots the item name and price at purchase time.
func NewOrder(id string, customer *Customer, item *Item, quantity int) *Order {
	return &Order{
		ID:               id,
		CustomerID:       customer.ID,
		CustomerUsername: customer.Username,
		ItemID:           item.ID,
		GoodName:         item.Name,
		Quantity:         quantity,
		UnitPrice:        item.PricePerItem,
		TotalCost:        money.Total(item.PricePerItem, quantity),
		CreatedAt:        time.Now().UTC(),
	}
}

// PurchaseIncident records a purchase that failed after the wallet was debited.
type PurchaseIncident struct {
	ID               string          `json:"id" db:"id"`
	OrderID          string          `json:"order_id" db:"order_id"`
	CustomerUsername string          `json:"customer_username" db:"customer_username"`
	ItemID           int64           `json:"item_id" db:"item_id"`
	Quantity         int             `json:"quantity" db:"quantity"`
	TotalCost        decimal.Decimal `json:"total_cost" db:"total_cost"`
	FailedStep       PurchaseStep    `json:"failed_step" db:"failed_step"`
	WalletCharged    bool            `json:"wallet_charged" db:"wallet_charged"`
	StockDecremented bool            `json:"stock_decremented" db:"stock_decremented"`
	Error            string          `json:"error" db:"error"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

type PurchaseResult struct {
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}
