package main

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
)

// InventoryStore is the inventory service as seen from sales.
type InventoryStore interface {
	GetItem(ctx context.Context, token string, itemID int64) (*Item, error)
	ListItems(ctx context.Context, token string) ([]Item, error)
	// DecrementStock returns the stock left after the decrement.
	DecrementStock(ctx context.Context, token string, itemID int64, quantity int) (int, error)
}

// CustomerStore is the customers service as seen from sales.
type CustomerStore interface {
	GetCustomer(ctx context.Context, token string, username string) (*Customer, error)
	// DebitWallet returns the balance left after the debit.
	DebitWallet(ctx context.Context, token string, username string, amount decimal.Decimal) (decimal.Decimal, error)
}

type OrderLedger interface {
	AppendOrder(ctx context.Context, order *Order) error
	ListOrdersByCustomer(ctx context.Context, username string) ([]Order, error)
}

// PartialFailureRecorder stores purchases that charged the wallet but did not complete.
type PartialFailureRecorder interface {
	RecordPartialFailure(ctx context.Context, incident *PurchaseIncident) error
}

type TokenIssuer interface {
	DownstreamToken(identity authn.Identity) (string, error)
}

// CatalogCache fronts catalog reads. Misses and errors both report ok=false.
type CatalogCache interface {
	GetItem(ctx context.Context, itemID int64) (*Item, bool)
	SetItem(ctx context.Context, item *Item)
	GetItems(ctx context.Context) ([]Item, bool)
	SetItems(ctx context.Context, items []Item)
	// Invalidate drops the cached item and the cached list.
	Invalidate(ctx context.Context, itemID int64)
}
