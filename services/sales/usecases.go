package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/money"
)

// PurchaseUseCase runs the purchase flow as sequential calls to the inventory
// and customers services followed by a local ledger insert. Nothing is retried
// or compensated; failures after the debit are handed to the incident recorder.
type PurchaseUseCase struct {
	inventory InventoryStore
	customers CustomerStore
	ledger    OrderLedger
	incidents PartialFailureRecorder
	cache     CatalogCache
	tokens    TokenIssuer
	tracer    trace.Tracer
	outcomes  metric.Int64Counter
}

func NewPurchaseUseCase(
	inventory InventoryStore,
	customers CustomerStore,
	ledger OrderLedger,
	incidents PartialFailureRecorder,
	cache CatalogCache,
	tokens TokenIssuer,
	tracer trace.Tracer,
	meter metric.Meter,
) (*PurchaseUseCase, error) {
	outcomes, err := meter.Int64Counter("sales.purchase.outcomes",
		metric.WithDescription("Purchases by outcome and failed step"))
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase counter: %w", err)
	}

	return &PurchaseUseCase{
		inventory: inventory,
		customers: customers,
		ledger:    ledger,
		incidents: incidents,
		cache:     cache,
		tokens:    tokens,
		tracer:    tracer,
		outcomes:  outcomes,
	}, nil
}

func (uc *PurchaseUseCase) Purchase(ctx context.Context, identity authn.Identity, itemID int64, quantity int) (result *PurchaseResult, err error) {
	ctx, span := uc.tracer.Start(ctx, "purchase", trace.WithAttributes(
		attribute.String("customer", identity.Username),
		attribute.Int64("item_id", itemID),
		attribute.Int("quantity", quantity),
	))
	defer span.End()

	logger := logging.FromContext(ctx).With(
		zap.String("customer", identity.Username),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", quantity),
	)
	defer func() { uc.finish(ctx, span, logger, err) }()

	enter(span, StateValidating)
	if quantity <= 0 {
		return nil, &PurchaseError{Step: StepValidate, Err: ErrInvalidQuantity}
	}

	token, err := uc.tokens.DownstreamToken(identity)
	if err != nil {
		return nil, &PurchaseError{Step: StepValidate, Err: fmt.Errorf("failed to derive downstream token: %w", err)}
	}

	enter(span, StateCheckingItem)
	item, err := uc.getItem(ctx, token, itemID)
	if err != nil {
		return nil, &PurchaseError{Step: StepGetItem, Err: err}
	}

	enter(span, StateCheckingCustomer)
	customer, err := uc.getCustomer(ctx, token, identity.Username)
	if err != nil {
		return nil, &PurchaseError{Step: StepGetCustomer, Err: err}
	}

	total := money.Total(item.PricePerItem, quantity)
	if item.StockCount < quantity {
		return nil, &PurchaseError{Step: StepCheckPreconditions, Err: ErrInsufficientStock}
	}
	if customer.Wallet.LessThan(total) {
		return nil, &PurchaseError{Step: StepCheckPreconditions, Err: ErrInsufficientBalance}
	}
	enter(span, StatePreconditionsOK)

	newBalance, err := uc.debitWallet(ctx, token, identity.Username, total)
	if err != nil {
		return nil, &PurchaseError{Step: StepDebitWallet, Err: err}
	}
	enter(span, StateWalletDebited)
	logger.Info("💸 [DEBIT] wallet charged",
		zap.String("total", total.String()),
		zap.String("new_balance", newBalance.String()))

	orderID := uuid.New().String()

	newStock, err := uc.decrementStock(ctx, token, itemID, quantity)
	if err != nil {
		perr := &PurchaseError{Step: StepDecrementStock, WalletCharged: true, Err: err}
		uc.recordIncident(ctx, logger, orderID, identity.Username, itemID, quantity, total, perr)
		return nil, perr
	}
	enter(span, StateStockDecremented)
	logger.Info("📦 [STOCK] stock decremented", zap.Int("new_stock", newStock))
	uc.cache.Invalidate(ctx, itemID)

	order := NewOrder(orderID, customer, item, quantity)
	if err := uc.appendOrder(ctx, order); err != nil {
		perr := &PurchaseError{
			Step:             StepRecordOrder,
			WalletCharged:    true,
			StockDecremented: true,
			Err:              fmt.Errorf("failed to record order: %w", err),
		}
		uc.recordIncident(ctx, logger, orderID, identity.Username, itemID, quantity, total, perr)
		return nil, perr
	}
	enter(span, StateOrderLogged)
	span.SetAttributes(attribute.String("order_id", order.ID))

	return &PurchaseResult{
		OrderID: order.ID,
		Message: fmt.Sprintf("%s purchased %d x %s", identity.Username, quantity, item.Name),
	}, nil
}

func (uc *PurchaseUseCase) getItem(ctx context.Context, token string, itemID int64) (*Item, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.get_item")
	defer span.End()

	item, err := uc.inventory.GetItem(ctx, token, itemID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return item, nil
}

func (uc *PurchaseUseCase) getCustomer(ctx context.Context, token, username string) (*Customer, error) {
	ctx, span := uc.tracer.Start(ctx, "customers.get_customer")
	defer span.End()

	customer, err := uc.customers.GetCustomer(ctx, token, username)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return customer, nil
}

func (uc *PurchaseUseCase) debitWallet(ctx context.Context, token, username string, total decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := uc.tracer.Start(ctx, "customers.debit_wallet",
		trace.WithAttributes(attribute.String("amount", total.String())))
	defer span.End()

	balance, err := uc.customers.DebitWallet(ctx, token, username, total)
	if err != nil {
		span.RecordError(err)
		return decimal.Zero, err
	}
	return balance, nil
}

func (uc *PurchaseUseCase) decrementStock(ctx context.Context, token string, itemID int64, quantity int) (int, error) {
	ctx, span := uc.tracer.Start(ctx, "inventory.decrement_stock")
	defer span.End()

	stock, err := uc.inventory.DecrementStock(ctx, token, itemID, quantity)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return stock, nil
}

func (uc *PurchaseUseCase) appendOrder(ctx context.Context, order *Order) error {
	ctx, span := uc.tracer.Start(ctx, "ledger.append_order")
	defer span.End()

	if err := uc.ledger.AppendOrder(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// recordIncident never changes the error returned to the caller.
func (uc *PurchaseUseCase) recordIncident(ctx context.Context, logger *zap.Logger, orderID, username string, itemID int64, quantity int, total decimal.Decimal, perr *PurchaseError) {
	incident := &PurchaseIncident{
		ID:               uuid.New().String(),
		OrderID:          orderID,
		CustomerUsername: username,
		ItemID:           itemID,
		Quantity:         quantity,
		TotalCost:        total,
		FailedStep:       perr.Step,
		WalletCharged:    perr.WalletCharged,
		StockDecremented: perr.StockDecremented,
		Error:            perr.Err.Error(),
		CreatedAt:        time.Now().UTC(),
	}

	// The caller may already be gone; the incident must still be written.
	ctx = context.WithoutCancel(ctx)
	if err := uc.incidents.RecordPartialFailure(ctx, incident); err != nil {
		logger.Error("❌ [INCIDENT] failed to record partial failure",
			zap.String("incident_id", incident.ID),
			zap.String("failed_step", string(perr.Step)),
			zap.Error(err))
		return
	}

	logger.Warn("⚠️ [INCIDENT] purchase left partially applied",
		zap.String("incident_id", incident.ID),
		zap.String("order_id", orderID),
		zap.String("failed_step", string(perr.Step)),
		zap.Bool("wallet_charged", perr.WalletCharged),
		zap.Bool("stock_decremented", perr.StockDecremented))
}

func (uc *PurchaseUseCase) finish(ctx context.Context, span trace.Span, logger *zap.Logger, err error) {
	outcome, step := "success", ""
	if err != nil {
		outcome = "failed"
		var perr *PurchaseError
		if errors.As(err, &perr) {
			step = string(perr.Step)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("❌ [PURCHASE] failed", zap.String("failed_step", step), zap.Error(err))
	} else {
		span.SetStatus(codes.Ok, "")
		logger.Info("✅ [PURCHASE] completed")
	}

	uc.outcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("failed_step", step),
	))
}

func enter(span trace.Span, state PurchaseState) {
	span.AddEvent(string(state))
}

// CatalogUseCase serves catalog reads through the optional cache. The
// purchase flow never reads from here.
type CatalogUseCase struct {
	inventory InventoryStore
	cache     CatalogCache
	tokens    TokenIssuer
}

func NewCatalogUseCase(inventory InventoryStore, cache CatalogCache, tokens TokenIssuer) *CatalogUseCase {
	return &CatalogUseCase{
		inventory: inventory,
		cache:     cache,
		tokens:    tokens,
	}
}

func (uc *CatalogUseCase) ListItems(ctx context.Context, identity authn.Identity) ([]Item, error) {
	if items, ok := uc.cache.GetItems(ctx); ok {
		return items, nil
	}

	token, err := uc.tokens.DownstreamToken(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to derive downstream token: %w", err)
	}

	items, err := uc.inventory.ListItems(ctx, token)
	if err != nil {
		return nil, err
	}
	uc.cache.SetItems(ctx, items)
	return items, nil
}

func (uc *CatalogUseCase) GetItem(ctx context.Context, identity authn.Identity, itemID int64) (*Item, error) {
	if item, ok := uc.cache.GetItem(ctx, itemID); ok {
		return item, nil
	}

	token, err := uc.tokens.DownstreamToken(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to derive downstream token: %w", err)
	}

	item, err := uc.inventory.GetItem(ctx, token, itemID)
	if err != nil {
		return nil, err
	}
	uc.cache.SetItem(ctx, item)
	return item, nil
}

// OrderUseCase reads the caller's own orders from the ledger.
type OrderUseCase struct {
	ledger OrderLedger
}

func NewOrderUseCase(ledger OrderLedger) *OrderUseCase {
	return &OrderUseCase{ledger: ledger}
}

func (uc *OrderUseCase) ListOrders(ctx context.Context, identity authn.Identity) ([]Order, error) {
	orders, err := uc.ledger.ListOrdersByCustomer(ctx, identity.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}
