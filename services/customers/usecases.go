package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/password"
)

// CustomerUseCase holds the account and wallet business rules.
type CustomerUseCase struct {
	repository    CustomerRepository
	tracer        trace.Tracer
	walletCounter metric.Int64Counter
	hashPassword  func(string) (string, error)
}

func NewCustomerUseCase(repository CustomerRepository, tracer trace.Tracer, meter metric.Meter) (*CustomerUseCase, error) {
	walletCounter, err := meter.Int64Counter("customers.wallet.operations",
		metric.WithDescription("Wallet debits and credits by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet counter: %w", err)
	}

	return &CustomerUseCase{
		repository:    repository,
		tracer:        tracer,
		walletCounter: walletCounter,
		hashPassword:  password.Hash,
	}, nil
}

// Register creates an account with an empty wallet. Only customer, admin and
// product_manager roles may be stored.
func (uc *CustomerUseCase) Register(ctx context.Context, req RegisterRequest, role string) (int64, error) {
	if !authn.ValidRole(role) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	if err := req.validatePassword(); err != nil {
		return 0, err
	}

	customer := NewCustomer(req, role, "")
	if err := customer.Validate(); err != nil {
		return 0, err
	}

	hash, err := uc.hashPassword(req.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	customer.PasswordHash = hash

	id, err := uc.repository.CreateCustomer(ctx, customer)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).Info("✅ [CUSTOMER] registered",
		zap.Int64("customer_id", id), zap.String("username", customer.Username), zap.String("role", role))
	return id, nil
}

func (uc *CustomerUseCase) ListCustomers(ctx context.Context) ([]Customer, error) {
	return uc.repository.ListCustomers(ctx)
}

func (uc *CustomerUseCase) GetCustomer(ctx context.Context, username string) (*Customer, error) {
	return uc.repository.GetCustomer(ctx, username)
}

func (uc *CustomerUseCase) UpdateCustomer(ctx context.Context, username string, update CustomerUpdate) (*Customer, error) {
	current, err := uc.repository.GetCustomer(ctx, username)
	if err != nil {
		return nil, err
	}

	updated, err := update.Apply(*current)
	if err != nil {
		return nil, err
	}

	if err := uc.repository.UpdateCustomer(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *CustomerUseCase) DeleteCustomer(ctx context.Context, username string) error {
	if err := uc.repository.DeleteCustomer(ctx, username); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("🗑️ [CUSTOMER] deleted", zap.String("username", username))
	return nil
}

func (uc *CustomerUseCase) ListTransactions(ctx context.Context, username string) ([]WalletTransaction, error) {
	customer, err := uc.repository.GetCustomer(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListTransactions(ctx, customer.ID)
}

// DeductFunds debits the wallet with a conditional update so the balance
// never goes negative.
func (uc *CustomerUseCase) ListWishlist(ctx context.Context, username string) ([]WishlistEntry, error) {
	customer, err := uc.repository.GetCustomer(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.repository.ListWishlist(ctx, customer.ID)
}

func (uc *CustomerUseCase) AddToWishlist(ctx context.Context, username string, itemID int64) (int64, error) {
	if itemID <= 0 {
		return 0, ErrItemNotFound
	}

	customer, err := uc.repository.GetCustomer(ctx, username)
	if err != nil {
		return 0, err
	}

	id, err := uc.repository.AddToWishlist(ctx, customer.ID, itemID)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("✅ [WISHLIST] item saved",
		zap.String("username", username),
		zap.Int64("item_id", itemID),
		zap.Int64("wishlist_id", id))
	return id, nil
}

func (uc *CustomerUseCase) RemoveFromWishlist(ctx context.Context, username string, wishlistID int64) error {
	customer, err := uc.repository.GetCustomer(ctx, username)
	if err != nil {
		return err
	}
	return uc.repository.RemoveFromWishlist(ctx, customer.ID, wishlistID)
}

func (uc *CustomerUseCase) DeductFunds(ctx context.Context, username string, amount decimal.Decimal, actor string) (decimal.Decimal, error) {
	return uc.changeWallet(ctx, username, amount, actor, TransactionTypeDebit)
}

func (uc *CustomerUseCase) AddFunds(ctx context.Context, username string, amount decimal.Decimal, actor string) (decimal.Decimal, error) {
	return uc.changeWallet(ctx, username, amount, actor, TransactionTypeCredit)
}

func (uc *CustomerUseCase) changeWallet(ctx context.Context, username string, amount decimal.Decimal, actor, transactionType string) (balance decimal.Decimal, err error) {
	ctx, span := uc.tracer.Start(ctx, "customers.wallet."+transactionType, trace.WithAttributes(
		attribute.String("username", username),
		attribute.String("amount", amount.String()),
	))
	defer span.End()

	logger := logging.FromContext(ctx).With(
		zap.String("username", username),
		zap.String("amount", amount.String()),
		zap.String("actor", actor),
	)

	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "failure"
			span.RecordError(err)
		}
		uc.walletCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.String("type", transactionType),
			attribute.String("outcome", outcome),
		))
	}()

	if err := validateAmount(amount); err != nil {
		return decimal.Zero, err
	}

	tx, err := uc.repository.BeginTx(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer tx.Rollback(context.WithoutCancel(ctx))

	var customerID int64
	if transactionType == TransactionTypeDebit {
		customerID, balance, err = uc.repository.DebitWallet(ctx, tx, username, amount)
	} else {
		customerID, balance, err = uc.repository.CreditWallet(ctx, tx, username, amount)
	}
	if err != nil {
		logger.Info("❌ [WALLET] "+transactionType+" rejected", zap.Error(err))
		return decimal.Zero, err
	}

	transaction := NewWalletTransaction(uuid.New().String(), customerID, amount, transactionType, actor)
	if err := uc.repository.RecordTransaction(ctx, tx, transaction); err != nil {
		return decimal.Zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit wallet %s: %w", transactionType, err)
	}

	logger.Info("💸 [WALLET] "+transactionType, zap.String("new_balance", balance.String()))
	return balance, nil
}
