package main

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrItemNotFound        = errors.New("item not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrInsufficientStock   = errors.New("not enough stock available")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// PurchaseStep names the orchestrator step an error was raised in.
type PurchaseStep string

const (
	StepValidate           PurchaseStep = "validate"
	StepGetItem            PurchaseStep = "get_item"
	StepGetCustomer        PurchaseStep = "get_customer"
	StepCheckPreconditions PurchaseStep = "check_preconditions"
	StepDebitWallet        PurchaseStep = "debit_wallet"
	StepDecrementStock     PurchaseStep = "decrement_stock"
	StepRecordOrder        PurchaseStep = "record_order"
)

// PurchaseState is the state reached by a purchase; the flow only moves forward.
type PurchaseState string

const (
	StateValidating       PurchaseState = "VALIDATING"
	StateCheckingItem     PurchaseState = "CHECKING_ITEM"
	StateCheckingCustomer PurchaseState = "CHECKING_CUSTOMER"
	StatePreconditionsOK  PurchaseState = "PRECONDITIONS_OK"
	StateWalletDebited    PurchaseState = "WALLET_DEBITED"
	StateStockDecremented PurchaseState = "STOCK_DECREMENTED"
	StateOrderLogged      PurchaseState = "ORDER_LOGGED"
)

// PurchaseError wraps every failure returned by PurchaseUseCase.Purchase.
type PurchaseError struct {
	Step             PurchaseStep
	WalletCharged    bool
	StockDecremented bool
	Err              error
}

func (e *PurchaseError) Error() string {
	return fmt.Sprintf("purchase failed at %s: %v", e.Step, e.Err)
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}

type DownstreamKind string

const (
	KindTimeout     DownstreamKind = "timeout"
	KindUnavailable DownstreamKind = "unavailable"
	KindBadResponse DownstreamKind = "bad_response"
)

// DownstreamError is a transport failure, a non-2xx status or a non-JSON
// response from the inventory or customers service.
type DownstreamError struct {
	Dependency string
	Operation  string
	StatusCode int
	Kind       DownstreamKind
	Message    string
	Err        error
}

func (e *DownstreamError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Dependency, e.Operation, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DownstreamError) Unwrap() error {
	return e.Err
}
