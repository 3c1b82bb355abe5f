package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	inventoryDependency = "inventory"
	customersDependency = "customers"
)

// downstream is a resty client bound to one service with a fixed timeout.
type downstream struct {
	name   string
	client *resty.Client
}

func newDownstream(name, baseURL string, timeout time.Duration) *downstream {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(r.Header))
		return nil
	})

	return &downstream{name: name, client: client}
}

// call executes one request and decodes a 2xx JSON body into out. Every other
// outcome becomes a *DownstreamError.
func (d *downstream) call(ctx context.Context, operation, token, method, path string, params map[string]string, body, out any) error {
	req := d.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParams(params)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return &DownstreamError{
			Dependency: d.name,
			Operation:  operation,
			Kind:       transportKind(err),
			Err:        err,
		}
	}

	if !resp.IsSuccess() {
		return &DownstreamError{
			Dependency: d.name,
			Operation:  operation,
			StatusCode: resp.StatusCode(),
			Kind:       statusKind(resp.StatusCode()),
			Message:    errorMessage(resp.Body(), resp.Status()),
		}
	}

	if !isJSON(resp.Header().Get("Content-Type")) {
		return &DownstreamError{
			Dependency: d.name,
			Operation:  operation,
			StatusCode: resp.StatusCode(),
			Kind:       KindBadResponse,
			Message:    "Unexpected content type; JSON expected",
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &DownstreamError{
			Dependency: d.name,
			Operation:  operation,
			StatusCode: resp.StatusCode(),
			Kind:       KindBadResponse,
			Message:    "invalid JSON body",
			Err:        err,
		}
	}
	return nil
}

func transportKind(err error) DownstreamKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindUnavailable
}

func statusKind(status int) DownstreamKind {
	switch status {
	case http.StatusGatewayTimeout:
		return KindTimeout
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindBadResponse
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fallback
}

// statusIs reports whether err is a DownstreamError with the given status.
func statusIs(err error, status int) (*DownstreamError, bool) {
	var derr *DownstreamError
	if errors.As(err, &derr) && derr.StatusCode == status {
		return derr, true
	}
	return nil, false
}

// RestyInventoryStore talks to the inventory service over HTTP.
type RestyInventoryStore struct {
	*downstream
}

func NewRestyInventoryStore(baseURL string, timeout time.Duration) *RestyInventoryStore {
	return &RestyInventoryStore{downstream: newDownstream(inventoryDependency, baseURL, timeout)}
}

func (s *RestyInventoryStore) GetItem(ctx context.Context, token string, itemID int64) (*Item, error) {
	var item Item
	err := s.call(ctx, "get_item", token, http.MethodGet, "/inventory/{item_id}",
		map[string]string{"item_id": strconv.FormatInt(itemID, 10)}, nil, &item)
	if err != nil {
		if _, ok := statusIs(err, http.StatusNotFound); ok {
			return nil, fmt.Errorf("%w: %w", ErrItemNotFound, err)
		}
		return nil, err
	}
	return &item, nil
}

func (s *RestyInventoryStore) ListItems(ctx context.Context, token string) ([]Item, error) {
	var items []Item
	if err := s.call(ctx, "list_items", token, http.MethodGet, "/inventory", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *RestyInventoryStore) DecrementStock(ctx context.Context, token string, itemID int64, quantity int) (int, error) {
	var out struct {
		Message  string `json:"message"`
		NewStock int    `json:"new_stock"`
	}
	err := s.call(ctx, "decrement_stock", token, http.MethodPost, "/inventory/{item_id}/remove_stock",
		map[string]string{"item_id": strconv.FormatInt(itemID, 10)},
		map[string]int{"quantity": quantity}, &out)
	if err != nil {
		if _, ok := statusIs(err, http.StatusNotFound); ok {
			return 0, fmt.Errorf("%w: %w", ErrItemNotFound, err)
		}
		if derr, ok := statusIs(err, http.StatusBadRequest); ok && strings.Contains(strings.ToLower(derr.Message), "not enough stock") {
			return 0, fmt.Errorf("%w: %w", ErrInsufficientStock, err)
		}
		return 0, err
	}
	return out.NewStock, nil
}

// RestyCustomerStore talks to the customers service over HTTP.
type RestyCustomerStore struct {
	*downstream
}

func NewRestyCustomerStore(baseURL string, timeout time.Duration) *RestyCustomerStore {
	return &RestyCustomerStore{downstream: newDownstream(customersDependency, baseURL, timeout)}
}

func (s *RestyCustomerStore) GetCustomer(ctx context.Context, token string, username string) (*Customer, error) {
	var customer Customer
	err := s.call(ctx, "get_customer", token, http.MethodGet, "/customers/{username}",
		map[string]string{"username": username}, nil, &customer)
	if err != nil {
		if _, ok := statusIs(err, http.StatusNotFound); ok {
			return nil, fmt.Errorf("%w: %w", ErrCustomerNotFound, err)
		}
		return nil, err
	}
	return &customer, nil
}

func (s *RestyCustomerStore) DebitWallet(ctx context.Context, token string, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	var out struct {
		Message    string          `json:"message"`
		NewBalance decimal.Decimal `json:"new_balance"`
	}
	err := s.call(ctx, "debit_wallet", token, http.MethodPost, "/customers/{username}/wallet/deduct",
		map[string]string{"username": username},
		map[string]decimal.Decimal{"amount": amount}, &out)
	if err != nil {
		if _, ok := statusIs(err, http.StatusNotFound); ok {
			return decimal.Zero, fmt.Errorf("%w: %w", ErrCustomerNotFound, err)
		}
		if derr, ok := statusIs(err, http.StatusBadRequest); ok && strings.Contains(strings.ToLower(derr.Message), "insufficient balance") {
			return decimal.Zero, fmt.Errorf("%w: %w", ErrInsufficientBalance, err)
		}
		return decimal.Zero, err
	}
	return out.NewBalance, nil
}
