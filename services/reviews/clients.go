package main

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// CustomerDirectory resolves the caller's account through the customers service.
type CustomerDirectory interface {
	GetCustomer(ctx context.Context, token, username string) (*Customer, error)
}

// RestyCustomerDirectory talks to the customers service over HTTP, forwarding
// the caller's own token.
type RestyCustomerDirectory struct {
	client *resty.Client
}

func NewRestyCustomerDirectory(baseURL string, timeout time.Duration) *RestyCustomerDirectory {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		otel.GetTextMapPropagator().Inject(r.Context(), propagation.HeaderCarrier(r.Header))
		return nil
	})

	return &RestyCustomerDirectory{client: client}
}

func (d *RestyCustomerDirectory) GetCustomer(ctx context.Context, token, username string) (*Customer, error) {
	var customer Customer
	resp, err := d.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetPathParam("username", username).
		SetResult(&customer).
		Get("/customers/{username}")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCustomersUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrCustomerNotFound
	case !resp.IsSuccess():
		return nil, fmt.Errorf("%w: get customer returned %s", ErrCustomersUnavailable, resp.Status())
	case !isJSON(resp.Header().Get("Content-Type")):
		return nil, fmt.Errorf("%w: unexpected content type %q", ErrCustomersUnavailable, resp.Header().Get("Content-Type"))
	case customer.ID == 0:
		return nil, fmt.Errorf("%w: customer payload has no id", ErrCustomersUnavailable)
	}
	return &customer, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}
