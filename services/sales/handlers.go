package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/request"
)

const (
	msgInvalidQuantity     = "Invalid quantity. Must be a positive integer."
	msgInsufficientStock   = "Not enough stock available"
	msgInsufficientBalance = "Insufficient wallet balance"
	msgItemNotFound        = "Item not found"
	msgCustomerNotFound    = "Customer not found"
)

const (
	defaultIncidentsLimit = 50
	maxIncidentsLimit     = 1000
)

type PurchaseService interface {
	Purchase(ctx context.Context, identity authn.Identity, itemID int64, quantity int) (*PurchaseResult, error)
}

type CatalogService interface {
	ListItems(ctx context.Context, identity authn.Identity) ([]Item, error)
	GetItem(ctx context.Context, identity authn.Identity, itemID int64) (*Item, error)
}

type OrderService interface {
	ListOrders(ctx context.Context, identity authn.Identity) ([]Order, error)
}

type IncidentService interface {
	ListIncidents(ctx context.Context, limit int) ([]PurchaseIncident, error)
}

// SalesHandler holds the HTTP handlers of the sales service.
type SalesHandler struct {
	purchases PurchaseService
	catalog   CatalogService
	orders    OrderService
	incidents IncidentService
	tracer    trace.Tracer
}

func NewSalesHandler(purchases PurchaseService, catalog CatalogService, orders OrderService, incidents IncidentService, tracer trace.Tracer) *SalesHandler {
	return &SalesHandler{
		purchases: purchases,
		catalog:   catalog,
		orders:    orders,
		incidents: incidents,
		tracer:    tracer,
	}
}

func (h *SalesHandler) RegisterRoutes(r gin.IRouter, verifier *authn.Verifier) {
	api := r.Group("/", authn.RequireAuth(verifier))

	api.GET("/inventory", h.ListItems)
	api.GET("/inventory/:item_id", h.GetItem)
	api.POST("/purchase/:item_id",
		authn.RequireRoles(authn.RoleCustomer, authn.RoleAdmin, authn.RoleProductManager),
		h.Purchase)
	api.GET("/orders", h.ListOrders)
	api.GET("/incidents", authn.RequireRoles(authn.RoleAdmin), h.ListIncidents)
}

// Purchase handles POST /purchase/:item_id with body {"quantity": n}.
func (h *SalesHandler) Purchase(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "purchase_handler")
	defer span.End()

	identity, _ := authn.IdentityFrom(c)

	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgItemNotFound})
		return
	}

	quantity, err := request.Quantity(c.Request.Body)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidQuantity})
		return
	}

	span.SetAttributes(
		attribute.String("customer", identity.Username),
		attribute.Int64("item_id", itemID),
		attribute.Int("quantity", quantity),
	)

	result, err := h.purchases.Purchase(ctx, identity, itemID, quantity)
	if err != nil {
		span.RecordError(err)
		status, body := purchaseErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logging.FromContext(ctx).Error("purchase failed", zap.Error(err))
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  result.Message,
		"order_id": result.OrderID,
	})
}

func (h *SalesHandler) ListItems(c *gin.Context) {
	identity, _ := authn.IdentityFrom(c)

	items, err := h.catalog.ListItems(c.Request.Context(), identity)
	if err != nil {
		status, msg := classifyError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if items == nil {
		items = []Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *SalesHandler) GetItem(c *gin.Context) {
	identity, _ := authn.IdentityFrom(c)

	itemID, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": msgItemNotFound})
		return
	}

	item, err := h.catalog.GetItem(c.Request.Context(), identity, itemID)
	if err != nil {
		status, msg := classifyError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *SalesHandler) ListOrders(c *gin.Context) {
	identity, _ := authn.IdentityFrom(c)

	orders, err := h.orders.ListOrders(c.Request.Context(), identity)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("list orders failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	c.JSON(http.StatusOK, orders)
}

func (h *SalesHandler) ListIncidents(c *gin.Context) {
	limit := defaultIncidentsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxIncidentsLimit)
	}

	incidents, err := h.incidents.ListIncidents(c.Request.Context(), limit)
	if err != nil {
		logging.FromContext(c.Request.Context()).Error("list incidents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if incidents == nil {
		incidents = []PurchaseIncident{}
	}
	c.JSON(http.StatusOK, incidents)
}

func purchaseErrorResponse(err error) (int, gin.H) {
	status, msg := classifyError(err)
	body := gin.H{"error": msg}

	var perr *PurchaseError
	if errors.As(err, &perr) && perr.Step != StepValidate {
		body["failed_step"] = perr.Step
		body["wallet_charged"] = perr.WalletCharged
	}
	return status, body
}

// classifyError maps domain and downstream errors to a status and message.
func classifyError(err error) (int, string) {
	var derr *DownstreamError
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		return http.StatusBadRequest, msgInvalidQuantity
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusBadRequest, msgInsufficientStock
	case errors.Is(err, ErrInsufficientBalance):
		return http.StatusBadRequest, msgInsufficientBalance
	case errors.Is(err, ErrItemNotFound):
		return http.StatusNotFound, msgItemNotFound
	case errors.Is(err, ErrCustomerNotFound):
		return http.StatusNotFound, msgCustomerNotFound
	case errors.As(err, &derr):
		switch derr.Kind {
		case KindTimeout:
			return http.StatusGatewayTimeout, fmt.Sprintf("The request to the %s service timed out", derr.Dependency)
		case KindUnavailable:
			return http.StatusServiceUnavailable, fmt.Sprintf("Unable to connect to the %s service", derr.Dependency)
		default:
			if derr.Message != "" {
				return http.StatusBadGateway, fmt.Sprintf("Unexpected response from the %s service: %s", derr.Dependency, derr.Message)
			}
			return http.StatusBadGateway, fmt.Sprintf("Unexpected response from the %s service", derr.Dependency)
		}
	}

	var perr *PurchaseError
	if errors.As(err, &perr) && perr.Step == StepRecordOrder {
		return http.StatusInternalServerError, "Purchase was charged but the order could not be recorded"
	}
	return http.StatusInternalServerError, "Internal server error"
}
