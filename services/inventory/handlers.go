package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/request"
)

type InventoryService interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, itemID int64) (*Item, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (int64, error)
	UpdateItem(ctx context.Context, itemID int64, update ItemUpdate) (*Item, error)
	DeleteItem(ctx context.Context, itemID int64) error
	ListMovements(ctx context.Context, itemID int64) ([]InventoryMovement, error)
	RemoveStock(ctx context.Context, itemID int64, quantity int, actor string) (int, error)
	AddStock(ctx context.Context, itemID int64, quantity int, actor string) (int, error)
}

// InventoryHandler holds the HTTP handlers of the inventory service.
type InventoryHandler struct {
	useCase InventoryService
}

func NewInventoryHandler(useCase InventoryService) *InventoryHandler {
	return &InventoryHandler{useCase: useCase}
}

func (h *InventoryHandler) RegisterRoutes(r gin.IRouter, verifier *authn.Verifier) {
	api := r.Group("/inventory", authn.RequireAuth(verifier))
	managers := authn.RequireRoles(authn.RoleAdmin, authn.RoleProductManager)

	api.GET("", h.ListItems)
	api.GET("/:item_id", h.GetItem)
	api.POST("", managers, h.CreateItem)
	api.PUT("/:item_id", managers, h.UpdateItem)
	api.DELETE("/:item_id", managers, h.DeleteItem)
	api.GET("/:item_id/movements", managers, h.ListMovements)
	api.POST("/:item_id/remove_stock",
		authn.RequireRoles(authn.RoleAdmin, authn.RoleProductManager, authn.RoleService),
		h.RemoveStock)
	api.POST("/:item_id/add_stock", managers, h.AddStock)
}

func (h *InventoryHandler) ListItems(c *gin.Context) {
	items, err := h.useCase.ListItems(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	item, err := h.useCase.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.useCase.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added successfully", "item_id": id})
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var update ItemUpdate
	if err := request.DecodeStrict(c.Request.Body, &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.useCase.UpdateItem(c.Request.Context(), itemID, update)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully", "item": item})
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	if err := h.useCase.DeleteItem(c.Request.Context(), itemID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	movements, err := h.useCase.ListMovements(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if movements == nil {
		movements = []InventoryMovement{}
	}
	c.JSON(http.StatusOK, movements)
}

func (h *InventoryHandler) RemoveStock(c *gin.Context) {
	h.changeStock(c, h.useCase.RemoveStock)
}

func (h *InventoryHandler) AddStock(c *gin.Context) {
	h.changeStock(c, h.useCase.AddStock)
}

func (h *InventoryHandler) changeStock(c *gin.Context, change func(context.Context, int64, int, string) (int, error)) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	quantity, err := request.Quantity(c.Request.Body)
	if err != nil || quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity. Must be a positive integer."})
		return
	}

	identity, _ := authn.IdentityFrom(c)
	stock, err := change(c.Request.Context(), itemID, quantity, identity.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock updated successfully", "new_stock": stock})
}

func (h *InventoryHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, ErrNotEnoughStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock available"})
	case errors.Is(err, ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity. Must be a positive integer."})
	case errors.Is(err, ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context()).Error("inventory request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// itemIDParam writes 404 for ids that are not integers.
func itemIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return 0, false
	}
	return id, true
}
