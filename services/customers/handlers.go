package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/money"
	"github.com/matheusmosca/ecommerce-services/internal/request"
)

type CustomerService interface {
	Register(ctx context.Context, req RegisterRequest, role string) (int64, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	GetCustomer(ctx context.Context, username string) (*Customer, error)
	UpdateCustomer(ctx context.Context, username string, update CustomerUpdate) (*Customer, error)
	DeleteCustomer(ctx context.Context, username string) error
	ListTransactions(ctx context.Context, username string) ([]WalletTransaction, error)
	DeductFunds(ctx context.Context, username string, amount decimal.Decimal, actor string) (decimal.Decimal, error)
	AddFunds(ctx context.Context, username string, amount decimal.Decimal, actor string) (decimal.Decimal, error)
	ListWishlist(ctx context.Context, username string) ([]WishlistEntry, error)
	AddToWishlist(ctx context.Context, username string, itemID int64) (int64, error)
	RemoveFromWishlist(ctx context.Context, username string, wishlistID int64) error
}

// CustomerHandler holds the HTTP handlers of the customers service.
type CustomerHandler struct {
	useCase CustomerService
}

func NewCustomerHandler(useCase CustomerService) *CustomerHandler {
	return &CustomerHandler{useCase: useCase}
}

func (h *CustomerHandler) RegisterRoutes(r gin.IRouter, verifier *authn.Verifier) {
	r.POST("/customers", h.Register)

	api := r.Group("", authn.RequireAuth(verifier))
	admins := authn.RequireRoles(authn.RoleAdmin)

	api.POST("/admins", admins, h.RegisterStaff)
	api.GET("/customers", admins, h.ListCustomers)
	api.GET("/customers/:username", h.GetCustomer)
	api.PUT("/customers/:username", h.UpdateCustomer)
	api.DELETE("/customers/:username", h.DeleteCustomer)
	api.GET("/customers/:username/wallet/transactions", h.ListTransactions)
	api.POST("/customers/:username/wallet/add", h.AddFunds)
	api.POST("/customers/:username/wallet/deduct", h.DeductFunds)
	api.GET("/customers/:username/wishlist", h.ListWishlist)
	api.POST("/customers/:username/wishlist", h.AddToWishlist)
	api.DELETE("/customers/:username/wishlist/:wishlist_id", h.RemoveFromWishlist)
}

func (h *CustomerHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.useCase.Register(c.Request.Context(), req, authn.RoleCustomer)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Customer added successfully", "customer_id": id})
}

func (h *CustomerHandler) RegisterStaff(c *gin.Context) {
	var req StaffRegisterRequest
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.useCase.Register(c.Request.Context(), req.RegisterRequest, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Admin added successfully", "customer_id": id})
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.useCase.ListCustomers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	username, ok := authorizeAccount(c, authn.RoleAdmin)
	if !ok {
		return
	}

	customer, err := h.useCase.GetCustomer(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer is reserved to the account owner.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	username, ok := authorizeAccount(c)
	if !ok {
		return
	}

	var update CustomerUpdate
	if err := request.DecodeStrict(c.Request.Body, &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, err := h.useCase.UpdateCustomer(c.Request.Context(), username, update)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Customer %s updated successfully", username), "customer": customer})
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	username, ok := authorizeAccount(c, authn.RoleAdmin)
	if !ok {
		return
	}

	if err := h.useCase.DeleteCustomer(c.Request.Context(), username); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Customer %s deleted successfully", username)})
}

func (h *CustomerHandler) ListTransactions(c *gin.Context) {
	username, ok := authorizeAccount(c, authn.RoleAdmin)
	if !ok {
		return
	}

	transactions, err := h.useCase.ListTransactions(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	if transactions == nil {
		transactions = []WalletTransaction{}
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *CustomerHandler) AddFunds(c *gin.Context) {
	h.changeWallet(c, h.useCase.AddFunds, "Charged %s to %s's wallet")
}

func (h *CustomerHandler) DeductFunds(c *gin.Context) {
	h.changeWallet(c, h.useCase.DeductFunds, "Deducted %s from %s's wallet")
}

func (h *CustomerHandler) changeWallet(c *gin.Context, change func(context.Context, string, decimal.Decimal, string) (decimal.Decimal, error), message string) {
	username, ok := authorizeAccount(c, authn.RoleAdmin)
	if !ok {
		return
	}

	var req struct {
		Amount json.RawMessage `json:"amount"`
	}
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}
	amount, err := money.DecodeAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	identity, _ := authn.IdentityFrom(c)
	balance, err := change(c.Request.Context(), username, amount, identity.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     fmt.Sprintf(message, amount.StringFixed(money.Scale), username),
		"new_balance": balance,
	})
}

func (h *CustomerHandler) ListWishlist(c *gin.Context) {
	username, ok := authorizeAccount(c, authn.RoleAdmin)
	if !ok {
		return
	}

	entries, err := h.useCase.ListWishlist(c.Request.Context(), username)
	if err != nil {
		h.fail(c, err)
		return
	}
	if entries == nil {
		entries = []WishlistEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": entries})
}

// AddToWishlist and RemoveFromWishlist are reserved to the account owner.
func (h *CustomerHandler) AddToWishlist(c *gin.Context) {
	username, ok := authorizeAccount(c)
	if !ok {
		return
	}

	var req struct {
		ItemID int64 `json:"item_id"`
	}
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil || req.ItemID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item_id. Must be a positive integer."})
		return
	}

	id, err := h.useCase.AddToWishlist(c.Request.Context(), username, req.ItemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item added to wishlist", "wishlist_id": id})
}

func (h *CustomerHandler) RemoveFromWishlist(c *gin.Context) {
	username, ok := authorizeAccount(c)
	if !ok {
		return
	}

	wishlistID, err := strconv.ParseInt(c.Param("wishlist_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist entry not found"})
		return
	}

	if err := h.useCase.RemoveFromWishlist(c.Request.Context(), username, wishlistID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item removed from wishlist"})
}

func (h *CustomerHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
	case errors.Is(err, ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient balance"})
	case errors.Is(err, ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is already taken"})
	case errors.Is(err, ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, ErrWishlistEntryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wishlist entry not found"})
	case errors.Is(err, ErrAlreadyWishlisted):
		c.JSON(http.StatusConflict, gin.H{"error": "Item is already on the wishlist"})
	case errors.Is(err, ErrInvalidCustomer), errors.Is(err, ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.FromContext(c.Request.Context()).Error("customers request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// authorizeAccount lets the owner of the :username account through, plus any
// of roles. It writes 403 otherwise.
func authorizeAccount(c *gin.Context, roles ...string) (string, bool) {
	username := c.Param("username")
	identity, _ := authn.IdentityFrom(c)
	if !authn.IsSelfOr(identity, username, roles...) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return "", false
	}
	return username, true
}
