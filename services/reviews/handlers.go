package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/request"
)

type ReviewService interface {
	GetReview(ctx context.Context, reviewID int64) (*Review, error)
	ListItemReviews(ctx context.Context, itemID int64) ([]Review, error)
	ListOwnReviews(ctx context.Context, identity authn.Identity, token string) ([]Review, error)
	SubmitReview(ctx context.Context, identity authn.Identity, token string, itemID int64, req SubmitReviewRequest) (int64, error)
	UpdateReview(ctx context.Context, identity authn.Identity, reviewID int64, update ReviewUpdate) (*Review, error)
	DeleteReview(ctx context.Context, identity authn.Identity, reviewID int64) error
	FlagReview(ctx context.Context, reviewID int64, actor string) error
	ApproveReview(ctx context.Context, reviewID int64, actor string) error
}

// ReviewHandler holds the HTTP handlers of the reviews service.
type ReviewHandler struct {
	useCase ReviewService
}

func NewReviewHandler(useCase ReviewService) *ReviewHandler {
	return &ReviewHandler{useCase: useCase}
}

func (h *ReviewHandler) RegisterRoutes(r gin.IRouter, verifier *authn.Verifier) {
	api := r.Group("/reviews", authn.RequireAuth(verifier))
	moderation := authn.RequireRoles(authn.RoleAdmin, authn.RoleProductManager)

	api.GET("/customer", h.ListOwnReviews)
	api.GET("/product/:item_id", h.ListItemReviews)
	api.GET("/:review_id", h.GetReview)
	api.POST("/:item_id", h.SubmitReview)
	api.PUT("/:review_id", h.UpdateReview)
	api.DELETE("/:review_id", h.DeleteReview)
	api.PUT("/flag/:review_id", moderation, h.FlagReview)
	api.PUT("/approve/:review_id", moderation, h.ApproveReview)
}

func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}

	review, err := h.useCase.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *ReviewHandler) ListOwnReviews(c *gin.Context) {
	identity, _ := authn.IdentityFrom(c)

	reviews, err := h.useCase.ListOwnReviews(c.Request.Context(), identity, authn.TokenFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, reviews)
}

func (h *ReviewHandler) ListItemReviews(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	reviews, err := h.useCase.ListItemReviews(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.list(c, reviews)
}

func (h *ReviewHandler) list(c *gin.Context, reviews []Review) {
	if reviews == nil {
		reviews = []Review{}
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	itemID, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := authn.IdentityFrom(c)
	id, err := h.useCase.SubmitReview(c.Request.Context(), identity, authn.TokenFrom(c), itemID, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted successfully", "review_id": id})
}

func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}

	var update ReviewUpdate
	if err := request.DecodeStrict(c.Request.Body, &update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, _ := authn.IdentityFrom(c)
	review, err := h.useCase.UpdateReview(c.Request.Context(), identity, reviewID, update)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "review": review})
}

func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}

	identity, _ := authn.IdentityFrom(c)
	if err := h.useCase.DeleteReview(c.Request.Context(), identity, reviewID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted successfully"})
}

func (h *ReviewHandler) FlagReview(c *gin.Context) {
	h.moderate(c, h.useCase.FlagReview, "flagged")
}

func (h *ReviewHandler) ApproveReview(c *gin.Context) {
	h.moderate(c, h.useCase.ApproveReview, "approved")
}

func (h *ReviewHandler) moderate(c *gin.Context, apply func(context.Context, int64, string) error, verb string) {
	reviewID, ok := reviewIDParam(c)
	if !ok {
		return
	}

	identity, _ := authn.IdentityFrom(c)
	if err := apply(c.Request.Context(), reviewID, identity.Username); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Review %d %s successfully", reviewID, verb)})
}

func (h *ReviewHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrReviewNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	case errors.Is(err, ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
	case errors.Is(err, ErrNotReviewOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, ErrInvalidReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrCustomersUnavailable):
		logging.FromContext(c.Request.Context()).Warn("customers lookup failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Customers service unavailable"})
	default:
		logging.FromContext(c.Request.Context()).Error("reviews request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// reviewIDParam and itemIDParam write 404 for ids that are not integers.
func reviewIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("review_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return 0, false
	}
	return id, true
}

func itemIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
		return 0, false
	}
	return id, true
}
