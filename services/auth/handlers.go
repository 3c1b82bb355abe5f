package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/request"
)

type LoginService interface {
	Login(ctx context.Context, req LoginRequest) (string, error)
}

type AuthHandler struct {
	useCase LoginService
}

func NewAuthHandler(useCase LoginService) *AuthHandler {
	return &AuthHandler{useCase: useCase}
}

func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/login", h.Login)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := request.DecodeStrict(c.Request.Body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username or password"})
		return
	}

	token, err := h.useCase.Login(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"access_token": token})
	case errors.Is(err, ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username or password"})
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
	default:
		logging.FromContext(c.Request.Context()).Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
