package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/ecommerce-services/internal/authn"
	"github.com/matheusmosca/ecommerce-services/internal/logging"
	"github.com/matheusmosca/ecommerce-services/internal/password"
)

type TokenIssuer interface {
	Issue(identity authn.Identity) (string, error)
}

// AuthUseCase exchanges credentials for an access token.
type AuthUseCase struct {
	repository     CredentialRepository
	issuer         TokenIssuer
	loginCounter   metric.Int64Counter
	verifyPassword func(plain, encoded string) (bool, error)
	hashPassword   func(plain string) (string, error)

	decoyOnce sync.Once
	decoyHash string
}

func NewAuthUseCase(repository CredentialRepository, issuer TokenIssuer, meter metric.Meter) (*AuthUseCase, error) {
	loginCounter, err := meter.Int64Counter("auth.login.attempts",
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create login counter: %w", err)
	}

	return &AuthUseCase{
		repository:     repository,
		issuer:         issuer,
		loginCounter:   loginCounter,
		verifyPassword: password.Verify,
		hashPassword:   password.Hash,
	}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, req LoginRequest) (token string, err error) {
	logger := logging.FromContext(ctx).With(zap.String("username", req.Username))

	defer func() {
		outcome := "success"
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrMissingCredentials):
			outcome = "rejected"
		case err != nil:
			outcome = "error"
		}
		uc.loginCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}()

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", ErrMissingCredentials
	}

	creds, err := uc.repository.FindCredentials(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown users still pay for one hash check.
		_, _ = uc.verifyPassword(req.Password, uc.decoy())
		logger.Info("❌ [LOGIN] unknown user")
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	ok, err := uc.verifyPassword(req.Password, creds.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("failed to verify password for %s: %w", username, err)
	}
	if !ok {
		logger.Info("❌ [LOGIN] wrong password")
		return "", ErrInvalidCredentials
	}

	token, err = uc.issuer.Issue(authn.Identity{Username: creds.Username, Role: creds.Role})
	if err != nil {
		return "", err
	}

	logger.Info("✅ [LOGIN] token issued", zap.String("role", creds.Role))
	return token, nil
}

func (uc *AuthUseCase) decoy() string {
	uc.decoyOnce.Do(func() {
		hash, err := uc.hashPassword("decoy-password")
		if err == nil {
			uc.decoyHash = hash
		}
	})
	return uc.decoyHash
}
