package authn

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret     []byte
	ttl        time.Duration
	serviceTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, ttl, serviceTTL time.Duration) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		ttl:        ttl,
		serviceTTL: serviceTTL,
		now:        time.Now,
	}
}

// Issue signs an HS256 token for identity with the issuer's regular TTL.
func (i *Issuer) Issue(identity Identity) (string, error) {
	return i.sign(identity, i.ttl)
}

// DownstreamToken keeps the caller's username but swaps the role for
// RoleService and uses the short service TTL.
func (i *Issuer) DownstreamToken(identity Identity) (string, error) {
	return i.sign(Identity{Username: identity.Username, Role: RoleService}, i.serviceTTL)
}

func (i *Issuer) sign(identity Identity, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return Identity{Username: claims.Subject, Role: claims.Role}, nil
}
