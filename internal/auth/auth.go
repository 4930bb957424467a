// Package auth resolves the identity of the user running an export or import.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	ledgererr "github.com/mrz1836/ledgerbox/pkg/errors"
)

// ErrInvalidToken indicates a session token could not be verified.
var ErrInvalidToken = errors.New("invalid session token")

// Identity is the authenticated owner of a dataset.
type Identity struct {
	UserID uuid.UUID
	Phone  string
}

// IsZero reports whether no user is set.
func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

// IdentityProvider resolves the current user.
type IdentityProvider interface {
	// Identity returns the current user or an error wrapping
	// errors.ErrUnauthenticated when none is available.
	Identity(ctx context.Context) (Identity, error)
}

// Static always returns the same identity.
type Static Identity

// Identity implements IdentityProvider.
func (s Static) Identity(_ context.Context) (Identity, error) {
	id := Identity(s)
	if id.IsZero() {
		return Identity{}, ledgererr.ErrUnauthenticated
	}
	return id, nil
}

type contextKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext resolves the identity stored by WithIdentity.
type FromContext struct{}

// Identity implements IdentityProvider.
func (FromContext) Identity(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	if !ok || id.IsZero() {
		return Identity{}, ledgererr.ErrUnauthenticated
	}
	return id, nil
}

// Claims are the session token claims. The subject is the user id.
type Claims struct {
	Phone string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// TokenProvider resolves the identity from an HS256 session token.
type TokenProvider struct {
	token  string
	secret []byte
}

// NewTokenProvider creates a provider for token signed with secret.
func NewTokenProvider(token string, secret []byte) *TokenProvider {
	return &TokenProvider{token: token, secret: secret}
}

// Identity implements IdentityProvider.
func (p *TokenProvider) Identity(_ context.Context) (Identity, error) {
	if p.token == "" {
		return Identity{}, ledgererr.ErrUnauthenticated
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(p.token, claims, func(_ *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w: %w", ledgererr.ErrUnauthenticated, ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w: subject is not a user id", ledgererr.ErrUnauthenticated, ErrInvalidToken)
	}

	return Identity{UserID: userID, Phone: claims.Phone}, nil
}

// IssueToken signs a session token for id that expires after ttl.
func IssueToken(id Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Phone: id.Phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
