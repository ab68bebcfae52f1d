// Package identity validates access tokens issued by the hosted auth
// service. Tokens are HS256 JWTs whose subject is the user id.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/storefront/pkg/middleware"
)

// ErrMissingSubject is returned for tokens without a user id.
var ErrMissingSubject = errors.New("token has no subject")

// DevSecret signs tokens in development when no secret is configured.
const DevSecret = "storefront-dev-secret"

type tokenClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Provider validates and, for tooling and tests, issues tokens.
type Provider struct {
	secret []byte
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// NewProvider creates a Provider. An empty issuer accepts any issuer.
func NewProvider(secret, issuer string, expiry time.Duration) *Provider {
	return &Provider{secret: []byte(secret), issuer: issuer, expiry: expiry, now: time.Now}
}

// Issue signs a token for userID.
func (p *Provider) Issue(userID, email, role string) (string, error) {
	now := p.now().UTC()
	claims := &tokenClaims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// Validate parses token and returns its identity. It has the shape of
// middleware.TokenValidator.
func (p *Provider) Validate(token string) (*middleware.Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid access token claims")
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return &middleware.Claims{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
