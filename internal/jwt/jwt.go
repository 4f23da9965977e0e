// Package jwt issues and validates the HMAC-signed access tokens that carry a
// caller's registry address.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gemreg/pkg/domain"
	"gemreg/pkg/domerr"
)

// Claims are the claims carried by an access token. The subject is the
// caller's registry address.
type Claims struct {
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewService(signingKey, issuer, audience string) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// Issue signs an access token for addr valid for expiresIn.
func (s *Service) Issue(addr domain.Address, expiresIn time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   addr.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a token and returns the caller address it
// carries.
func (s *Service) Validate(tokenString string) (domain.Address, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(s.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domerr.New(domerr.CodeUnauthorized, "token has expired")
		}
		return "", domerr.New(domerr.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return "", domerr.New(domerr.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return "", domerr.New(domerr.CodeUnauthorized, "invalid token claims")
	}
	addr, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		return "", domerr.New(domerr.CodeUnauthorized, "token subject is not an address")
	}
	return addr, nil
}
