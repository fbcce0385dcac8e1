package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/imedia765/a-051853/internal/domain"
)

// audience the hosted auth backend stamps on user tokens
const authenticatedAudience = "authenticated"

type accessClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// HS256Verifier checks backend access tokens signed with the shared project secret.
type HS256Verifier struct {
	secret []byte
}

func NewHS256Verifier(secret string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret)}
}

// VerifyAccessToken returns the token subject (the auth user ID).
func (v *HS256Verifier) VerifyAccessToken(token string) (string, error) {
	claims, err := parseHS256(v.secret, token)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", domain.ErrTokenInvalid()
	}
	return claims.Subject, nil
}

// HS256Signer issues tokens shaped like the backend's, for the in-memory credential store.
type HS256Signer struct {
	secret []byte
	issuer string
}

func NewHS256Signer(secret, issuer string) *HS256Signer {
	return &HS256Signer{secret: []byte(secret), issuer: issuer}
}

func (s *HS256Signer) SignAccessToken(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email: email,
		Role:  authenticatedAudience,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{authenticatedAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Verifier returns the matching verifier for tokens this signer issues.
func (s *HS256Signer) Verifier() *HS256Verifier {
	return &HS256Verifier{secret: s.secret}
}

func parseHS256(secret []byte, token string) (*accessClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, domain.ErrTokenInvalid()
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired()
		}
		return nil, domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, domain.ErrTokenInvalid()
	}
	return claims, nil
}
