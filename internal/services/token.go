package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vendora-labs/partner-backend/internal/models"
)

// Role claims carried in session tokens
const (
	RolePartner = "partner"
	RoleAdmin   = "admin"
)

const defaultTokenTTL = 24 * time.Hour

// SessionClaims is the claim set carried by a partner session token
type SessionClaims struct {
	PartnerID   uint   `json:"partner_id"`
	PartnerCode string `json:"partner_code"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies session tokens (HS256)
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService reads JWT_SECRET and optional JWT_EXPIRY_HOURS from the
// environment. Missing secret is an error in production; tests construct
// the service directly with NewTokenServiceWithSecret.
func NewTokenService() (*TokenService, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}

	ttl := defaultTokenTTL
	if hours := os.Getenv("JWT_EXPIRY_HOURS"); hours != "" {
		h, err := strconv.Atoi(hours)
		if err != nil || h <= 0 {
			return nil, fmt.Errorf("invalid JWT_EXPIRY_HOURS: %q", hours)
		}
		ttl = time.Duration(h) * time.Hour
	}

	return NewTokenServiceWithSecret(secret, ttl), nil
}

// NewTokenServiceWithSecret builds a token service with explicit settings
func NewTokenServiceWithSecret(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a session token for the partner and returns the token string
// plus its lifetime in seconds.
func (t *TokenService) Issue(partner *models.Partner) (string, int64, error) {
	now := time.Now()
	claims := SessionClaims{
		PartnerID:   partner.ID,
		PartnerCode: partner.PartnerID,
		Role:        RolePartner,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, int64(t.ttl.Seconds()), nil
}

// Verify parses and validates a session token
func (t *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
