package services

import (
	"log"
	"time"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
	"github.com/vendora-labs/partner-backend/internal/models"
	"github.com/vendora-labs/partner-backend/internal/storage"
)

// Lockout policy: MaxLoginAttempts consecutive failures close the account
// for LockDuration. The window is checked lazily on the next attempt.
const (
	MaxLoginAttempts = 5
	LockDuration     = 2 * time.Hour
)

// AuthService gates partner login behind credential verification,
// progressive lockout, and account-status checks.
type AuthService struct {
	store    storage.Store
	tokens   *TokenService
	notifier *Notifier
}

// NewAuthService creates a new auth service
func NewAuthService(store storage.Store, tokens *TokenService, notifier *Notifier) *AuthService {
	return &AuthService{
		store:    store,
		tokens:   tokens,
		notifier: notifier,
	}
}

// Login authenticates a partner by internal ID or partner code.
//
// Order of checks: existence (misses reported as invalid credentials so the
// response never confirms whether an account exists), open lock window,
// blocked status, then the bcrypt comparison. Counter state is persisted on
// every attempt, success or failure.
func (s *AuthService) Login(identifier, password string) (*models.LoginResult, error) {
	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		// Soft-deleted partners are invisible to the store, so they land
		// here too.
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()

	if partner.IsLocked(now) {
		return nil, apperrors.ErrAccountLocked
	}

	if partner.Status == models.StatusBlocked {
		return nil, apperrors.ErrAccountBlocked
	}

	if !partner.CheckPassword(password) {
		return nil, s.recordFailure(partner, now)
	}

	partner.LoginAttempts = 0
	partner.LockedUntil = nil
	partner.LastLogin = &now
	if err := s.store.SaveLoginState(partner); err != nil {
		log.Printf("Failed to persist login state for %s: %v", partner.PartnerID, err)
	}

	token, expiresIn, err := s.tokens.Issue(partner)
	if err != nil {
		return nil, err
	}

	return &models.LoginResult{
		Partner:      partner,
		SessionToken: token,
		ExpiresIn:    expiresIn,
	}, nil
}

// recordFailure applies the failed-attempt transition and persists it.
// A failure after an elapsed lock window restarts the count at 1 rather
// than incrementing the stale value.
func (s *AuthService) recordFailure(partner *models.Partner, now time.Time) error {
	if partner.HasExpiredLock(now) {
		partner.LoginAttempts = 1
		partner.LockedUntil = nil
	} else {
		partner.LoginAttempts++
	}

	if partner.LoginAttempts >= MaxLoginAttempts {
		until := now.Add(LockDuration)
		partner.LockedUntil = &until
		s.notifier.NotifyAccountLocked(partner, until)
	}

	if err := s.store.SaveLoginState(partner); err != nil {
		log.Printf("Failed to persist failed-login state for %s: %v", partner.PartnerID, err)
	}

	return apperrors.ErrInvalidCredentials
}
