package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vendora-labs/partner-backend/internal/utils"
)

// Partner account statuses
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
	StatusPending = "pending"
)

// Order statistic events recorded against a partner
const (
	OrderEventAssigned  = "assigned"
	OrderEventAccepted  = "accepted"
	OrderEventRejected  = "rejected"
	OrderEventCompleted = "completed"
)

// Partner represents a delivery/fulfillment partner account
type Partner struct {
	// gorm.Model gives us ID (uint), CreatedAt, UpdatedAt, DeletedAt.
	// DeletedAt doubles as the soft-delete marker: deleted partners stay
	// in the table but are excluded from all queries.
	gorm.Model

	PartnerID    string `json:"partner_id" gorm:"uniqueIndex"` // generated code, immutable after create
	Name         string `json:"name"`
	// Unique among live rows only, so a deleted partner's email can be
	// reused and partners without email don't collide on the empty string.
	Email        string `json:"email,omitempty" gorm:"uniqueIndex:idx_partners_live_email,where:deleted_at IS NULL AND email <> ''"`
	Phone        string `json:"phone,omitempty"`
	BusinessInfo string `json:"business_info,omitempty"` // free-form JSON blob

	PasswordHash string `json:"-" gorm:"not null"`

	Status string `json:"status" gorm:"default:pending"` // "active", "blocked", "pending"

	// Lockout state, written on every login attempt
	LoginAttempts int        `json:"login_attempts" gorm:"default:0"`
	LockedUntil   *time.Time `json:"locked_until"`
	LastLogin     *time.Time `json:"last_login"`

	// Order statistics; rates are recomputed on every save
	TotalOrdersAssigned  int     `json:"total_orders_assigned" gorm:"default:0"`
	TotalOrdersAccepted  int     `json:"total_orders_accepted" gorm:"default:0"`
	TotalOrdersRejected  int     `json:"total_orders_rejected" gorm:"default:0"`
	TotalOrdersCompleted int     `json:"total_orders_completed" gorm:"default:0"`
	AcceptanceRate       float64 `json:"acceptance_rate"`
	CompletionRate       float64 `json:"completion_rate"`

	CreatedBy string `json:"created_by"`
	UpdatedBy string `json:"updated_by"`
}

// BeforeCreate hook to auto-generate PartnerID and normalize data
func (p *Partner) BeforeCreate(tx *gorm.DB) error {
	if p.PartnerID == "" {
		p.PartnerID = utils.GeneratePartnerID(p.Name)
	}
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}

// BeforeSave hook keeps the derived rates consistent with the counters
func (p *Partner) BeforeSave(tx *gorm.DB) error {
	p.RecomputeRates()
	return nil
}

// SetPassword hashes plain and stores the hash. Every password write goes
// through here; plaintext is never persisted.
func (p *Partner) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	p.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares plain against the stored hash
func (p *Partner) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plain)) == nil
}

// IsLocked reports whether the lockout window is still open
func (p *Partner) IsLocked(now time.Time) bool {
	return p.LockedUntil != nil && now.Before(*p.LockedUntil)
}

// HasExpiredLock reports a lock window that has elapsed but not been cleared.
// A fresh failure after an expired lock restarts the counter at 1 instead of
// incrementing the stale count.
func (p *Partner) HasExpiredLock(now time.Time) bool {
	return p.LockedUntil != nil && !now.Before(*p.LockedUntil)
}

// RecomputeRates refreshes the derived percentages from the raw counters.
// acceptance = accepted/assigned, completion = completed/accepted; both 0
// when the denominator is 0.
func (p *Partner) RecomputeRates() {
	if p.TotalOrdersAssigned > 0 {
		p.AcceptanceRate = float64(p.TotalOrdersAccepted) / float64(p.TotalOrdersAssigned) * 100
	} else {
		p.AcceptanceRate = 0
	}
	if p.TotalOrdersAccepted > 0 {
		p.CompletionRate = float64(p.TotalOrdersCompleted) / float64(p.TotalOrdersAccepted) * 100
	} else {
		p.CompletionRate = 0
	}
}

// ApplyOrderEvent bumps the counter for one order event
func (p *Partner) ApplyOrderEvent(event string) error {
	switch event {
	case OrderEventAssigned:
		p.TotalOrdersAssigned++
	case OrderEventAccepted:
		p.TotalOrdersAccepted++
	case OrderEventRejected:
		p.TotalOrdersRejected++
	case OrderEventCompleted:
		p.TotalOrdersCompleted++
	default:
		return fmt.Errorf("unknown order event: %s", event)
	}
	p.RecomputeRates()
	return nil
}

// PartnerRegistration is the payload for creating a new partner
type PartnerRegistration struct {
	Name            string `json:"name" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	BusinessInfo    string `json:"business_info"`
	Status          string `json:"status"`
}

// PartnerUpdate is the payload for updating mutable partner fields.
// Pointers distinguish "not sent" from "set to empty".
type PartnerUpdate struct {
	Name         *string `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	BusinessInfo *string `json:"business_info"`
}

// LoginRequest is the payload for partner login
type LoginRequest struct {
	PartnerIdentifier string `json:"partner_identifier" validate:"required"`
	Password          string `json:"password" validate:"required"`
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	Partner      *Partner `json:"partner"`
	SessionToken string   `json:"session_token"`
	ExpiresIn    int64    `json:"expires_in"` // seconds
}

// StatusChangeRequest is the payload for block/unblock
type StatusChangeRequest struct {
	Action string `json:"action"` // "block" or "unblock"
	Reason string `json:"reason"`
}

// PasswordChangeRequest is the payload for changing a partner's password
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
