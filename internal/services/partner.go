package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
	"github.com/vendora-labs/partner-backend/internal/models"
	"github.com/vendora-labs/partner-backend/internal/storage"
	"github.com/vendora-labs/partner-backend/internal/utils"
)

const minPasswordLength = 6

// How many times we re-roll a colliding partner code before giving up
const maxCodeAttempts = 5

// PartnerService owns the partner account lifecycle: create, update,
// block/unblock, unlock, soft delete, and order statistics.
type PartnerService struct {
	store    storage.Store
	notifier *Notifier
}

// NewPartnerService creates a new partner service
func NewPartnerService(store storage.Store, notifier *Notifier) *PartnerService {
	return &PartnerService{
		store:    store,
		notifier: notifier,
	}
}

// Create validates the registration, generates a unique partner code, and
// persists the new account with a hashed password.
func (s *PartnerService) Create(reg *models.PartnerRegistration, createdBy string) (*models.Partner, error) {
	var fields []string
	if reg.Name == "" {
		fields = append(fields, "name is required")
	}
	if len(reg.Password) < minPasswordLength {
		fields = append(fields, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if reg.Password != reg.ConfirmPassword {
		fields = append(fields, "passwords do not match")
	}
	if reg.Email != "" && !utils.IsValidEmail(reg.Email) {
		fields = append(fields, "invalid email format")
	}
	if reg.Phone != "" && !utils.IsValidPhone(reg.Phone) {
		fields = append(fields, "invalid phone format")
	}
	if reg.Status != "" && reg.Status != models.StatusActive && reg.Status != models.StatusPending {
		fields = append(fields, "status must be active or pending")
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields...)
	}

	// Uniqueness is scoped to live rows: a soft-deleted partner's email
	// can be reused by a new account.
	if reg.Email != "" {
		if _, err := s.store.GetPartnerByEmail(reg.Email); err == nil {
			return nil, apperrors.NewDuplicate("email")
		}
	}

	code, err := s.generateUniqueCode(reg.Name)
	if err != nil {
		return nil, err
	}

	partner := &models.Partner{
		PartnerID:    code,
		Name:         reg.Name,
		Email:        reg.Email,
		Phone:        reg.Phone,
		BusinessInfo: reg.BusinessInfo,
		Status:       reg.Status,
		CreatedBy:    createdBy,
	}
	if err := partner.SetPassword(reg.Password); err != nil {
		return nil, err
	}

	if err := s.store.CreatePartner(partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// generateUniqueCode slugifies the name and re-rolls on collision
func (s *PartnerService) generateUniqueCode(name string) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := utils.GeneratePartnerID(name)
		_, err := s.store.GetPartnerByPartnerID(code)
		if errors.Is(err, apperrors.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("could not generate a unique partner code for %q", name)
}

// Get returns a partner by internal ID or partner code
func (s *PartnerService) Get(identifier string) (*models.Partner, error) {
	return s.store.GetPartnerByIdentifier(identifier)
}

// List returns all live partners, optionally filtered by status
func (s *PartnerService) List(status string) ([]*models.Partner, error) {
	if status == "" {
		return s.store.GetAllPartners()
	}
	return s.store.GetPartnersByStatus(status)
}

// Update applies mutable profile fields. The partner code is immutable.
func (s *PartnerService) Update(identifier string, upd *models.PartnerUpdate, updatedBy string) (*models.Partner, error) {
	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	var fields []string
	if upd.Name != nil {
		if *upd.Name == "" {
			fields = append(fields, "name cannot be empty")
		} else {
			partner.Name = *upd.Name
		}
	}
	if upd.Email != nil {
		if *upd.Email != "" && !utils.IsValidEmail(*upd.Email) {
			fields = append(fields, "invalid email format")
		} else {
			partner.Email = *upd.Email
		}
	}
	if upd.Phone != nil {
		if *upd.Phone != "" && !utils.IsValidPhone(*upd.Phone) {
			fields = append(fields, "invalid phone format")
		} else {
			partner.Phone = *upd.Phone
		}
	}
	if upd.BusinessInfo != nil {
		partner.BusinessInfo = *upd.BusinessInfo
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidation(fields...)
	}

	partner.UpdatedBy = updatedBy
	if err := s.store.UpdatePartner(partner); err != nil {
		return nil, err
	}
	return partner, nil
}

// ToggleStatus blocks or unblocks a partner. Lockout counters are left
// untouched: a blocked-then-unblocked partner keeps its prior lock state.
func (s *PartnerService) ToggleStatus(identifier, action, reason, updatedBy string) (*models.Partner, error) {
	if action != "block" && action != "unblock" {
		return nil, apperrors.NewValidation("action must be block or unblock")
	}

	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	if action == "block" {
		partner.Status = models.StatusBlocked
	} else {
		partner.Status = models.StatusActive
	}
	partner.UpdatedBy = updatedBy

	if err := s.store.UpdatePartner(partner); err != nil {
		return nil, err
	}

	log.Printf("Partner %s %sed by %s (reason: %s)", partner.PartnerID, action, updatedBy, reason)
	s.notifier.NotifyStatusChange(partner, action, reason)
	return partner, nil
}

// Unlock clears the lockout state so the partner can log in again before
// the window elapses on its own.
func (s *PartnerService) Unlock(identifier, updatedBy string) (*models.Partner, error) {
	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	partner.LoginAttempts = 0
	partner.LockedUntil = nil
	partner.UpdatedBy = updatedBy

	if err := s.store.UpdatePartner(partner); err != nil {
		return nil, err
	}
	log.Printf("Partner %s unlocked by %s", partner.PartnerID, updatedBy)
	return partner, nil
}

// ChangePassword verifies the current password before accepting a new one
func (s *PartnerService) ChangePassword(identifier string, req *models.PasswordChangeRequest) error {
	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		return err
	}

	if !partner.CheckPassword(req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	var fields []string
	if len(req.NewPassword) < minPasswordLength {
		fields = append(fields, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if req.NewPassword != req.ConfirmPassword {
		fields = append(fields, "passwords do not match")
	}
	if len(fields) > 0 {
		return apperrors.NewValidation(fields...)
	}

	if err := partner.SetPassword(req.NewPassword); err != nil {
		return err
	}
	return s.store.UpdatePartner(partner)
}

// Delete soft-deletes a partner; the row stays but disappears from every
// query, including the login lookup.
func (s *PartnerService) Delete(identifier, deletedBy string) error {
	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		return err
	}
	log.Printf("Partner %s soft-deleted by %s", partner.PartnerID, deletedBy)
	return s.store.DeletePartner(partner)
}

// RecordOrderEvent bumps one order-statistic counter; the derived rates are
// recomputed on save.
func (s *PartnerService) RecordOrderEvent(identifier, event string) (*models.Partner, error) {
	partner, err := s.store.GetPartnerByIdentifier(identifier)
	if err != nil {
		return nil, err
	}
	return s.store.IncrementOrderCounter(partner.PartnerID, event)
}
