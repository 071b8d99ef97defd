package storage

import (
	"errors"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
	"github.com/vendora-labs/partner-backend/internal/models"
)

// DatabaseStore persists partners via GORM. Soft deletes come for free:
// gorm.DeletedAt excludes deleted rows from every query below.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store backed by the given GORM connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) CreatePartner(partner *models.Partner) error {
	if err := s.db.Create(partner).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *DatabaseStore) GetPartnerByPartnerID(partnerID string) (*models.Partner, error) {
	var partner models.Partner
	if err := s.db.Where("partner_id = ?", partnerID).First(&partner).Error; err != nil {
		return nil, translateError(err)
	}
	return &partner, nil
}

func (s *DatabaseStore) GetPartnerByIdentifier(identifier string) (*models.Partner, error) {
	partner, err := s.GetPartnerByPartnerID(identifier)
	if err == nil {
		return partner, nil
	}

	// Fall back to the numeric internal ID
	id, parseErr := strconv.ParseUint(identifier, 10, 32)
	if parseErr != nil {
		return nil, apperrors.ErrNotFound
	}
	var p models.Partner
	if err := s.db.First(&p, uint(id)).Error; err != nil {
		return nil, translateError(err)
	}
	return &p, nil
}

func (s *DatabaseStore) GetPartnerByEmail(email string) (*models.Partner, error) {
	var partner models.Partner
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.Where("email = ?", email).First(&partner).Error; err != nil {
		return nil, translateError(err)
	}
	return &partner, nil
}

func (s *DatabaseStore) GetAllPartners() ([]*models.Partner, error) {
	var partners []*models.Partner
	if err := s.db.Order("created_at DESC").Find(&partners).Error; err != nil {
		return nil, translateError(err)
	}
	return partners, nil
}

func (s *DatabaseStore) GetPartnersByStatus(status string) ([]*models.Partner, error) {
	var partners []*models.Partner
	if err := s.db.Where("status = ?", status).Order("created_at DESC").Find(&partners).Error; err != nil {
		return nil, translateError(err)
	}
	return partners, nil
}

func (s *DatabaseStore) GetLockedPartners() ([]*models.Partner, error) {
	var partners []*models.Partner
	if err := s.db.Where("locked_until IS NOT NULL").Find(&partners).Error; err != nil {
		return nil, translateError(err)
	}
	return partners, nil
}

func (s *DatabaseStore) UpdatePartner(partner *models.Partner) error {
	if err := s.db.Save(partner).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// SaveLoginState writes only the lockout columns in a single UPDATE, so a
// login attempt never clobbers concurrent profile edits.
func (s *DatabaseStore) SaveLoginState(partner *models.Partner) error {
	err := s.db.Model(partner).
		Select("login_attempts", "locked_until", "last_login").
		Updates(map[string]interface{}{
			"login_attempts": partner.LoginAttempts,
			"locked_until":   partner.LockedUntil,
			"last_login":     partner.LastLogin,
		}).Error
	if err != nil {
		return translateError(err)
	}
	return nil
}

var orderEventColumns = map[string]string{
	models.OrderEventAssigned:  "total_orders_assigned",
	models.OrderEventAccepted:  "total_orders_accepted",
	models.OrderEventRejected:  "total_orders_rejected",
	models.OrderEventCompleted: "total_orders_completed",
}

// IncrementOrderCounter bumps one counter with an atomic SQL increment,
// then reloads the row and persists the recomputed rates.
func (s *DatabaseStore) IncrementOrderCounter(partnerID string, event string) (*models.Partner, error) {
	column, ok := orderEventColumns[event]
	if !ok {
		return nil, apperrors.NewValidation("unknown order event: " + event)
	}

	result := s.db.Model(&models.Partner{}).
		Where("partner_id = ?", partnerID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return nil, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}

	partner, err := s.GetPartnerByPartnerID(partnerID)
	if err != nil {
		return nil, err
	}
	partner.RecomputeRates()
	err = s.db.Model(partner).
		Select("acceptance_rate", "completion_rate").
		Updates(map[string]interface{}{
			"acceptance_rate": partner.AcceptanceRate,
			"completion_rate": partner.CompletionRate,
		}).Error
	if err != nil {
		return nil, translateError(err)
	}
	return partner, nil
}

func (s *DatabaseStore) DeletePartner(partner *models.Partner) error {
	if err := s.db.Delete(partner).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (s *DatabaseStore) PartnerCount() (int64, error) {
	var count int64
	if err := s.db.Model(&models.Partner{}).Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// translateError maps GORM/Postgres errors onto domain errors
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		field := "record"
		switch {
		case strings.Contains(err.Error(), "email"):
			field = "email"
		case strings.Contains(err.Error(), "partner_id"):
			field = "partner_id"
		}
		return apperrors.NewDuplicate(field)
	}
	return err
}
