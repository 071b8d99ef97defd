package storage

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/vendora-labs/partner-backend/internal/apperrors"
	"github.com/vendora-labs/partner-backend/internal/models"
)

// MemoryStore holds all partners in memory, for tests and local development
// (USE_MEMORY_STORE=true). It mirrors the database store's semantics:
// soft-deleted rows stay in the map but are invisible to every query.
type MemoryStore struct {
	mu       sync.RWMutex
	partners map[string]*models.Partner // keyed by PartnerID

	idCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partners: make(map[string]*models.Partner),
	}
}

func (m *MemoryStore) CreatePartner(partner *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Hooks don't run outside gorm, so apply them here
	if err := partner.BeforeCreate(nil); err != nil {
		return err
	}

	if _, exists := m.partners[partner.PartnerID]; exists {
		return apperrors.NewDuplicate("partner_id")
	}
	if partner.Email != "" {
		for _, p := range m.partners {
			if !p.DeletedAt.Valid && p.Email == partner.Email {
				return apperrors.NewDuplicate("email")
			}
		}
	}

	m.idCounter++
	partner.ID = m.idCounter
	partner.CreatedAt = time.Now()
	partner.UpdatedAt = partner.CreatedAt
	partner.RecomputeRates()

	stored := *partner
	m.partners[partner.PartnerID] = &stored
	return nil
}

func (m *MemoryStore) GetPartnerByPartnerID(partnerID string) (*models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.partners[partnerID]
	if !exists || p.DeletedAt.Valid {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) GetPartnerByIdentifier(identifier string) (*models.Partner, error) {
	if p, err := m.GetPartnerByPartnerID(identifier); err == nil {
		return p, nil
	}

	// Fall back to the numeric internal ID
	id, err := strconv.ParseUint(identifier, 10, 32)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.partners {
		if p.ID == uint(id) && !p.DeletedAt.Valid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *MemoryStore) GetPartnerByEmail(email string) (*models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, p := range m.partners {
		if !p.DeletedAt.Valid && p.Email != "" && p.Email == email {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *MemoryStore) GetAllPartners() ([]*models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var partners []*models.Partner
	for _, p := range m.partners {
		if p.DeletedAt.Valid {
			continue
		}
		cp := *p
		partners = append(partners, &cp)
	}
	return partners, nil
}

func (m *MemoryStore) GetPartnersByStatus(status string) ([]*models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var partners []*models.Partner
	for _, p := range m.partners {
		if p.DeletedAt.Valid || p.Status != status {
			continue
		}
		cp := *p
		partners = append(partners, &cp)
	}
	return partners, nil
}

func (m *MemoryStore) GetLockedPartners() ([]*models.Partner, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var partners []*models.Partner
	for _, p := range m.partners {
		if p.DeletedAt.Valid || p.LockedUntil == nil {
			continue
		}
		cp := *p
		partners = append(partners, &cp)
	}
	return partners, nil
}

func (m *MemoryStore) UpdatePartner(partner *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.partners[partner.PartnerID]
	if !exists || existing.DeletedAt.Valid {
		return apperrors.ErrNotFound
	}
	if partner.Email != "" && partner.Email != existing.Email {
		for _, p := range m.partners {
			if !p.DeletedAt.Valid && p.PartnerID != partner.PartnerID && p.Email == partner.Email {
				return apperrors.NewDuplicate("email")
			}
		}
	}

	partner.UpdatedAt = time.Now()
	partner.RecomputeRates()
	stored := *partner
	m.partners[partner.PartnerID] = &stored
	return nil
}

func (m *MemoryStore) SaveLoginState(partner *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.partners[partner.PartnerID]
	if !exists || existing.DeletedAt.Valid {
		return apperrors.ErrNotFound
	}

	existing.LoginAttempts = partner.LoginAttempts
	existing.LockedUntil = partner.LockedUntil
	existing.LastLogin = partner.LastLogin
	existing.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) IncrementOrderCounter(partnerID string, event string) (*models.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.partners[partnerID]
	if !exists || existing.DeletedAt.Valid {
		return nil, apperrors.ErrNotFound
	}
	if err := existing.ApplyOrderEvent(event); err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}
	existing.UpdatedAt = time.Now()

	cp := *existing
	return &cp, nil
}

func (m *MemoryStore) DeletePartner(partner *models.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.partners[partner.PartnerID]
	if !exists || existing.DeletedAt.Valid {
		return apperrors.ErrNotFound
	}

	existing.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	return nil
}

func (m *MemoryStore) PartnerCount() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, p := range m.partners {
		if !p.DeletedAt.Valid {
			count++
		}
	}
	return count, nil
}
