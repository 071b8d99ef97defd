package storage

import (
	"sync"

	"github.com/vendora-labs/partner-backend/internal/models"
)

var (
	storeInstance Store
	storeMu       sync.RWMutex
)

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeMu.Lock()
	defer storeMu.Unlock()
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return storeInstance
}

// Store defines the interface for partner storage operations. Soft-deleted
// partners are invisible to every method here.
type Store interface {
	CreatePartner(partner *models.Partner) error
	GetPartnerByPartnerID(partnerID string) (*models.Partner, error)
	GetPartnerByIdentifier(identifier string) (*models.Partner, error)
	GetPartnerByEmail(email string) (*models.Partner, error)
	GetAllPartners() ([]*models.Partner, error)
	GetPartnersByStatus(status string) ([]*models.Partner, error)
	GetLockedPartners() ([]*models.Partner, error)
	UpdatePartner(partner *models.Partner) error

	// SaveLoginState persists only the lockout columns in a single write.
	// Called on every login attempt, success or failure.
	SaveLoginState(partner *models.Partner) error

	// IncrementOrderCounter atomically bumps one order-statistic counter
	// and returns the partner with rates recomputed.
	IncrementOrderCounter(partnerID string, event string) (*models.Partner, error)

	DeletePartner(partner *models.Partner) error
	PartnerCount() (int64, error)
}
