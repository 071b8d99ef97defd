package jobs

import (
	"log"
	"time"

	"github.com/vendora-labs/partner-backend/internal/storage"
)

// LockoutMonitor periodically sweeps locked partner accounts: it logs how
// many are currently locked and clears lock windows that have already
// elapsed. Login never depends on the sweep — the window is also checked
// lazily on every attempt — this just keeps the table tidy.
type LockoutMonitor struct {
	store    storage.Store
	interval time.Duration
	stop     chan struct{}
}

// NewLockoutMonitor creates a monitor sweeping at the given interval
func NewLockoutMonitor(store storage.Store, interval time.Duration) *LockoutMonitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &LockoutMonitor{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the sweep loop
func (m *LockoutMonitor) Start() {
	log.Printf("Starting lockout monitor (every %v)", m.interval)
	go m.run()
}

// Stop halts the sweep loop
func (m *LockoutMonitor) Stop() {
	close(m.stop)
	log.Println("Stopping lockout monitor...")
}

func (m *LockoutMonitor) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *LockoutMonitor) sweep() {
	partners, err := m.store.GetLockedPartners()
	if err != nil {
		log.Printf("Lockout sweep failed: %v", err)
		return
	}

	now := time.Now()
	active, cleared := 0, 0
	for _, p := range partners {
		if p.IsLocked(now) {
			active++
			continue
		}
		p.LoginAttempts = 0
		p.LockedUntil = nil
		if err := m.store.SaveLoginState(p); err != nil {
			log.Printf("Failed to clear elapsed lock for %s: %v", p.PartnerID, err)
			continue
		}
		cleared++
	}

	if active > 0 || cleared > 0 {
		log.Printf("Lockout sweep: %d locked, %d elapsed locks cleared", active, cleared)
	}
}
