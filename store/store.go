// Package store is the authoritative registry of simulator state: the
// in-memory session map and the request-log audit trail behind a database
// driver.
package store

import (
	"sync"

	"github.com/peswahq/ussd-simulator/internal/profile"
)

// Store owns all session objects and the request-log driver. Every mutation
// funnels through here; callers never touch a Session's fields directly.
type Store struct {
	profile *profile.Profile
	driver  Driver

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		profile:  profile,
		driver:   driver,
		sessions: make(map[string]*Session),
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}
