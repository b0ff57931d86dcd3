package test

import (
	"context"
	"testing"

	"github.com/peswahq/ussd-simulator/internal/profile"
	"github.com/peswahq/ussd-simulator/store"
	"github.com/peswahq/ussd-simulator/store/db"
)

// NewTestingStore creates a store backed by an in-memory sqlite request log.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{Mode: "dev", DSN: ":memory:"}
	if err := p.Validate(); err != nil {
		t.Fatalf("failed to validate profile: %v", err)
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	if err := driver.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	s := store.New(driver, p)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
