// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/peswahq/ussd-simulator/internal/profile"
	"github.com/peswahq/ussd-simulator/store"
	"github.com/peswahq/ussd-simulator/store/db/sqlite"
)

// NewDBDriver creates a new db driver based on the profile. Only SQLite is
// supported: the request log is ephemeral by design and runs on an in-memory
// database unless a file DSN is supplied for debugging.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	driver, err := sqlite.NewDB(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
