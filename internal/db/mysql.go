package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewMySQL returns a connected GORM DB instance. TranslateError is enabled so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// repositories rely on for the authoritative slot-conflict signal. Transient
// connection failures are retried a bounded number of times before giving up.
func NewMySQL(dsn string) (*gorm.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
		if err == nil {
			return db, nil
		}
		lastErr = err
		if attempt < connectAttempts {
			time.Sleep(connectBackoff)
		}
	}
	return nil, fmt.Errorf("connect mysql after %d attempts: %w", connectAttempts, lastErr)
}
