// Package migrations creates the database schema for mathtools.
package migrations

import (
	"fmt"

	"github.com/mcpjungle/mathtools/internal/model"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Invocation{}); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}
