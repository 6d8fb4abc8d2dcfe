package database

import (
	"fmt"

	"gorm.io/gorm"

	"realestate/server/internal/models"
)

// MigrateSchema creates or updates every table of the marketplace
func MigrateSchema(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Municipality{},
		&models.Property{},
		&models.Amenity{},
		&models.Sale{},
		&models.Commission{},
		&models.PendingSaleRequest{},
		&models.Tour{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// Overlap lookups scan tours by property or agent ordered by start time
	if !db.Migrator().HasIndex(&models.Tour{}, "idx_tours_property_start") {
		if err := db.Exec("CREATE INDEX idx_tours_property_start ON tours(property_id, start_time)").Error; err != nil {
			return fmt.Errorf("failed to create tour index: %w", err)
		}
	}
	return nil
}
