package database

import (
	"fmt"

	"gorm.io/gorm"

	"realestate/server/internal/models"
)

func CreateTour(tx *gorm.DB, t *models.Tour) error {
	return translate(tx.Create(t).Error, "tour")
}

func SaveTour(tx *gorm.DB, t *models.Tour) error {
	return translate(tx.Save(t).Error, fmt.Sprintf("tour %d", t.ID))
}

func GetTour(tx *gorm.DB, id uint) (*models.Tour, error) {
	var t models.Tour
	if err := tx.First(&t, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("tour %d", id))
	}
	return &t, nil
}

// ToursForProperty lists the property's tours except excludeID (0 excludes nothing)
func ToursForProperty(tx *gorm.DB, propertyID, excludeID uint) ([]models.Tour, error) {
	return findTours(tx.Where("property_id = ?", propertyID), excludeID)
}

// ToursForAgent lists the agent's tours across properties except excludeID
func ToursForAgent(tx *gorm.DB, agentID, excludeID uint) ([]models.Tour, error) {
	return findTours(tx.Where("agent_id = ?", agentID), excludeID)
}

func findTours(q *gorm.DB, excludeID uint) ([]models.Tour, error) {
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var tours []models.Tour
	if err := q.Order("start_time").Find(&tours).Error; err != nil {
		return nil, fmt.Errorf("failed to list tours: %w", err)
	}
	return tours, nil
}
