package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realestate/server/config"
	"realestate/server/internal/models"
	"realestate/server/internal/pricing"
)

func CreateMunicipality(tx *gorm.DB, m *models.Municipality) error {
	return translate(tx.Create(m).Error, "municipality")
}

func GetMunicipality(tx *gorm.DB, id uint) (*models.Municipality, error) {
	var m models.Municipality
	if err := tx.First(&m, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("municipality %d", id))
	}
	return &m, nil
}

// SeedMunicipalities inserts the seeds whose name is not stored yet and
// returns how many were created
func SeedMunicipalities(tx *gorm.DB, seeds []config.MunicipalitySeed) (int, error) {
	created := 0
	for _, s := range seeds {
		var count int64
		if err := tx.Model(&models.Municipality{}).Where("LOWER(name) = ?", strings.ToLower(s.Name)).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to look up municipality %q: %w", s.Name, err)
		}
		if count > 0 {
			continue
		}
		m := models.Municipality{Name: s.Name, PricePerSqm: s.PricePerSqm}
		if err := CreateMunicipality(tx, &m); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// CreateProperty persists a new property with its amenities. Amenity prices
// are clamped and, when no price was supplied, the price is derived once from
// the municipality rate and the clamped amenities.
func CreateProperty(tx *gorm.DB, p *models.Property) error {
	municipality, err := GetMunicipality(tx, p.MunicipalityID)
	if err != nil {
		return err
	}
	p.Municipality = municipality

	for i := range p.Amenities {
		p.Amenities[i] = pricing.Clamp(p.Amenities[i])
	}

	if !p.Price.Valid || p.Price.Decimal.IsZero() {
		p.Price.Decimal = pricing.TotalPrice(p)
		p.Price.Valid = true
	}

	if err := tx.Omit("Municipality", "Owner", "Agent").Create(p).Error; err != nil {
		return translate(err, "property")
	}
	return nil
}

// GetProperty loads a property with its municipality and amenities. With
// forUpdate the row stays locked until the surrounding transaction ends on
// stores that support row locks.
func GetProperty(tx *gorm.DB, id uint, forUpdate bool) (*models.Property, error) {
	q := tx.Preload("Municipality").Preload("Amenities")
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p models.Property
	if err := q.First(&p, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("property %d", id))
	}
	return &p, nil
}

// SetPropertyStatus is the only write path for Property.Status
func SetPropertyStatus(tx *gorm.DB, id uint, status models.PropertyStatus) error {
	result := tx.Model(&models.Property{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return translate(result.Error, fmt.Sprintf("property %d", id))
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, fmt.Sprintf("property %d", id))
	}
	return nil
}

// SaveAmenity writes an amenity, replacing an over-ceiling price with the ceiling
func SaveAmenity(tx *gorm.DB, a *models.Amenity) error {
	*a = pricing.Clamp(*a)
	return translate(tx.Save(a).Error, "amenity")
}
