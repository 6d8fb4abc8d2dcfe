package pricing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"realestate/server/internal/apperr"
	"realestate/server/internal/models"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		amenity  models.Amenity
		expected string
	}{
		{"Basic over ceiling", amenity(models.AmenityBasic, "150000"), "100000"},
		{"Basic at ceiling", amenity(models.AmenityBasic, "100000"), "100000"},
		{"Basic under ceiling", amenity(models.AmenityBasic, "99999.99"), "99999.99"},
		{"Luxury over ceiling", amenity(models.AmenityLuxury, "1000000000"), "250000"},
		{"Luxury under ceiling", amenity(models.AmenityLuxury, "250000"), "250000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clamped := Clamp(tt.amenity)
			assert.True(t, dec(tt.expected).Equal(clamped.Price), "got %s", clamped.Price)

			ceiling, _ := Ceiling(tt.amenity.Category)
			assert.True(t, clamped.Price.LessThanOrEqual(ceiling))
		})
	}
}

func TestValidateAmenity(t *testing.T) {
	tests := []struct {
		name        string
		category    models.AmenityCategory
		price       string
		expectError bool
	}{
		{"Basic within ceiling", models.AmenityBasic, "100000", false},
		{"Basic over ceiling", models.AmenityBasic, "100000.01", true},
		{"Luxury within ceiling", models.AmenityLuxury, "250000", false},
		{"Luxury over ceiling", models.AmenityLuxury, "250001", true},
		{"Negative price", models.AmenityBasic, "-1", true},
		{"Unknown category", models.AmenityCategory("Premium"), "1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmenity(tt.category, dec(tt.price))
			if tt.expectError {
				assert.True(t, errors.Is(err, apperr.ErrValidation), "expected validation error, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClampAndValidateDiverge(t *testing.T) {
	a := amenity(models.AmenityBasic, "150000")

	assert.Error(t, ValidateAmenity(a.Category, a.Price))
	assert.True(t, dec("100000").Equal(Clamp(a).Price))
}
