package pricing

import (
	"github.com/shopspring/decimal"

	"realestate/server/internal/apperr"
	"realestate/server/internal/models"
)

var ceilings = map[models.AmenityCategory]decimal.Decimal{
	models.AmenityBasic:  decimal.NewFromInt(100000),
	models.AmenityLuxury: decimal.NewFromInt(250000),
}

// Ceiling returns the maximum persistable price for a category
func Ceiling(category models.AmenityCategory) (decimal.Decimal, bool) {
	c, ok := ceilings[category]
	return c, ok
}

// EffectivePrice is min(raw price, category ceiling)
func EffectivePrice(a models.Amenity) decimal.Decimal {
	if c, ok := Ceiling(a.Category); ok && a.Price.GreaterThan(c) {
		return c
	}
	return a.Price
}

// Clamp is applied on every amenity write. Over-ceiling prices are replaced
// by the ceiling without an error; ValidateAmenity rejects the same input on
// the API path instead. Keep the two in sync only with product sign-off.
func Clamp(a models.Amenity) models.Amenity {
	a.Price = EffectivePrice(a)
	return a
}

// ValidateAmenity checks submitted amenity input and fails instead of clamping
func ValidateAmenity(category models.AmenityCategory, price decimal.Decimal) error {
	c, ok := Ceiling(category)
	if !ok {
		return apperr.Validation("unknown amenity type %q", category)
	}
	if price.IsNegative() {
		return apperr.Validation("amenity price cannot be negative")
	}
	if price.GreaterThan(c) {
		return apperr.Validation("%s amenity price cannot exceed %s", category, c.StringFixed(0))
	}
	return nil
}
