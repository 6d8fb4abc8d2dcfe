// Package pricing derives a property's reference price from its municipality
// land rate, its size and its capped amenity costs.
package pricing

import (
	"github.com/shopspring/decimal"

	"realestate/server/internal/models"
)

// BasePrice is size times the municipality rate, or zero when either is missing.
// The property's Municipality must be loaded.
func BasePrice(p *models.Property) decimal.Decimal {
	if p == nil || p.Municipality == nil || p.Size <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(p.Size)).Mul(p.Municipality.PricePerSqm)
}

// AmenityTotal sums the effective (ceiling-capped) amenity prices
func AmenityTotal(p *models.Property) decimal.Decimal {
	total := decimal.Zero
	if p == nil {
		return total
	}
	for _, a := range p.Amenities {
		total = total.Add(EffectivePrice(a))
	}
	return total
}

// TotalPrice is the reference price used as the sale-approval baseline
func TotalPrice(p *models.Property) decimal.Decimal {
	return BasePrice(p).Add(AmenityTotal(p))
}
