package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PropertyStatus string

const (
	PropertyActive      PropertyStatus = "ACTIVE"
	PropertySold        PropertyStatus = "SOLD"
	PropertyUnderReview PropertyStatus = "UNDER_REVIEW"
)

type ListingType string

const (
	ListingSale        ListingType = "SALE"
	ListingRent        ListingType = "RENT"
	ListingLease       ListingType = "LEASE"
	ListingForeclosure ListingType = "FORECLOSURE"
)

// Valid reports whether t is one of the known listing types
func (t ListingType) Valid() bool {
	switch t {
	case ListingSale, ListingRent, ListingLease, ListingForeclosure:
		return true
	}
	return false
}

type AmenityCategory string

const (
	AmenityBasic  AmenityCategory = "Basic"
	AmenityLuxury AmenityCategory = "Luxury"
)

// Municipality is immutable reference data carrying the land rate
type Municipality struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	PricePerSqm decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price_per_sqm"`
}

type Property struct {
	ID               uint                 `gorm:"primaryKey" json:"id"`
	Name             string               `gorm:"size:255;not null" json:"name"`
	Description      string               `gorm:"type:text" json:"description"`
	Address          string               `gorm:"size:1000" json:"address"`
	MunicipalityID   uint                 `gorm:"not null;index" json:"municipality_id"`
	Municipality     *Municipality        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"municipality,omitempty"`
	OwnerID          *uint                `gorm:"index" json:"owner_id"`
	Owner            *User                `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	AgentID          *uint                `gorm:"index" json:"agent_id"`
	Agent            *User                `gorm:"foreignKey:AgentID;constraint:OnDelete:SET NULL" json:"-"`
	Size             int                  `gorm:"not null;default:0" json:"size"`
	NumBedrooms      int                  `gorm:"not null;default:0" json:"num_bedrooms"`
	NumBathrooms     int                  `gorm:"not null;default:0" json:"num_bathrooms"`
	Price            decimal.NullDecimal  `gorm:"type:decimal(15,2)" json:"price"`
	Type             ListingType          `gorm:"size:12;not null;default:'SALE'" json:"type"`
	AvailableForTour bool                 `gorm:"not null;default:false" json:"is_available_for_tour"`
	Status           PropertyStatus       `gorm:"size:15;not null;default:'ACTIVE';index" json:"status"`
	Amenities        []Amenity            `gorm:"constraint:OnDelete:CASCADE" json:"amenities,omitempty"`
	Sale             *Sale                `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PendingSales     []PendingSaleRequest `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Tours            []Tour               `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

// Stakeholders returns the owner and assigned agent of the property
func (p *Property) Stakeholders() (owner, agent *uint) {
	return p.OwnerID, p.AgentID
}

type Amenity struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PropertyID uint            `gorm:"not null;index" json:"property_id"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	Category   AmenityCategory `gorm:"size:6;not null;default:'Basic'" json:"amenity_type"`
	Price      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"price"`
	AddedByID  *uint           `json:"added_by"`
	CreatedAt  time.Time       `json:"created_at"`
}
