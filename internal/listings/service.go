// Package listings manages the municipalities, properties and amenities the
// sale and tour workflows operate on.
package listings

import (
	"context"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
	"realestate/server/internal/pricing"
)

type MunicipalityInput struct {
	Name        string
	PricePerSqm decimal.Decimal
}

type AmenityInput struct {
	Name     string
	Category models.AmenityCategory
	Price    decimal.Decimal
}

type PropertyInput struct {
	Name             string
	Description      string
	Address          string
	MunicipalityID   uint
	AgentID          *uint
	Size             int
	NumBedrooms      int
	NumBathrooms     int
	Price            *decimal.Decimal
	Type             models.ListingType
	AvailableForTour bool
	Amenities        []AmenityInput
}

type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Service{db: db, logger: logger}
}

func (s *Service) CreateMunicipality(ctx context.Context, actor auth.Actor, in MunicipalityInput) (*models.Municipality, error) {
	if err := auth.RequireRole(actor, "create municipalities", models.RoleAdmin); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("municipality name is required")
	}
	if in.PricePerSqm.IsNegative() {
		return nil, apperr.Validation("price per sqm cannot be negative")
	}

	m := &models.Municipality{Name: name, PricePerSqm: in.PricePerSqm}
	if err := database.CreateMunicipality(s.db.WithContext(ctx), m); err != nil {
		return nil, err
	}
	s.logger.WithField("municipality_id", m.ID).Infof("Created municipality %s", m.Name)
	return m, nil
}

// CreateProperty lists a new property for the acting owner. Submitted
// amenities are rejected, not clamped, when over their ceiling.
func (s *Service) CreateProperty(ctx context.Context, actor auth.Actor, in PropertyInput) (*models.Property, error) {
	if err := auth.RequireRole(actor, "list properties", models.RoleOwner); err != nil {
		return nil, err
	}
	if err := validateProperty(&in); err != nil {
		return nil, err
	}

	ownerID := actor.UserID
	property := &models.Property{
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Address:          in.Address,
		MunicipalityID:   in.MunicipalityID,
		OwnerID:          &ownerID,
		AgentID:          in.AgentID,
		Size:             in.Size,
		NumBedrooms:      in.NumBedrooms,
		NumBathrooms:     in.NumBathrooms,
		Type:             in.Type,
		AvailableForTour: in.AvailableForTour,
		Status:           models.PropertyActive,
	}
	if in.Price != nil {
		property.Price = decimal.NewNullDecimal(*in.Price)
	}
	for _, a := range in.Amenities {
		property.Amenities = append(property.Amenities, models.Amenity{
			Name:      strings.TrimSpace(a.Name),
			Category:  a.Category,
			Price:     a.Price,
			AddedByID: &ownerID,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.AgentID != nil {
			agent, err := database.GetUser(tx, *in.AgentID, false)
			if err != nil {
				return err
			}
			if agent.Role != models.RoleAgent {
				return apperr.Validation("user %d is not an agent", agent.ID)
			}
		}
		return database.CreateProperty(tx, property)
	})
	if err != nil {
		s.logger.WithField("user_id", actor.UserID).WithError(err).Warn("Property creation failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": property.ID,
		"price":       property.Price.Decimal.StringFixed(2),
	}).Info("Property listed")
	return property, nil
}

func (s *Service) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	return database.GetProperty(s.db.WithContext(ctx), id, false)
}

// AddAmenity attaches submitted amenity input to a property. Input above the
// category ceiling is rejected and nothing is stored.
func (s *Service) AddAmenity(ctx context.Context, actor auth.Actor, propertyID uint, in AmenityInput) (*models.Amenity, error) {
	if err := validateAmenity(in); err != nil {
		return nil, err
	}

	var amenity *models.Amenity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := database.GetProperty(tx, propertyID, true)
		if err != nil {
			return err
		}
		if err := auth.RequireStakeholder(actor, "add amenities", false, property); err != nil {
			return err
		}

		addedBy := actor.UserID
		amenity = &models.Amenity{
			PropertyID: property.ID,
			Name:       strings.TrimSpace(in.Name),
			Category:   in.Category,
			Price:      in.Price,
			AddedByID:  &addedBy,
		}
		return database.SaveAmenity(tx, amenity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": propertyID,
		"amenity_id":  amenity.ID,
	}).Info("Amenity added")
	return amenity, nil
}

// SaveAmenity writes an amenity without input validation. An over-ceiling
// price is stored as the ceiling.
func (s *Service) SaveAmenity(ctx context.Context, amenity *models.Amenity) error {
	return database.SaveAmenity(s.db.WithContext(ctx), amenity)
}

// RecalculatePrice returns the current reference price without storing it
func (s *Service) RecalculatePrice(ctx context.Context, propertyID uint) (decimal.Decimal, error) {
	property, err := database.GetProperty(s.db.WithContext(ctx), propertyID, false)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.TotalPrice(property), nil
}

func validateProperty(in *PropertyInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("property name is required")
	}
	if in.MunicipalityID == 0 {
		return apperr.Validation("municipality is required")
	}
	if in.Size < 0 || in.NumBedrooms < 0 || in.NumBathrooms < 0 {
		return apperr.Validation("size and room counts cannot be negative")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return apperr.Validation("price cannot be negative")
	}
	if in.Type == "" {
		in.Type = models.ListingSale
	}
	if !in.Type.Valid() {
		return apperr.Validation("unknown listing type %q", in.Type)
	}
	for _, a := range in.Amenities {
		if err := validateAmenity(a); err != nil {
			return err
		}
	}
	return nil
}

func validateAmenity(in AmenityInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("amenity name is required")
	}
	return pricing.ValidateAmenity(in.Category, in.Price)
}
