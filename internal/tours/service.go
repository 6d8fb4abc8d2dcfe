package tours

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
)

type CreateTourInput struct {
	PropertyID uint
	AgentID    *uint
	BuyerID    *uint
	StartTime  time.Time
	EndTime    time.Time
}

// UpdateTourInput changes only the fields that are set. ClearAgent removes
// the agent and cannot be combined with AgentID.
type UpdateTourInput struct {
	PropertyID *uint
	AgentID    *uint
	ClearAgent bool
	BuyerID    *uint
	StartTime  *time.Time
	EndTime    *time.Time
	Status     *models.TourStatus
}

type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Service{db: db, logger: logger, now: time.Now}
}

// WithClock replaces the time source used to reject tours in the past
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create schedules a tour on a property open for tours. Agents scheduling
// without naming an agent lead the tour themselves.
func (s *Service) Create(ctx context.Context, actor auth.Actor, in CreateTourInput) (*models.Tour, error) {
	tour := &models.Tour{
		PropertyID: in.PropertyID,
		AgentID:    in.AgentID,
		BuyerID:    in.BuyerID,
		StartTime:  in.StartTime.UTC(),
		EndTime:    in.EndTime.UTC(),
		Status:     models.TourScheduled,
	}
	if tour.AgentID == nil && actor.Role == models.RoleAgent {
		agentID := actor.UserID
		tour.AgentID = &agentID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := database.GetProperty(tx, in.PropertyID, true)
		if err != nil {
			return err
		}
		if !property.AvailableForTour {
			return apperr.PermissionDenied("property %d is not available for tours", property.ID)
		}
		if err := auth.RequireStakeholder(actor, "schedule a tour", false, property); err != nil {
			return err
		}
		if tour.StartTime.Before(s.now()) {
			return apperr.Validation("tour cannot start in the past")
		}
		if err := checkParticipants(tx, tour.AgentID, tour.BuyerID); err != nil {
			return err
		}
		if err := NewValidator(NewLookup(tx)).Validate(ctx, tour); err != nil {
			return err
		}
		return database.CreateTour(tx, tour)
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"property_id": in.PropertyID,
			"user_id":     actor.UserID,
		}).WithError(err).Warn("Tour scheduling failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"property_id": tour.PropertyID,
		"tour_id":     tour.ID,
	}).Info("Tour scheduled")
	return tour, nil
}

// Update changes a tour. The tour's agent and the property's owner or agent
// may update; admins may not. A changed interval, property or agent is
// checked for overlaps against every other tour.
func (s *Service) Update(ctx context.Context, actor auth.Actor, tourID uint, in UpdateTourInput) (*models.Tour, error) {
	if in.ClearAgent && in.AgentID != nil {
		return nil, apperr.Validation("agent_id and clear_agent are mutually exclusive")
	}

	var tour *models.Tour
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tour, err = database.GetTour(tx, tourID)
		if err != nil {
			return err
		}
		current, target, err := lockProperties(tx, tour.PropertyID, in.PropertyID)
		if err != nil {
			return err
		}
		if err := auth.RequireStakeholder(actor, "update this tour", false, tour, current); err != nil {
			return err
		}

		reschedule := false
		if target != current {
			if !target.AvailableForTour {
				return apperr.PermissionDenied("property %d is not available for tours", target.ID)
			}
			if err := auth.RequireStakeholder(actor, "move a tour to this property", false, target); err != nil {
				return err
			}
			tour.PropertyID = target.ID
			reschedule = true
		}
		if in.StartTime != nil {
			tour.StartTime = in.StartTime.UTC()
			reschedule = true
		}
		if in.EndTime != nil {
			tour.EndTime = in.EndTime.UTC()
			reschedule = true
		}
		if in.AgentID != nil {
			tour.AgentID = in.AgentID
			reschedule = true
		}
		if in.ClearAgent && tour.AgentID != nil {
			tour.AgentID = nil
			reschedule = true
		}
		if in.BuyerID != nil {
			tour.BuyerID = in.BuyerID
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return apperr.Validation("unknown tour status %q", *in.Status)
			}
			tour.Status = *in.Status
		}

		agentID := in.AgentID
		if reschedule {
			agentID = tour.AgentID
		}
		if err := checkParticipants(tx, agentID, in.BuyerID); err != nil {
			return err
		}
		if reschedule {
			if err := NewValidator(NewLookup(tx)).Validate(ctx, tour); err != nil {
				return err
			}
		}
		return database.SaveTour(tx, tour)
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"tour_id": tourID,
			"user_id": actor.UserID,
		}).WithError(err).Warn("Tour update failed")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"tour_id":     tour.ID,
		"property_id": tour.PropertyID,
	}).Info("Tour updated")
	return tour, nil
}

// ListTours returns the property's tours ordered by start time
func (s *Service) ListTours(ctx context.Context, propertyID uint) ([]models.Tour, error) {
	var tours []models.Tour
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := database.GetProperty(tx, propertyID, false); err != nil {
			return err
		}
		var err error
		tours, err = database.ToursForProperty(tx, propertyID, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tours, nil
}

// lockProperties locks the tour's property and, when moving, the target.
// Rows are locked in ascending id order so concurrent moves cannot deadlock.
func lockProperties(tx *gorm.DB, currentID uint, targetID *uint) (current, target *models.Property, err error) {
	if targetID == nil || *targetID == currentID {
		current, err = database.GetProperty(tx, currentID, true)
		return current, current, err
	}

	first, second := currentID, *targetID
	if second < first {
		first, second = second, first
	}
	locked := map[uint]*models.Property{}
	for _, id := range []uint{first, second} {
		p, err := database.GetProperty(tx, id, true)
		if err != nil {
			return nil, nil, err
		}
		locked[id] = p
	}
	return locked[currentID], locked[*targetID], nil
}

// checkParticipants verifies that the named agent is an agent and that the
// named buyer exists. The agent row stays locked until the transaction ends
// so two tours on different properties cannot book the agent concurrently.
func checkParticipants(tx *gorm.DB, agentID, buyerID *uint) error {
	if agentID != nil {
		agent, err := database.GetUser(tx, *agentID, true)
		if err != nil {
			return err
		}
		if agent.Role != models.RoleAgent {
			return apperr.Validation("user %d is not an agent", agent.ID)
		}
	}
	if buyerID != nil {
		if _, err := database.GetUser(tx, *buyerID, false); err != nil {
			return err
		}
	}
	return nil
}
