// Package tours schedules property viewings and keeps them from overlapping
// on the same property or for the same agent.
package tours

import (
	"context"
	"time"

	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
)

// Lookup finds the tours a candidate could collide with. excludeID is the
// candidate's own id on updates and 0 on creates.
type Lookup interface {
	ToursForProperty(ctx context.Context, propertyID, excludeID uint) ([]models.Tour, error)
	ToursForAgent(ctx context.Context, agentID, excludeID uint) ([]models.Tour, error)
}

type dbLookup struct {
	tx *gorm.DB
}

// NewLookup reads tours through tx, usually the caller's open transaction
func NewLookup(tx *gorm.DB) Lookup {
	return &dbLookup{tx: tx}
}

func (l *dbLookup) ToursForProperty(ctx context.Context, propertyID, excludeID uint) ([]models.Tour, error) {
	return database.ToursForProperty(l.tx.WithContext(ctx), propertyID, excludeID)
}

func (l *dbLookup) ToursForAgent(ctx context.Context, agentID, excludeID uint) ([]models.Tour, error) {
	return database.ToursForAgent(l.tx.WithContext(ctx), agentID, excludeID)
}

// Overlaps tests half-open intervals: [aStart,aEnd) and [bStart,bEnd)
// overlap iff aStart < bEnd and bStart < aEnd. Touching ends do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

type Validator struct {
	lookup Lookup
}

func NewValidator(lookup Lookup) *Validator {
	return &Validator{lookup: lookup}
}

// Validate fails with a scheduling conflict when the candidate's interval is
// empty or collides with another tour of its property or of its agent.
// Tours of every status take part.
func (v *Validator) Validate(ctx context.Context, candidate *models.Tour) error {
	if !candidate.StartTime.Before(candidate.EndTime) {
		return apperr.SchedulingConflict("tour start %s must be before end %s",
			candidate.StartTime.Format(time.RFC3339), candidate.EndTime.Format(time.RFC3339))
	}

	existing, err := v.lookup.ToursForProperty(ctx, candidate.PropertyID, candidate.ID)
	if err != nil {
		return err
	}
	if clash := firstOverlap(candidate, existing); clash != nil {
		return apperr.SchedulingConflict("property %d already has tour %d from %s to %s",
			candidate.PropertyID, clash.ID, clash.StartTime.Format(time.RFC3339), clash.EndTime.Format(time.RFC3339))
	}

	if candidate.AgentID == nil {
		return nil
	}
	existing, err = v.lookup.ToursForAgent(ctx, *candidate.AgentID, candidate.ID)
	if err != nil {
		return err
	}
	if clash := firstOverlap(candidate, existing); clash != nil {
		return apperr.SchedulingConflict("agent %d already has tour %d from %s to %s",
			*candidate.AgentID, clash.ID, clash.StartTime.Format(time.RFC3339), clash.EndTime.Format(time.RFC3339))
	}
	return nil
}

func firstOverlap(candidate *models.Tour, tours []models.Tour) *models.Tour {
	for i := range tours {
		if tours[i].ID == candidate.ID && candidate.ID != 0 {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, tours[i].StartTime, tours[i].EndTime) {
			return &tours[i]
		}
	}
	return nil
}
