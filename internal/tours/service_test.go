package tours

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	admin    auth.Actor
	owner    auth.Actor
	agent    auth.Actor
	other    auth.Actor
	buyer    auth.Actor
	property *models.Property
	second   *models.Property
}

var now = time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.NewTestDB()
	require.NoError(t, err)
	require.NoError(t, database.MigrateSchema(db))

	f := &fixture{db: db}
	for _, u := range []struct {
		actor *auth.Actor
		name  string
		role  models.Role
	}{
		{&f.admin, "admin", models.RoleAdmin},
		{&f.owner, "owner", models.RoleOwner},
		{&f.agent, "agent", models.RoleAgent},
		{&f.other, "other-agent", models.RoleAgent},
		{&f.buyer, "buyer", models.RoleBuyer},
	} {
		user := models.User{Username: u.name, Role: u.role}
		require.NoError(t, database.CreateUser(db, &user))
		*u.actor = auth.Actor{UserID: user.ID, Role: user.Role}
	}

	m := models.Municipality{Name: "Quezon City", PricePerSqm: decimal.NewFromInt(3000)}
	require.NoError(t, database.CreateMunicipality(db, &m))

	newProperty := func(name string, available bool) *models.Property {
		p := models.Property{
			Name:             name,
			MunicipalityID:   m.ID,
			OwnerID:          &f.owner.UserID,
			AgentID:          &f.agent.UserID,
			Size:             50,
			Type:             models.ListingSale,
			Status:           models.PropertyActive,
			AvailableForTour: available,
		}
		require.NoError(t, database.CreateProperty(db, &p))
		return &p
	}
	f.property = newProperty("Condo", true)
	f.second = newProperty("Townhouse", true)

	f.svc = NewService(db, nil).WithClock(func() time.Time { return now })
	return f
}

func (f *fixture) create(t *testing.T, actor auth.Actor, propertyID uint, start, end float64) (*models.Tour, error) {
	t.Helper()
	return f.svc.Create(context.Background(), actor, CreateTourInput{
		PropertyID: propertyID,
		StartTime:  at(start),
		EndTime:    at(end),
	})
}

func TestCreate_DefaultsAgentToActor(t *testing.T) {
	f := setup(t)

	created, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)
	require.NotNil(t, created.AgentID)
	assert.Equal(t, f.agent.UserID, *created.AgentID)
	assert.Equal(t, models.TourScheduled, created.Status)

	stored, err := database.GetTour(f.db, created.ID)
	require.NoError(t, err)
	assert.True(t, at(10).Equal(stored.StartTime))
}

func TestCreate_OwnerWithoutAgent(t *testing.T) {
	f := setup(t)

	created, err := f.create(t, f.owner, f.property.ID, 10, 11)
	require.NoError(t, err)
	assert.Nil(t, created.AgentID)
}

func TestCreate_NormalizesToUTC(t *testing.T) {
	f := setup(t)
	manila := time.FixedZone("PHT", 8*60*60)

	created, err := f.svc.Create(context.Background(), f.owner, CreateTourInput{
		PropertyID: f.property.ID,
		StartTime:  at(10).In(manila),
		EndTime:    at(11).In(manila),
	})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, created.StartTime.Location())

	// same instant expressed in another zone still collides
	_, err = f.create(t, f.owner, f.property.ID, 10.5, 11.5)
	assert.True(t, errors.Is(err, apperr.ErrSchedulingConflict), "got %v", err)
}

func TestCreate_PropertyOverlap(t *testing.T) {
	f := setup(t)

	_, err := f.create(t, f.owner, f.property.ID, 10, 11)
	require.NoError(t, err)

	_, err = f.create(t, f.owner, f.property.ID, 10.5, 11.5)
	assert.True(t, errors.Is(err, apperr.ErrSchedulingConflict), "got %v", err)

	// adjacent intervals share only an endpoint
	_, err = f.create(t, f.owner, f.property.ID, 11, 12)
	assert.NoError(t, err)

	// another property at the same time is free when no agent is shared
	_, err = f.create(t, f.owner, f.second.ID, 10, 11)
	assert.NoError(t, err)

	var count int64
	require.NoError(t, f.db.Model(&models.Tour{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestCreate_AgentOverlapAcrossProperties(t *testing.T) {
	f := setup(t)

	_, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)

	_, err = f.create(t, f.agent, f.second.ID, 10.5, 11.5)
	assert.True(t, errors.Is(err, apperr.ErrSchedulingConflict), "got %v", err)
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		prepare  func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput)
		expected error
	}{
		{
			name: "Unknown property",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				return f.owner, CreateTourInput{PropertyID: 404, StartTime: at(10), EndTime: at(11)}
			},
			expected: apperr.ErrNotFound,
		},
		{
			name: "Not available for tours",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				require.NoError(t, f.db.Model(&models.Property{}).Where("id = ?", f.property.ID).Update("available_for_tour", false).Error)
				return f.owner, CreateTourInput{PropertyID: f.property.ID, StartTime: at(10), EndTime: at(11)}
			},
			expected: apperr.ErrPermissionDenied,
		},
		{
			name: "Not a stakeholder",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				return f.other, CreateTourInput{PropertyID: f.property.ID, StartTime: at(10), EndTime: at(11)}
			},
			expected: apperr.ErrPermissionDenied,
		},
		{
			name: "Buyer cannot schedule",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				return f.buyer, CreateTourInput{PropertyID: f.property.ID, StartTime: at(10), EndTime: at(11)}
			},
			expected: apperr.ErrPermissionDenied,
		},
		{
			name: "Start in the past",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				return f.owner, CreateTourInput{PropertyID: f.property.ID, StartTime: at(-2), EndTime: at(-1)}
			},
			expected: apperr.ErrValidation,
		},
		{
			name: "Start after end",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				return f.owner, CreateTourInput{PropertyID: f.property.ID, StartTime: at(11), EndTime: at(10)}
			},
			expected: apperr.ErrSchedulingConflict,
		},
		{
			name: "Named agent is not an agent",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				return f.owner, CreateTourInput{PropertyID: f.property.ID, AgentID: &f.buyer.UserID, StartTime: at(10), EndTime: at(11)}
			},
			expected: apperr.ErrValidation,
		},
		{
			name: "Unknown buyer",
			prepare: func(t *testing.T, f *fixture) (auth.Actor, CreateTourInput) {
				missing := uint(404)
				return f.owner, CreateTourInput{PropertyID: f.property.ID, BuyerID: &missing, StartTime: at(10), EndTime: at(11)}
			},
			expected: apperr.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			actor, input := tt.prepare(t, f)

			_, err := f.svc.Create(context.Background(), actor, input)
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)

			var count int64
			require.NoError(t, f.db.Model(&models.Tour{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestUpdate_ExcludesSelf(t *testing.T) {
	f := setup(t)
	created, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)

	// shifting within its own old slot only overlaps itself
	start, end := at(10.5), at(11.5)
	updated, err := f.svc.Update(context.Background(), f.agent, created.ID, UpdateTourInput{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.True(t, start.Equal(updated.StartTime))
}

func TestUpdate_Conflict(t *testing.T) {
	f := setup(t)
	first, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)
	_, err = f.create(t, f.agent, f.property.ID, 12, 13)
	require.NoError(t, err)

	start := at(12.5)
	end := at(13.5)
	_, err = f.svc.Update(context.Background(), f.owner, first.ID, UpdateTourInput{StartTime: &start, EndTime: &end})
	assert.True(t, errors.Is(err, apperr.ErrSchedulingConflict), "got %v", err)

	stored, err := database.GetTour(f.db, first.ID)
	require.NoError(t, err)
	assert.True(t, at(10).Equal(stored.StartTime), "failed update must not persist")
}

func TestUpdate_AgentChangeRevalidates(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), f.owner, CreateTourInput{
		PropertyID: f.second.ID,
		AgentID:    &f.other.UserID,
		StartTime:  at(10),
		EndTime:    at(11),
	})
	require.NoError(t, err)

	mine, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{AgentID: &f.other.UserID})
	assert.True(t, errors.Is(err, apperr.ErrSchedulingConflict), "got %v", err)
}

func TestUpdate_Status(t *testing.T) {
	f := setup(t)
	created, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)

	completed := models.TourCompleted
	updated, err := f.svc.Update(context.Background(), f.agent, created.ID, UpdateTourInput{Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, models.TourCompleted, updated.Status)

	bogus := models.TourStatus("Postponed")
	_, err = f.svc.Update(context.Background(), f.agent, created.ID, UpdateTourInput{Status: &bogus})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
}

func TestUpdate_Permissions(t *testing.T) {
	f := setup(t)
	created, err := f.create(t, f.owner, f.property.ID, 10, 11)
	require.NoError(t, err)
	cancelled := models.TourCancelled

	_, err = f.svc.Update(context.Background(), f.buyer, created.ID, UpdateTourInput{Status: &cancelled})
	assert.True(t, errors.Is(err, apperr.ErrPermissionDenied), "got %v", err)

	// admins are not tour stakeholders
	_, err = f.svc.Update(context.Background(), f.admin, created.ID, UpdateTourInput{Status: &cancelled})
	assert.True(t, errors.Is(err, apperr.ErrPermissionDenied), "got %v", err)

	_, err = f.svc.Update(context.Background(), f.owner, created.ID, UpdateTourInput{Status: &cancelled})
	assert.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.admin, 404, UpdateTourInput{Status: &cancelled})
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
}

func TestUpdate_MoveProperty(t *testing.T) {
	f := setup(t)
	mine, err := f.create(t, f.owner, f.property.ID, 10, 11)
	require.NoError(t, err)
	_, err = f.create(t, f.owner, f.second.ID, 10, 11)
	require.NoError(t, err)

	// the target property is busy in the same slot
	_, err = f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{PropertyID: &f.second.ID})
	assert.True(t, errors.Is(err, apperr.ErrSchedulingConflict), "got %v", err)

	start, end := at(12), at(13)
	moved, err := f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{
		PropertyID: &f.second.ID,
		StartTime:  &start,
		EndTime:    &end,
	})
	require.NoError(t, err)
	assert.Equal(t, f.second.ID, moved.PropertyID)

	stored, err := database.GetTour(f.db, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, f.second.ID, stored.PropertyID)
}

func TestUpdate_MovePropertyRejections(t *testing.T) {
	tests := []struct {
		name     string
		target   func(t *testing.T, f *fixture) uint
		expected error
	}{
		{
			name:     "Unknown property",
			target:   func(t *testing.T, f *fixture) uint { return 404 },
			expected: apperr.ErrNotFound,
		},
		{
			name: "Not available for tours",
			target: func(t *testing.T, f *fixture) uint {
				require.NoError(t, f.db.Model(&models.Property{}).Where("id = ?", f.second.ID).Update("available_for_tour", false).Error)
				return f.second.ID
			},
			expected: apperr.ErrPermissionDenied,
		},
		{
			name: "Not a stakeholder of the target",
			target: func(t *testing.T, f *fixture) uint {
				p := models.Property{
					Name:             "Bungalow",
					MunicipalityID:   f.property.MunicipalityID,
					Type:             models.ListingSale,
					Status:           models.PropertyActive,
					AvailableForTour: true,
				}
				require.NoError(t, database.CreateProperty(f.db, &p))
				return p.ID
			},
			expected: apperr.ErrPermissionDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			mine, err := f.create(t, f.owner, f.property.ID, 10, 11)
			require.NoError(t, err)

			target := tt.target(t, f)
			_, err = f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{PropertyID: &target})
			assert.True(t, errors.Is(err, tt.expected), "got %v", err)

			stored, err := database.GetTour(f.db, mine.ID)
			require.NoError(t, err)
			assert.Equal(t, f.property.ID, stored.PropertyID)
		})
	}
}

func TestUpdate_ClearAgent(t *testing.T) {
	f := setup(t)
	mine, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{ClearAgent: true, AgentID: &f.other.UserID})
	assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)

	cleared, err := f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{ClearAgent: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.AgentID)

	stored, err := database.GetTour(f.db, mine.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AgentID)

	// the agent is free again in that slot on another property
	_, err = f.create(t, f.agent, f.second.ID, 10, 11)
	assert.NoError(t, err)
}

// recordLocks collects the tables read with a row lock
func recordLocks(t *testing.T, db *gorm.DB) *[]string {
	t.Helper()
	var locked []string
	err := db.Callback().Query().Before("gorm:query").Register("test:record_locks", func(d *gorm.DB) {
		if _, ok := d.Statement.Clauses["FOR"]; ok {
			locked = append(locked, d.Statement.Table)
		}
	})
	require.NoError(t, err)
	return &locked
}

func TestCreate_LocksAgentRow(t *testing.T) {
	f := setup(t)
	locked := recordLocks(t, f.db)

	_, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)
	require.NotEmpty(t, *locked)
	assert.Equal(t, "properties", (*locked)[0])
	assert.Contains(t, *locked, "users")

	// no agent, nothing to lock beyond the property
	*locked = nil
	_, err = f.create(t, f.owner, f.second.ID, 12, 13)
	require.NoError(t, err)
	assert.NotContains(t, *locked, "users")
}

func TestUpdate_LocksAgentRow(t *testing.T) {
	f := setup(t)
	mine, err := f.create(t, f.agent, f.property.ID, 10, 11)
	require.NoError(t, err)
	locked := recordLocks(t, f.db)

	// a reschedule keeps the same agent and still serializes on it
	start, end := at(12), at(13)
	_, err = f.svc.Update(context.Background(), f.agent, mine.ID, UpdateTourInput{StartTime: &start, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, "properties", (*locked)[0])
	assert.Contains(t, *locked, "users")

	*locked = nil
	_, err = f.svc.Update(context.Background(), f.owner, mine.ID, UpdateTourInput{PropertyID: &f.second.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"properties", "properties"}, (*locked)[:2])
	assert.Contains(t, *locked, "users")
}

func TestListTours(t *testing.T) {
	f := setup(t)
	_, err := f.create(t, f.owner, f.property.ID, 12, 13)
	require.NoError(t, err)
	_, err = f.create(t, f.owner, f.property.ID, 10, 11)
	require.NoError(t, err)
	_, err = f.create(t, f.owner, f.second.ID, 10, 11)
	require.NoError(t, err)

	tours, err := f.svc.ListTours(context.Background(), f.property.ID)
	require.NoError(t, err)
	require.Len(t, tours, 2)
	assert.True(t, at(10).Equal(tours[0].StartTime))
	assert.True(t, at(12).Equal(tours[1].StartTime))
	for _, tour := range tours {
		assert.Equal(t, f.property.ID, tour.PropertyID)
	}

	_, err = f.svc.ListTours(context.Background(), 404)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)
}
