package sales

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
)

// Resolve applies an admin decision to a pending request. Approval completes
// the sale dated at the request's creation; rejection returns the property to
// the market. The returned sale is nil on rejection.
func (s *Service) Resolve(ctx context.Context, actor auth.Actor, requestID uint, decision models.RequestStatus, notes string) (*models.Sale, error) {
	if err := auth.RequireRole(actor, "resolve pending sales", models.RoleAdmin); err != nil {
		return nil, err
	}
	if decision != models.RequestApproved && decision != models.RequestRejected {
		return nil, apperr.Validation("decision must be %s or %s, got %q", models.RequestApproved, models.RequestRejected, decision)
	}

	var sale *models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := database.GetPendingSale(tx, requestID, true)
		if err != nil {
			return err
		}
		if request.Status.Terminal() {
			return apperr.InvalidState("pending sale request %d is already %s", request.ID, request.Status)
		}

		property, err := database.GetProperty(tx, request.PropertyID, true)
		if err != nil {
			return err
		}
		if decision == models.RequestApproved && property.Status == models.PropertySold {
			return apperr.InvalidState("property %d is already sold", property.ID)
		}

		resolved, err := database.ResolvePendingSale(tx, request.ID, decision, notes)
		if err != nil {
			return err
		}
		if !resolved {
			return apperr.InvalidState("pending sale request %d was resolved concurrently", request.ID)
		}

		if decision == models.RequestRejected {
			// a property sold through another request stays sold
			if property.Status == models.PropertySold {
				return nil
			}
			return database.SetPropertyStatus(tx, property.ID, models.PropertyActive)
		}

		sale, err = s.completeSale(tx, property, request.FinalPrice, request.ProposedBuyerID, models.ApprovalApproved, request.CreatedAt, notes)
		return err
	})

	entry := s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"decision":   decision,
		"user_id":    actor.UserID,
	})
	if err != nil {
		entry.WithError(err).Warn("Pending sale resolution failed")
		return nil, err
	}
	entry.Info("Pending sale resolved")
	return sale, nil
}
