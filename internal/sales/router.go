package sales

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
	"realestate/server/internal/pricing"
)

// ReviewPolicy bounds the final price relative to the reference price.
// Prices outside [reference*Lower, reference*Upper] need an admin decision.
type ReviewPolicy struct {
	Upper decimal.Decimal
	Lower decimal.Decimal
}

func DefaultReviewPolicy() ReviewPolicy {
	return ReviewPolicy{
		Upper: decimal.NewFromInt(2),
		Lower: decimal.RequireFromString("0.5"),
	}
}

// NewReviewPolicy falls back to the default bound for any non-positive factor
func NewReviewPolicy(upper, lower decimal.Decimal) ReviewPolicy {
	p := DefaultReviewPolicy()
	if upper.IsPositive() {
		p.Upper = upper
	}
	if lower.IsPositive() {
		p.Lower = lower
	}
	return p
}

// Classify reports whether finalPrice needs review and why. Both bounds are
// inclusive on the auto-approve side.
func (p ReviewPolicy) Classify(finalPrice, reference decimal.Decimal) (bool, string) {
	if finalPrice.GreaterThan(reference.Mul(p.Upper)) {
		return true, fmt.Sprintf("final price %s exceeds %s× reference price %s",
			finalPrice.StringFixed(2), p.Upper.String(), reference.StringFixed(2))
	}
	if finalPrice.LessThan(reference.Mul(p.Lower)) {
		return true, fmt.Sprintf("final price %s is below %s× reference price %s",
			finalPrice.StringFixed(2), p.Lower.String(), reference.StringFixed(2))
	}
	return false, ""
}

type SubmitSaleInput struct {
	PropertyID uint
	FinalPrice *decimal.Decimal
	BuyerID    *uint
}

// Submission carries exactly one of a completed sale or a request awaiting review
type Submission struct {
	Sale    *models.Sale
	Pending *models.PendingSaleRequest
}

// Submit records a sale for a property. A final price inside the review
// bounds completes the sale immediately; anything else parks it as a pending
// request and puts the property under review.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, in SubmitSaleInput) (*Submission, error) {
	if in.FinalPrice != nil && in.FinalPrice.IsNegative() {
		return nil, apperr.Validation("final price cannot be negative")
	}

	var out Submission
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		property, err := database.GetProperty(tx, in.PropertyID, true)
		if err != nil {
			return err
		}
		if err := auth.RequireStakeholder(actor, "submit a sale", false, property); err != nil {
			return err
		}
		if property.Status == models.PropertySold {
			return apperr.InvalidState("property %d is already sold", property.ID)
		}
		if in.BuyerID != nil {
			if _, err := database.GetUser(tx, *in.BuyerID, false); err != nil {
				return err
			}
		}

		reference := pricing.TotalPrice(property)
		finalPrice := reference
		if in.FinalPrice != nil && !in.FinalPrice.IsZero() {
			finalPrice = *in.FinalPrice
		}

		needsReview, reason := s.policy.Classify(finalPrice, reference)
		if needsReview {
			request := &models.PendingSaleRequest{
				PropertyID:      property.ID,
				FinalPrice:      finalPrice,
				ProposedBuyerID: in.BuyerID,
				ReasonForReview: reason,
				Status:          models.RequestPending,
				CreatedByID:     actor.UserID,
			}
			if err := database.CreatePendingSale(tx, request); err != nil {
				return err
			}
			if err := database.SetPropertyStatus(tx, property.ID, models.PropertyUnderReview); err != nil {
				return err
			}
			out.Pending = request
			return nil
		}

		sale, err := s.completeSale(tx, property, finalPrice, in.BuyerID, models.ApprovalCompleted, s.now(), "")
		if err != nil {
			return err
		}
		out.Sale = sale
		return nil
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"property_id": in.PropertyID,
			"user_id":     actor.UserID,
		}).WithError(err).Warn("Sale submission failed")
		return nil, err
	}

	fields := logrus.Fields{"property_id": in.PropertyID, "user_id": actor.UserID}
	if out.Pending != nil {
		fields["request_id"] = out.Pending.ID
		s.logger.WithFields(fields).Infof("Sale sent to review: %s", out.Pending.ReasonForReview)
	} else {
		fields["sale_id"] = out.Sale.ID
		s.logger.WithFields(fields).Info("Sale completed")
	}
	return &out, nil
}
