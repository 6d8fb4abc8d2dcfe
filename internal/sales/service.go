// Package sales routes sale submissions to completion or admin review,
// resolves pending requests and records agent commissions.
package sales

import (
	"context"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"realestate/server/config"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
	"realestate/server/internal/models"
)

type Service struct {
	db         *gorm.DB
	logger     *logrus.Logger
	policy     ReviewPolicy
	commission *CommissionCalculator
	now        func() time.Time
}

func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	policy := DefaultReviewPolicy()
	rate := DefaultCommissionRate
	if cfg != nil {
		policy = NewReviewPolicy(cfg.Sales.ReviewUpperFactor, cfg.Sales.ReviewLowerFactor)
		rate = cfg.Sales.DefaultCommissionRate
	}

	return &Service{
		db:         db,
		logger:     logger,
		policy:     policy,
		commission: NewCommissionCalculator(rate),
		now:        time.Now,
	}
}

// WithClock replaces the time source used to date completed sales
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// completeSale records the sale, marks the property sold and, when the
// property has an agent, records the agent's commission at the default rate.
// It must run inside the caller's transaction.
func (s *Service) completeSale(tx *gorm.DB, property *models.Property, finalPrice decimal.Decimal, buyerID *uint, status models.ApprovalStatus, date time.Time, notes string) (*models.Sale, error) {
	sale := &models.Sale{
		PropertyID:     property.ID,
		DateSold:       dateOf(date),
		FinalPrice:     finalPrice,
		BuyerID:        buyerID,
		ApprovalStatus: status,
		AdminNotes:     notes,
	}
	if err := database.CreateSale(tx, sale); err != nil {
		return nil, err
	}

	if err := database.SetPropertyStatus(tx, property.ID, models.PropertySold); err != nil {
		return nil, err
	}

	if property.AgentID != nil {
		commission := s.commission.Compute(*sale, property.AgentID, s.commission.DefaultRate, nil)
		if err := database.CreateCommission(tx, &commission); err != nil {
			return nil, err
		}
		sale.Commissions = append(sale.Commissions, commission)
	}
	return sale, nil
}

// ListPending returns the requests awaiting an admin decision
func (s *Service) ListPending(ctx context.Context, actor auth.Actor) ([]models.PendingSaleRequest, error) {
	if err := auth.RequireRole(actor, "list pending sales", models.RoleAdmin); err != nil {
		return nil, err
	}
	return database.ListPendingSales(s.db.WithContext(ctx))
}

// ListCommissions returns every commission to admins and only their own to others
func (s *Service) ListCommissions(ctx context.Context, actor auth.Actor) ([]models.Commission, error) {
	if actor.IsAdmin() {
		return database.ListCommissions(s.db.WithContext(ctx), nil)
	}
	agentID := actor.UserID
	return database.ListCommissions(s.db.WithContext(ctx), &agentID)
}

// ListSales returns every sale to admins and to others only the sales of
// properties they own or represent
func (s *Service) ListSales(ctx context.Context, actor auth.Actor) ([]models.Sale, error) {
	if actor.IsAdmin() {
		return database.ListSales(s.db.WithContext(ctx), nil)
	}
	userID := actor.UserID
	return database.ListSales(s.db.WithContext(ctx), &userID)
}

func (s *Service) GetSale(ctx context.Context, actor auth.Actor, id uint) (*models.Sale, error) {
	tx := s.db.WithContext(ctx)
	sale, err := database.GetSale(tx, id)
	if err != nil {
		return nil, err
	}
	property, err := database.GetProperty(tx, sale.PropertyID, false)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireStakeholder(actor, "view this sale", true, property); err != nil {
		return nil, err
	}
	return sale, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
