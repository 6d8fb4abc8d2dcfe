package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realestate/server/internal/models"
)

// CreateSale fails with a conflict when the property already has a sale
func CreateSale(tx *gorm.DB, s *models.Sale) error {
	if err := tx.Omit("Commissions").Create(s).Error; err != nil {
		return translate(err, fmt.Sprintf("sale for property %d", s.PropertyID))
	}
	return nil
}

func GetSaleByProperty(tx *gorm.DB, propertyID uint) (*models.Sale, error) {
	var s models.Sale
	if err := tx.Preload("Commissions").Where("property_id = ?", propertyID).First(&s).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("sale for property %d", propertyID))
	}
	return &s, nil
}

func GetSale(tx *gorm.DB, id uint) (*models.Sale, error) {
	var s models.Sale
	if err := tx.Preload("Commissions").First(&s, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("sale %d", id))
	}
	return &s, nil
}

// ListSales returns all sales, or only those of properties the user owns or
// represents when userID is set
func ListSales(tx *gorm.DB, userID *uint) ([]models.Sale, error) {
	q := tx.Preload("Commissions").Order("sales.id")
	if userID != nil {
		q = q.Joins("JOIN properties ON properties.id = sales.property_id").
			Where("properties.owner_id = ? OR properties.agent_id = ?", *userID, *userID)
	}

	var sales []models.Sale
	if err := q.Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

func CreateCommission(tx *gorm.DB, c *models.Commission) error {
	return translate(tx.Create(c).Error, fmt.Sprintf("commission for sale %d", c.SaleID))
}

// ListCommissions returns all commissions, or only the agent's when agentID is set
func ListCommissions(tx *gorm.DB, agentID *uint) ([]models.Commission, error) {
	q := tx.Order("id")
	if agentID != nil {
		q = q.Where("agent_id = ?", *agentID)
	}

	var commissions []models.Commission
	if err := q.Find(&commissions).Error; err != nil {
		return nil, fmt.Errorf("failed to list commissions: %w", err)
	}
	return commissions, nil
}

func CreatePendingSale(tx *gorm.DB, r *models.PendingSaleRequest) error {
	return translate(tx.Create(r).Error, fmt.Sprintf("pending sale for property %d", r.PropertyID))
}

func GetPendingSale(tx *gorm.DB, id uint, forUpdate bool) (*models.PendingSaleRequest, error) {
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var r models.PendingSaleRequest
	if err := q.First(&r, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("pending sale request %d", id))
	}
	return &r, nil
}

// ResolvePendingSale moves a PENDING request to status. The status guard in the
// WHERE clause makes a concurrent second resolution affect no rows.
func ResolvePendingSale(tx *gorm.DB, id uint, status models.RequestStatus, notes string) (bool, error) {
	result := tx.Model(&models.PendingSaleRequest{}).
		Where("id = ? AND status = ?", id, models.RequestPending).
		Updates(map[string]interface{}{"status": status, "admin_notes": notes})
	if result.Error != nil {
		return false, translate(result.Error, fmt.Sprintf("pending sale request %d", id))
	}
	return result.RowsAffected == 1, nil
}

func ListPendingSales(tx *gorm.DB) ([]models.PendingSaleRequest, error) {
	var requests []models.PendingSaleRequest
	if err := tx.Where("status = ?", models.RequestPending).Order("created_at, id").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending sale requests: %w", err)
	}
	return requests, nil
}
