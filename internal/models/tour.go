package models

import "time"

type TourStatus string

const (
	TourScheduled TourStatus = "Scheduled"
	TourCompleted TourStatus = "Completed"
	TourCancelled TourStatus = "Cancelled"
)

func (s TourStatus) Valid() bool {
	switch s {
	case TourScheduled, TourCompleted, TourCancelled:
		return true
	}
	return false
}

type Tour struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PropertyID uint       `gorm:"not null;index" json:"property_id"`
	AgentID    *uint      `gorm:"index" json:"agent_id"`
	BuyerID    *uint      `gorm:"index" json:"buyer_id"`
	StartTime  time.Time  `gorm:"not null;index" json:"start_time"`
	EndTime    time.Time  `gorm:"not null" json:"end_time"`
	Status     TourStatus `gorm:"size:10;not null;default:'Scheduled'" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Stakeholders exposes the tour's own agent; ownership lives on the property
func (t *Tour) Stakeholders() (owner, agent *uint) {
	return nil, t.AgentID
}
