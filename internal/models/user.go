package models

import "time"

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleAgent Role = "Agent"
	RoleOwner Role = "Owner"
	RoleBuyer Role = "Buyer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleOwner, RoleBuyer:
		return true
	}
	return false
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Role      Role      `gorm:"size:10;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
