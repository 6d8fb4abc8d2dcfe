package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realestate/server/internal/models"
)

func CreateUser(tx *gorm.DB, u *models.User) error {
	return translate(tx.Create(u).Error, fmt.Sprintf("user %q", u.Username))
}

// GetUser loads a user. With forUpdate the row stays locked until the
// surrounding transaction ends, which serializes writers scheduling the
// same agent.
func GetUser(tx *gorm.DB, id uint, forUpdate bool) (*models.User, error) {
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var u models.User
	if err := q.First(&u, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &u, nil
}
