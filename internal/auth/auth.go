// Package auth holds the request actor and the single authorization check
// used by every workflow service.
package auth

import (
	"realestate/server/internal/apperr"
	"realestate/server/internal/models"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	UserID uint
	Role   models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Stakeholder is implemented by every protected entity. Either id may be nil.
type Stakeholder interface {
	Stakeholders() (owner, agent *uint)
}

// RequireRole fails unless the actor holds one of roles
func RequireRole(actor Actor, action string, roles ...models.Role) error {
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return apperr.PermissionDenied("role %s cannot %s", actor.Role, action)
}

// RequireStakeholder fails unless the actor is the owner or the agent of at
// least one resource. Admins pass only when allowAdmin is set.
func RequireStakeholder(actor Actor, action string, allowAdmin bool, resources ...Stakeholder) error {
	if allowAdmin && actor.IsAdmin() {
		return nil
	}
	for _, r := range resources {
		if r == nil {
			continue
		}
		owner, agent := r.Stakeholders()
		if is(owner, actor.UserID) || is(agent, actor.UserID) {
			return nil
		}
	}
	return apperr.PermissionDenied("only the property owner or agent can %s", action)
}

func is(id *uint, userID uint) bool {
	return id != nil && *id == userID
}
