package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"realestate/server/internal/apperr"
	"realestate/server/internal/auth"
	"realestate/server/internal/database"
)

const actorKey = "actor"

// Authenticator resolves bearer tokens to the stored user. The role is read
// from the store so role changes apply to tokens already issued.
type Authenticator struct {
	issuer *auth.Issuer
	db     *gorm.DB
	logger *logrus.Logger
}

func NewAuthenticator(issuer *auth.Issuer, db *gorm.DB, logger *logrus.Logger) *Authenticator {
	return &Authenticator{issuer: issuer, db: db, logger: logger}
}

func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		claims, err := a.issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			a.logger.WithError(err).Debug("Rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		user, err := database.GetUser(a.db.WithContext(c.Request.Context()), claims.UserID, false)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
				return
			}
			a.logger.WithError(err).Error("Failed to load token user")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		c.Set(actorKey, auth.Actor{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) auth.Actor {
	actor, _ := c.MustGet(actorKey).(auth.Actor)
	return actor
}
