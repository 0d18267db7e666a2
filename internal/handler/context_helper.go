package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-batch-api/internal/middleware"
	"github.com/noah-isme/lms-batch-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// userIDFromContext returns the acting user's id when authenticated.
func userIDFromContext(c *gin.Context) *string {
	claims := claimsFromContext(c)
	if claims == nil || claims.UserID == "" {
		return nil
	}
	id := claims.UserID
	return &id
}
