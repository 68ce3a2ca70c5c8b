package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"voice-recorder/dto"
	"voice-recorder/entities"
	"voice-recorder/pkg/token"
	"voice-recorder/service"
)

const userContextKey = "currentUser"

// RequireAuth verifies the bearer token and re-confirms the principal still
// exists before the request proceeds.
func RequireAuth(tokens *token.Manager, auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(401, dto.Fail("missing or invalid authorization header"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(401, dto.Fail("invalid or expired token"))
			return
		}

		user, err := auth.ValidateUser(c.Request.Context(), claims)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *entities.User {
	user, _ := c.MustGet(userContextKey).(*entities.User)
	return user
}
