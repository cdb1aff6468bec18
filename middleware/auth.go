package middleware

import (
	"net/http"
	"strings"

	"busreserve/models"
	"busreserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ParticipantKey is the gin context key holding the authenticated models.Participant.
const ParticipantKey = "participant"

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// Browsers cannot set headers on a websocket handshake.
	if c.IsWebsocket() {
		return c.Query("token")
	}
	return ""
}

// JWTAuthMiddleware resolves the bearer token into a participant. Tokens are minted by the
// identity service; only the signature, expiry, subject and role claims are checked here.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Code:    "Unauthenticated",
				Message: "Missing or invalid Authorization header",
			})
			return
		}

		subject, role, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil {
			zap.L().Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Code:    "Unauthenticated",
				Message: "Invalid token",
			})
			return
		}
		kind, ok := models.ParseParticipantKind(role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{
				Code:    "Unauthenticated",
				Message: "Unknown role " + role,
			})
			return
		}

		c.Set(ParticipantKey, models.Participant{Kind: kind, ID: subject})
		c.Next()
	}
}

// RequireCapability rejects participants whose kind does not grant capability.
// It must run after JWTAuthMiddleware.
func RequireCapability(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		participant, ok := GetParticipant(c)
		if !ok || !participant.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{
				Code:    "Unauthorized",
				Message: "caller may not " + string(capability),
			})
			return
		}
		c.Next()
	}
}

// GetParticipant returns the participant set by JWTAuthMiddleware.
func GetParticipant(c *gin.Context) (models.Participant, bool) {
	value, exists := c.Get(ParticipantKey)
	if !exists {
		return models.Participant{}, false
	}
	participant, ok := value.(models.Participant)
	return participant, ok
}
