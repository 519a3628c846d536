package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitbuds/utils"
)

// EmbedClaimsKey is the context key the embed claims are stored under.
const EmbedClaimsKey = "embedClaims"

// EmbedAuthMiddleware parses the host platform's signed embed token, when
// present, and exposes its claims to the handlers. Visitors without a token
// proceed anonymously; only a token that fails validation is rejected.
func EmbedAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("X-Embed-Token")
		if tokenString == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := utils.ParseEmbedToken(secret, tokenString)
		if err != nil {
			zap.L().Warn("invalid embed token", zap.Error(err))
			c.AbortWithStatusJSON(401, gin.H{"error": "Invalid embed token"})
			return
		}
		c.Set(EmbedClaimsKey, claims)
		c.Next()
	}
}

// EmbedClaims returns the parsed claims for the request, if any.
func EmbedClaims(c *gin.Context) (*utils.EmbedClaims, bool) {
	val, exists := c.Get(EmbedClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := val.(*utils.EmbedClaims)
	return claims, ok
}
