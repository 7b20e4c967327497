package jwt

import (
	"strconv"
	"strings"

	"friendnet/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// ContextUserIDKey is the gin.Context key for the caller's user ID.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey is the gin.Context key for the caller's name.
	ContextUserNameKey = "user_name"
	// ContextClaimsKey is the gin.Context key for the parsed claims.
	ContextClaimsKey = "jwt_claims"
)

// AuthMiddleware extracts Authorization: Bearer <token>, validates it
// and stores the caller's identity in the gin.Context. Every engine
// call downstream receives the viewer ID explicitly from here; there
// is no ambient current-user state.
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing Authorization header")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "Authorization must be Bearer <token>")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			response.Unauthorized(c, "token must not be empty")
			c.Abort()
			return
		}

		claims, err := s.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "token invalid or expired")
			c.Abort()
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil {
			response.Unauthorized(c, "token subject invalid")
			c.Abort()
			return
		}

		name := ""
		if claims.Data != nil {
			if n, ok := claims.Data["name"].(string); ok {
				name = n
			}
		}

		c.Set(ContextUserIDKey, uint(userID))
		c.Set(ContextUserNameKey, name)
		c.Set(ContextClaimsKey, claims)

		c.Next()
	}
}

// GetUserID returns the authenticated user's ID, or 0 when absent.
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetUserName returns the authenticated user's display name.
func GetUserName(c *gin.Context) string {
	if name, exists := c.Get(ContextUserNameKey); exists {
		if n, ok := name.(string); ok {
			return n
		}
	}
	return ""
}

// GetClaims returns the parsed JWT claims from the context.
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if cc, ok := claims.(*CustomClaims); ok {
			return cc
		}
	}
	return nil
}
