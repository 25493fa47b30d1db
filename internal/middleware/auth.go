package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"tintura-sst/internal/config"
)

const (
	ActorKey     = "actor"
	ActorRoleKey = "actor_role"
	RoleHeader   = "X-Actor-Role"
	DefaultRole  = "admin"
)

// ActorMiddleware identifies who is making the request for audit logs.
// A Bearer token must be a valid HS256 JWT signed with the Supabase secret;
// its sub and role claims become the actor. Without a token the role comes
// from the X-Actor-Role header. Roles are recorded, not enforced.
func ActorMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			role := strings.TrimSpace(c.GetHeader(RoleHeader))
			if role == "" {
				role = DefaultRole
			}
			c.Set(ActorKey, role)
			c.Set(ActorRoleKey, role)
			c.Next()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if cfg.SupabaseJWTSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.SupabaseJWTSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var errorMsg string
			switch {
			case strings.Contains(err.Error(), "signature is invalid"):
				errorMsg = "token signature is invalid - check JWT secret"
			case strings.Contains(err.Error(), "token is expired"):
				errorMsg = "token has expired"
			default:
				errorMsg = err.Error()
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "message": errorMsg})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing subject in token"})
			c.Abort()
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = DefaultRole
		}

		c.Set(ActorKey, sub)
		c.Set(ActorRoleKey, role)
		c.Next()
	}
}

// Actor returns the identity set by ActorMiddleware, or DefaultRole when the
// middleware did not run.
func Actor(c *gin.Context) string {
	if v := c.GetString(ActorKey); v != "" {
		return v
	}
	return DefaultRole
}
