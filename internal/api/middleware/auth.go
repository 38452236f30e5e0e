package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"repairdesk/internal/models"
	"repairdesk/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	authorizationHeader = "Authorization"
	actorCtx            = "actor" // Key to store the authenticated dto.Actor in context
)

// Claims is the token payload. Subject carries the user ID.
type Claims struct {
	Role       int    `json:"role"`
	EntityType string `json:"entity_type"`
	jwt.RegisteredClaims
}

// JWTAuthMiddleware creates a Gin middleware for JWT authentication.
func JWTAuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			slog.Debug("Auth middleware: Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" {
			slog.Debug("Auth middleware: Invalid Authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(headerParts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			slog.Info("Auth middleware: Error parsing token", slog.Any("error", err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			return
		}
		if !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		actor, err := claims.actor()
		if err != nil {
			slog.Info("Auth middleware: Invalid identity claims", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid identity in token"})
			return
		}

		c.Set(actorCtx, actor)
		c.Next()
	}
}

func (c *Claims) actor() (dto.Actor, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return dto.Actor{}, fmt.Errorf("subject %q is not a user ID: %w", c.Subject, err)
	}
	role := models.UserRole(c.Role)
	if !role.Valid() {
		return dto.Actor{}, fmt.Errorf("unknown role %d", c.Role)
	}
	entity := models.EntityType(c.EntityType)
	if entity != models.EntityClient && entity != models.EntityServiceProvider && role != models.RoleSiteAdmin {
		return dto.Actor{}, fmt.Errorf("unknown entity type %q", c.EntityType)
	}
	return dto.Actor{UserID: userID, Role: role, EntityType: entity}, nil
}

// GetActorFromContext returns the authenticated actor stored by JWTAuthMiddleware.
func GetActorFromContext(c *gin.Context) (dto.Actor, error) {
	v, exists := c.Get(actorCtx)
	if !exists {
		return dto.Actor{}, errors.New("actor not found in context")
	}
	actor, ok := v.(dto.Actor)
	if !ok {
		return dto.Actor{}, errors.New("actor in context is of invalid type")
	}
	return actor, nil
}

// RequireRole rejects requests whose actor does not hold one of roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActorFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}
