package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/quizdash/quiz-service/internal/config"
	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/repositories"
	"github.com/quizdash/quiz-service/internal/utils"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "user_id"
	ContextFullName = "full_name"
	ContextRole     = "role"
)

// TokenParser abstracts the identity provider's token verification so tests
// can inject their own claims.
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

func NewCasdoorClient(cfg config.CasdoorConfig) *casdoorsdk.Client {
	return casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// Auth verifies the caller's token and provisions the local user row. The
// row upsert keeps leaderboard joins and registration stats working without
// a separate sign-up flow.
func Auth(parser TokenParser, users repositories.UserRepository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		claims, err := parser.ParseJwtToken(token)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "token verification failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		user := userFromClaims(claims)
		if err := users.Upsert(c.Request.Context(), user); err != nil {
			logger.ErrorContext(c.Request.Context(), "failed to provision user", "user_id", user.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "failed to resolve user identity",
			})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextFullName, user.FullName)
		c.Set(ContextRole, string(user.Role))
		c.Next()
	}
}

// RequireRole gates a route group on the role resolved during Auth.
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString(ContextRole)
		if current != string(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, or "" when the request
// skipped the auth middleware.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if after, found := strings.CutPrefix(header, "Bearer "); found {
		return after
	}
	if cookie, err := c.Cookie("access_token"); err == nil {
		return cookie
	}
	return ""
}

func userFromClaims(claims *casdoorsdk.Claims) *models.User {
	role := models.RoleUser
	if claims.User.IsAdmin {
		role = models.RoleAdmin
	}

	fullName := claims.User.DisplayName
	if fullName == "" {
		fullName = claims.User.Name
	}

	var mobile *string
	if claims.User.Phone != "" {
		phone := claims.User.Phone
		mobile = &phone
	}

	return &models.User{
		ID:       claims.User.Id,
		FullName: fullName,
		Email:    claims.User.Email,
		Mobile:   mobile,
		Role:     role,
	}
}
