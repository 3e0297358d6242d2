package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/quizdash/quiz-service/internal/models"
	"github.com/quizdash/quiz-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	claims *casdoorsdk.Claims
	err    error
}

func (f *fakeParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type fakeUsers struct {
	upserted *models.User
}

func (f *fakeUsers) Upsert(ctx context.Context, user *models.User) error {
	f.upserted = user
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, nil
}
func (f *fakeUsers) Count(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeUsers) CountCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeUsers) RegistrationsBetween(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return nil, nil
}

func adminClaims() *casdoorsdk.Claims {
	claims := &casdoorsdk.Claims{}
	claims.User.Id = "u-admin"
	claims.User.Name = "admin"
	claims.User.DisplayName = "Site Admin"
	claims.User.Email = "admin@example.com"
	claims.User.IsAdmin = true
	return claims
}

func newAuthRouter(parser TokenParser, users *fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(parser, users, utils.NewDevelopmentLogger()))

	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"role":    c.GetString(ContextRole),
		})
	})

	admin := router.Group("/admin")
	admin.Use(RequireRole(models.RoleAdmin))
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAuth_MissingToken(t *testing.T) {
	router := newAuthRouter(&fakeParser{claims: adminClaims()}, &fakeUsers{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_InvalidToken(t *testing.T) {
	router := newAuthRouter(&fakeParser{err: assert.AnError}, &fakeUsers{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ProvisionsUserAndSetsContext(t *testing.T) {
	users := &fakeUsers{}
	router := newAuthRouter(&fakeParser{claims: adminClaims()}, users)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, users.upserted)
	assert.Equal(t, "u-admin", users.upserted.ID)
	assert.Equal(t, "Site Admin", users.upserted.FullName)
	assert.Equal(t, models.RoleAdmin, users.upserted.Role)
}

func TestAuth_AcceptsCookieToken(t *testing.T) {
	router := newAuthRouter(&fakeParser{claims: adminClaims()}, &fakeUsers{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_ForbidsNonAdmins(t *testing.T) {
	claims := adminClaims()
	claims.User.IsAdmin = false
	router := newAuthRouter(&fakeParser{claims: claims}, &fakeUsers{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_AllowsAdmins(t *testing.T) {
	router := newAuthRouter(&fakeParser{claims: adminClaims()}, &fakeUsers{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
