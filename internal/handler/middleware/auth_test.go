//go:build unit

package middleware_test

import (
	"net/http"
	"testing"

	"travel-backoffice/internal/domain/user"
	"travel-backoffice/internal/handler/httperr"
	"travel-backoffice/internal/handler/middleware"
	"travel-backoffice/internal/pkg/config"
	"travel-backoffice/internal/usecase"
	"travel-backoffice/tests/common/authtest"
	"travel-backoffice/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newAuthRouter(t *testing.T, minRole user.Role) (*gin.Engine, *authtest.JWTHelper) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.NewTestConfig()
	helper := authtest.NewJWTHelper(cfg.JWT)

	auth := middleware.NewAuthMiddleware(usecase.NewTokenValidator(helper.Service(t)))
	router := gin.New()
	router.Use(middleware.NewLogger(cfg.Log).LoggingMiddleware())
	router.GET("/protected", auth.RequireAuth(), auth.RequireRoleAtLeast(minRole), func(c *gin.Context) {
		id, _ := middleware.GetUserID(c)
		role, _ := middleware.GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.String(), "role": role.String()})
	})
	return router, helper
}

func TestRequireAuth(t *testing.T) {
	router, helper := newAuthRouter(t, user.RoleViewer)
	userID := uuid.New()

	t.Run("valid token sets identity", func(t *testing.T) {
		token := helper.GenerateToken(t, userID, user.RoleOperator)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/protected", nil, token)

		var body map[string]string
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &body)
		assert.Equal(t, userID.String(), body["userId"])
		assert.Equal(t, "operator", body["role"])
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/protected", nil, "")

		body := httptest.AssertErrorCode(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
		assert.Equal(t, "Access token required", body.Message)
	})

	t.Run("tampered token", func(t *testing.T) {
		token := helper.GenerateToken(t, userID, user.RoleAdmin) + "x"

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/protected", nil, token)

		httptest.AssertErrorCode(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})

	t.Run("expired token", func(t *testing.T) {
		token := helper.CreateExpiredToken(t, userID, user.RoleAdmin)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/protected", nil, token)

		httptest.AssertErrorCode(t, rec, http.StatusUnauthorized, httperr.CodeUnauthorized)
	})
}

func TestRequireRoleAtLeast(t *testing.T) {
	router, helper := newAuthRouter(t, user.RoleOperator)

	cases := []struct {
		role       user.Role
		expectCode int
	}{
		{role: user.RoleViewer, expectCode: http.StatusForbidden},
		{role: user.RoleOperator, expectCode: http.StatusOK},
		{role: user.RoleAdmin, expectCode: http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.role.String(), func(t *testing.T) {
			token := helper.GenerateToken(t, uuid.New(), c.role)

			rec := httptest.PerformRequest(t, router, http.MethodGet, "/protected", nil, token)

			if c.expectCode == http.StatusOK {
				httptest.AssertSuccessResponse(t, rec, http.StatusOK, nil)
			} else {
				httptest.AssertErrorCode(t, rec, c.expectCode, httperr.CodeForbidden)
			}
		})
	}
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, user.RoleAdmin.AtLeast(user.RoleViewer))
	assert.True(t, user.RoleOperator.AtLeast(user.RoleOperator))
	assert.False(t, user.RoleViewer.AtLeast(user.RoleOperator))
	assert.False(t, user.Role("root").AtLeast(user.RoleViewer))
}
