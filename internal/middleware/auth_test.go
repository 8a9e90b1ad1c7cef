package middleware

import (
	"context"
	"errors"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/model"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(cfg *config.AuthConfig) *gin.Engine {
	return newRouterWithProfiles(cfg, nil)
}

func newRouterWithProfiles(cfg *config.AuthConfig, profiles repository.ProfileStore) *gin.Engine {
	access := service.NewAccessService(profiles, cfg.Enabled, cfg.AdminEmails)

	r := gin.New()
	r.GET("/open", AuthMiddleware(cfg), func(c *gin.Context) {
		uid := ""
		if claims := util.GetUserFromContext(c); claims != nil {
			uid = claims.UID
		}
		c.String(http.StatusOK, uid)
	})
	r.GET("/admin", AuthMiddleware(cfg), AdminMiddleware(access), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/users/:user_id", AuthMiddleware(cfg), SelfOrAdmin(access, "user_id"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func serve(r *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sign(t *testing.T, uid, email string, isAdmin *bool) string {
	t.Helper()
	tok, err := util.GenerateJWT(uid, email, isAdmin, secret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	r := newRouter(&config.AuthConfig{Enabled: false})

	assert.Equal(t, http.StatusOK, serve(r, "/open", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/admin", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/users/anyone", "").Code)
}

func TestAuthMiddleware_Token(t *testing.T) {
	r := newRouter(&config.AuthConfig{Enabled: true, Secret: secret})

	w := serve(r, "/open", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Unauthorized"}`, w.Body.String())

	w = serve(r, "/open", sign(t, "u1", "", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	w = serve(r, "/open?token="+sign(t, "u2", "", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u2", w.Body.String())

	other, err := util.GenerateJWT("u1", "", nil, "another-secret", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/open", other).Code)

	expired, err := util.GenerateJWT("u1", "", nil, secret, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/open", expired).Code)
}

func TestAdminMiddleware(t *testing.T) {
	r := newRouter(&config.AuthConfig{Enabled: true, Secret: secret, AdminEmails: []string{"boss@example.com"}})
	yes, no := true, false

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", sign(t, "u1", "u1@example.com", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/admin", sign(t, "b", "BOSS@example.com", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/admin", sign(t, "u1", "u1@example.com", &yes)).Code)
	// 令牌声明优先于邮箱
	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", sign(t, "b", "boss@example.com", &no)).Code)
}

func TestSelfOrAdmin(t *testing.T) {
	r := newRouter(&config.AuthConfig{Enabled: true, Secret: secret, AdminEmails: []string{"boss@example.com"}})

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/users/u1", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/users/u1", sign(t, "u1", "", nil)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/users/u2", sign(t, "u1", "", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/users/u2", sign(t, "b", "boss@example.com", nil)).Code)
}

type brokenProfiles struct{}

func (brokenProfiles) Get(context.Context, string) (*model.Profile, error) {
	return nil, errors.New("connection refused")
}

func (brokenProfiles) Upsert(context.Context, *model.Profile) error { return nil }

func (brokenProfiles) Merge(context.Context, string, map[string]interface{}) error { return nil }

func (brokenProfiles) Delete(context.Context, string) error { return nil }

func TestAccessChecks_ProfileStoreDown(t *testing.T) {
	r := newRouterWithProfiles(&config.AuthConfig{Enabled: true, Secret: secret, AdminEmails: []string{"boss@example.com"}}, brokenProfiles{})

	w := serve(r, "/admin", sign(t, "b", "boss@example.com", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"ok":false,"error":"Internal server error"}`, w.Body.String())

	assert.Equal(t, http.StatusInternalServerError, serve(r, "/users/u2", sign(t, "u1", "", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, "/users/u1", sign(t, "u1", "", nil)).Code)
}
