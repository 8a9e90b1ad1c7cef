package app

import (
	"bytes"
	"encoding/json"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/testutil"
	"mindtrack_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

type testServer struct {
	app *App
	db  *gorm.DB
}

func newTestServer(t *testing.T, authEnabled bool) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Auth: config.AuthConfig{
			Enabled:     authEnabled,
			Secret:      testSecret,
			AdminEmails: []string{"admin@example.com"},
		},
		Progress: config.ProgressConfig{Location: time.UTC, MaxRetries: 3},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"*"}},
	}
	return &testServer{app: New(cfg, db, nil), db: db}
}

func token(t *testing.T, uid, email string) string {
	t.Helper()
	tok, err := util.GenerateJWT(uid, email, nil, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, bearer string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ok", body["status"])
	components := body["components"].(map[string]interface{})
	assert.Equal(t, "up", components["database"])
	assert.Equal(t, "disabled", components["redis"])
}

func TestRouter_ProgressFlow(t *testing.T) {
	s := newTestServer(t, false)
	testutil.SeedQuestion(t, s.db, 1, "two-sum", "Easy")

	w, body := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"user_id": "u1", "question_id": 1, "action": "solve",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(1), body["is_solved"])
	assert.Equal(t, float64(0), body["is_starred"])

	w, body = s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"user_id": "u1", "question_id": "1", "action": "star",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["is_solved"])
	assert.Equal(t, float64(1), body["is_starred"])

	w, body = s.do(t, http.MethodGet, "/api/users/u1/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	row := body["row"].(map[string]interface{})
	assert.Equal(t, float64(1), row["total_solved"])
	assert.Equal(t, float64(1), row["easy_solved"])
	assert.Equal(t, float64(1), row["current_streak"])

	w, body = s.do(t, http.MethodGet, "/api/users/u1/progress", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	row = body["row"].(map[string]interface{})
	assert.Equal(t, float64(1), row["solved_count"])
	assert.Equal(t, float64(1), row["starred_count"])
}

func TestRouter_ProgressValidation(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{"user_id": "u1", "question_id": 1}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, util.ErrMissingParameter.Error(), body["error"])

	w, body = s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"user_id": "u1", "question_id": 1, "action": "like",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", body["error"])

	w, _ = s.do(t, http.MethodPost, "/api/progress", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ProgressValidatedBeforeAccess(t *testing.T) {
	s := newTestServer(t, true)
	user := token(t, "u1", "neo@example.com")

	// 参数错误优先于越权判断
	w, body := s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"user_id": "u2", "question_id": 1, "action": "like",
	}, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{"user_id": "u2", "question_id": 1}, user)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.ErrMissingParameter.Error(), body["error"])

	w, _ = s.do(t, http.MethodPost, "/api/progress", map[string]interface{}{
		"user_id": "u2", "question_id": 1, "action": "solve",
	}, user)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_RequiredFieldMessages(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodPost, "/api/registrations", map[string]string{"uid": "u1", "app_username": "neo"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "uid, app_username, and leetcode_username are required", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/verify-user", map[string]string{"user_id": "u1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id, app_username and leetcode_username are required", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/users/u1/tasks", map[string]interface{}{"title": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Title is required", body["error"])
}

func TestRouter_LeaderboardLimit(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodGet, "/api/leaderboard?limit=-3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["limit"])

	w, body = s.do(t, http.MethodGet, "/api/leaderboard?limit=0", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["limit"])

	w, body = s.do(t, http.MethodGet, "/api/leaderboard?limit=abc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(100), body["limit"])
}

func TestRouter_Questions(t *testing.T) {
	s := newTestServer(t, false)
	testutil.SeedQuestion(t, s.db, 1, "Two Sum", "Easy")
	testutil.SeedQuestion(t, s.db, 2, "LRU Cache", "Medium")
	testutil.SeedQuestion(t, s.db, 3, "Word Ladder", "Hard")

	w, body := s.do(t, http.MethodGet, "/api/questions?difficulty=easy,medium&limit=999", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(50), body["limit"])
	assert.Len(t, body["rows"], 2)
	assert.Contains(t, body["columns"], "question_id")

	w, body = s.do(t, http.MethodGet, "/api/questions/3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Word Ladder", body["data"].(map[string]interface{})["title"])

	w, body = s.do(t, http.MethodGet, "/api/questions/999", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Question not found", body["error"])

	w, _ = s.do(t, http.MethodGet, "/api/questions/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, body["rows"])
}

func TestRouter_VerifyAndLeaderboard(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodPost, "/api/verify-user", map[string]string{
		"user_id": "u1", "app_username": "neo", "leetcode_username": "neo_lc",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["row"].(map[string]interface{})["is_verified"])

	w, body = s.do(t, http.MethodPost, "/api/verify-user", map[string]string{
		"user_id": "u2", "app_username": "neo", "leetcode_username": "x",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "app_username already in use", body["error"])

	w, body = s.do(t, http.MethodGet, "/api/leaderboard?user_id=u1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["total"])
	my := body["my"].(map[string]interface{})
	assert.Equal(t, "neo", my["username"])
	assert.Equal(t, float64(1), my["rank"])

	w, body = s.do(t, http.MethodGet, "/api/user-stats?username=NEO", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", body["user"].(map[string]interface{})["user_id"])

	w, body = s.do(t, http.MethodGet, "/api/user-stats", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "user_id or username is required", body["error"])

	w, body = s.do(t, http.MethodGet, "/api/users/nobody", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["error"])

	w, body = s.do(t, http.MethodPost, "/api/delete-user", map[string]string{"user_id": "u1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["deleted"])
}

func TestRouter_Registrations(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodPost, "/api/registrations", map[string]string{
		"uid": "u1", "app_username": "neo", "leetcode_username": "neo_lc", "status": "verified",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	// 未启用认证时视为管理员，可以直接指定状态
	assert.Equal(t, "verified", body["row"].(map[string]interface{})["status"])

	w, body = s.do(t, http.MethodPost, "/api/registrations", map[string]string{
		"uid": "u2", "app_username": "NEO", "leetcode_username": "other",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, util.ErrAppUsernameTaken.Error(), body["error"])

	w, body = s.do(t, http.MethodPatch, "/api/registrations/u1", map[string]string{"status": "bogus"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodPatch, "/api/registrations/u1", map[string]string{"status": "rejected"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/registrations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["rows"], 1)

	w, _ = s.do(t, http.MethodDelete, "/api/registrations/u1", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/registrations/u1", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", body["error"])
}

func TestRouter_Tasks(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodPost, "/api/users/u1/tasks", map[string]interface{}{
		"title": "Graphs", "subtasks": []string{"bfs", "dfs"},
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	task := body["data"].(map[string]interface{})
	taskID := task["id"].(string)
	assert.Len(t, task["subtasks"], 2)

	w, body = s.do(t, http.MethodPost, "/api/users/u1/tasks/"+taskID+"/toggle", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["data"].(map[string]interface{})["completed"])

	w, body = s.do(t, http.MethodGet, "/api/users/u1/tasks?view=all", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["rows"], 1)

	w, _ = s.do(t, http.MethodPost, "/api/users/u1/tasks", map[string]interface{}{"title": ""}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/users/u1/tasks/"+taskID, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, body = s.do(t, http.MethodDelete, "/api/users/u1/tasks/"+taskID, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", body["error"])
}

func TestRouter_Profile(t *testing.T) {
	s := newTestServer(t, false)

	w, _ := s.do(t, http.MethodGet, "/api/users/u1/profile", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := s.do(t, http.MethodPut, "/api/users/u1/profile", map[string]interface{}{
		"name": "Neo", "email": "neo@example.com", "is_admin": true, "is_verified": true,
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Neo", data["name"])
	assert.Equal(t, false, data["is_verified"])
	assert.Nil(t, data["is_admin"])
}

func TestRouter_AuthEnforced(t *testing.T) {
	s := newTestServer(t, true)
	testutil.SeedQuestion(t, s.db, 1, "two-sum", "Easy")
	solve := func(userID string) map[string]interface{} {
		return map[string]interface{}{"user_id": userID, "question_id": 1, "action": "solve"}
	}

	w, _ := s.do(t, http.MethodPost, "/api/progress", solve("u1"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/progress", solve("u1"), "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	user := token(t, "u1", "neo@example.com")
	w, _ = s.do(t, http.MethodPost, "/api/progress", solve("u2"), user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/progress", solve("u1"), user)
	assert.Equal(t, http.StatusOK, w.Code)

	admin := token(t, "root", "Admin@Example.com")
	w, _ = s.do(t, http.MethodPost, "/api/progress", solve("u2"), admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/users", nil, user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, body := s.do(t, http.MethodGet, "/api/users", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["rows"], 2)

	w, _ = s.do(t, http.MethodGet, "/api/users/u2/tasks", nil, user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/users/u1/tasks", nil, user)
	assert.Equal(t, http.StatusOK, w.Code)

	// 公共接口不需要令牌
	w, _ = s.do(t, http.MethodGet, "/api/leaderboard", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NonAdminRegistrationIsPending(t *testing.T) {
	s := newTestServer(t, true)
	user := token(t, "u1", "neo@example.com")

	w, body := s.do(t, http.MethodPost, "/api/registrations", map[string]string{
		"uid": "u1", "app_username": "neo", "leetcode_username": "neo_lc", "status": "verified",
	}, user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", body["row"].(map[string]interface{})["status"])

	w, _ = s.do(t, http.MethodPost, "/api/registrations", map[string]string{
		"uid": "u2", "app_username": "trin", "leetcode_username": "trin_lc",
	}, user)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
