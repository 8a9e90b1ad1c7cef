package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiter_Allow(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4", now))
	}
	assert.False(t, l.Allow("1.2.3.4", now))
	assert.True(t, l.Allow("5.6.7.8", now))

	// 每 20 秒补充一个令牌
	assert.True(t, l.Allow("1.2.3.4", now.Add(21*time.Second)))
}

func TestLimiter_Cleanup(t *testing.T) {
	l := NewLimiter(10, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	l.Allow("old", now)
	l.Allow("fresh", now.Add(3*time.Minute))

	assert.Equal(t, 1, l.Cleanup(now.Add(3*time.Minute+time.Second)))
	assert.Equal(t, 0, l.Cleanup(now.Add(3*time.Minute+time.Second)))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}), Secure())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
