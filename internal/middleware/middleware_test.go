package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/investment_bot/internal/middleware"
	"github.com/SscSPs/investment_bot/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "middleware-test-secret"
	testIssuer = "investment-bot"
)

func newEngine(t *testing.T, mw ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/api/v1/accounts/:userID", func(c *gin.Context) {
		actor, _ := middleware.GetActorFromContext(c)
		c.String(http.StatusOK, actor)
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/u1", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine(t, middleware.AuthMiddleware(testSecret, testIssuer))
	now := time.Now()

	valid, err := utils.GenerateAdminToken("555", testSecret, time.Hour, testIssuer, now)
	require.NoError(t, err)
	expired, err := utils.GenerateAdminToken("555", testSecret, time.Hour, testIssuer, now.Add(-2*time.Hour))
	require.NoError(t, err)
	otherIssuer, err := utils.GenerateAdminToken("555", testSecret, time.Hour, "someone-else", now)
	require.NoError(t, err)
	wrongKey, err := utils.GenerateAdminToken("555", "another-secret", time.Hour, testIssuer, now)
	require.NoError(t, err)

	w := get(r, "Bearer "+valid)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "555", w.Body.String())

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", "Authorization header required"},
		{"wrong scheme", "Basic " + valid, "Authorization header format must be Bearer {token}"},
		{"expired", "Bearer " + expired, "Token has expired"},
		{"wrong issuer", "Bearer " + otherIssuer, "Invalid token"},
		{"wrong key", "Bearer " + wrongKey, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestRateLimit(t *testing.T) {
	_, err := middleware.NewRateLimiter("lots")
	require.Error(t, err)

	l, err := middleware.NewRateLimiter("2-M")
	require.NoError(t, err)
	r := newEngine(t, middleware.RateLimit(l))

	for i := 0; i < 2; i++ {
		w := get(r, "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := get(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestPosthogMiddleware_DisabledPassesThrough(t *testing.T) {
	for _, client := range []*utils.PosthogClientWrapper{nil, {}} {
		setActor := func(c *gin.Context) {
			c.Request = c.Request.WithContext(middleware.WithActor(c.Request.Context(), "42"))
		}
		r := newEngine(t, setActor, middleware.PosthogMiddleware(client))
		w := get(r, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "42", w.Body.String())
	}
}

func TestAnalyticsEventName(t *testing.T) {
	assert.Equal(t, "post_api_v1_accounts_userID_credit", middleware.AnalyticsEventName(http.MethodPost, "/api/v1/accounts/:userID/credit"))
	assert.Equal(t, "get_api_v1_tickets", middleware.AnalyticsEventName(http.MethodGet, "/api/v1/tickets"))
	assert.Empty(t, middleware.AnalyticsEventName(http.MethodGet, ""))
}
