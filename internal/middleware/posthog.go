package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/investment_bot/internal/utils"
	"github.com/gin-gonic/gin"
)

var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware records each successful admin API call as an event keyed by the
// acting admin id. It must run after AuthMiddleware.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		adminID, ok := GetActorFromContext(c)
		if !ok {
			return
		}
		eventName := AnalyticsEventName(c.Request.Method, c.FullPath())
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}
		posthogClient.Enqueue(adminID, eventName, props)
	}
}

// AnalyticsEventName turns a route template into an event name,
// e.g. POST /api/v1/accounts/:userID/credit becomes "post_api_v1_accounts_userID_credit".
func AnalyticsEventName(method, fullPath string) string {
	path := strings.Trim(fullPath, "/")
	if path == "" {
		return ""
	}
	path = strings.NewReplacer("/", "_", ":", "", "*", "").Replace(path)
	return strings.ToLower(method) + "_" + path
}
