package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/stable-scheduler-go/pkg/auth"
	"github.com/arnavshah/stable-scheduler-go/pkg/database"
)

func bearer(c *gin.Context) string {
	return strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key for scheduler routes and
// enforces its daily request limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			abortWithError(c, http.StatusUnauthorized, "API Key required")
			return
		}

		userID, err := h.Auth.VerifyHMACKey(key)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid API Key signature")
			return
		}

		apiKey, err := auth.TrackAPIKey(h.DB, key)
		if errors.Is(err, auth.ErrUnknownKey) {
			abortWithError(c, http.StatusUnauthorized, "API Key not registered")
			return
		}
		if err != nil {
			h.Logger.Error().Err(err).Str("user_id", userID).Msg("could not load api key")
			abortWithError(c, http.StatusInternalServerError, "Could not load API key")
			return
		}

		var today database.APIUsage
		err = h.DB.Where("key_id = ? AND date = ?", apiKey.ID, time.Now().Format("2006-01-02")).Limit(1).Find(&today).Error
		if err != nil {
			h.Logger.Error().Err(err).Uint("key_id", apiKey.ID).Msg("could not load usage")
			abortWithError(c, http.StatusInternalServerError, "Could not check request limit")
			return
		}
		if apiKey.RateLimit > 0 && today.RequestCount >= apiKey.RateLimit {
			abortWithError(c, http.StatusTooManyRequests, "Daily request limit reached")
			return
		}

		c.Set("apiKey", apiKey)
		c.Set("userID", userID)
		c.Next()
	}
}

// RequestLogger logs every request once it has been served
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := h.Logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = h.Logger.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
