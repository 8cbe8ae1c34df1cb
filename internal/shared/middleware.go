package shared

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Conversly/tripshare/internal/metrics"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestID propagates an upstream X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// AccessLog logs one line per request and records request metrics.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.HTTPInFlight.Inc()
		defer metrics.HTTPInFlight.Dec()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), strconv.Itoa(status), latency)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("clientIp", c.ClientIP()),
			zap.String("requestId", c.GetString(ContextRequestID)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case status >= 500:
			utils.Zlog.Error("Request completed", fields...)
		case status >= 400:
			utils.Zlog.Warn("Request completed", fields...)
		default:
			utils.Zlog.Info("Request completed", fields...)
		}
	}
}

// Recovery turns panics into 500 responses and logs them.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		utils.Zlog.Error("Panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("requestId", c.GetString(ContextRequestID)))
		utils.RespondError(c, &utils.APIError{Status: http.StatusInternalServerError, Code: "Internal Server Error", Message: "panic"})
	})
}

// CORS allows the configured origins. "*" allows any origin.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := slices.Contains(allowedOrigins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || slices.Contains(allowedOrigins, origin)) {
			if allowAll {
				c.Header("Access-Control-Allow-Origin", "*")
			} else {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, "+HeaderRequestID)
			c.Header("Access-Control-Expose-Headers", HeaderRequestID)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", true
	}
	return strings.TrimSpace(token), true
}

func authenticate(c *gin.Context, tm *TokenManager, required bool) {
	token, present := bearerToken(c)
	if !present {
		if required {
			utils.RespondError(c, utils.Unauthorized("missing bearer token"))
			return
		}
		c.Next()
		return
	}

	claims, err := tm.Parse(token)
	if err != nil {
		utils.RespondError(c, utils.Unauthorized("invalid or expired token"))
		return
	}
	userID, _ := claims.UserID()
	c.Set(ContextUserID, userID)
	c.Set(ContextUsername, claims.Username)
	c.Next()
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) { authenticate(c, tm, true) }
}

// OptionalAuth identifies the caller when a token is sent. A token that is
// sent but invalid is still rejected.
func OptionalAuth(tm *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) { authenticate(c, tm, false) }
}

// CurrentUserID returns the authenticated user, or uuid.Nil.
func CurrentUserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
