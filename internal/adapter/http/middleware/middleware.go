package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"field-capture-gateway/internal/core/ports"
	"field-capture-gateway/pkg/apperror"
	"field-capture-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	// Header names for HMAC authentication
	HeaderAPIKey    = "X-API-Key"
	HeaderSignature = "X-Signature"
	HeaderTimestamp = "X-Timestamp"

	// Context keys
	CtxOperator = "operator"
)

// HMACAuth verifies signed capture requests.
// Pipeline: resolve API key -> check timestamp freshness -> verify
// signature over body||timestamp. Every rejection returns the same
// generic 401 body; the failing check is only distinguishable in the
// server log.
func HMACAuth(
	registry ports.CredentialRegistry,
	sigSvc ports.SignatureService,
	freshnessWindow time.Duration,
	log zerolog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderAPIKey)
		signature := c.GetHeader(HeaderSignature)
		timestampStr := c.GetHeader(HeaderTimestamp)

		if apiKey == "" || signature == "" || timestampStr == "" {
			log.Warn().Str("path", c.Request.URL.Path).Msg("auth: missing credential headers")
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}

		// Step 1: API key lookup
		secret, ok := registry.SecretFor(apiKey)
		if !ok {
			log.Warn().Str("path", c.Request.URL.Path).Msg("auth: unknown api key")
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}

		// Step 2: Timestamp freshness (millisecond precision, symmetric
		// window so moderate clock skew in either direction is tolerated)
		timestamp, err := strconv.ParseInt(timestampStr, 10, 64)
		if err != nil {
			log.Warn().Str("path", c.Request.URL.Path).Msg("auth: unparseable timestamp")
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}
		drift := time.Now().UnixMilli() - timestamp
		if drift < 0 {
			drift = -drift
		}
		if drift > freshnessWindow.Milliseconds() {
			log.Warn().
				Str("path", c.Request.URL.Path).
				Int64("drift_ms", drift).
				Msg("auth: timestamp outside freshness window")
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}

		// Step 3: Signature verification
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if !sigSvc.Verify(secret, bodyBytes, timestamp, signature) {
			log.Warn().Str("path", c.Request.URL.Path).Msg("auth: signature mismatch")
			response.Error(c, apperror.ErrUnauthenticated())
			c.Abort()
			return
		}

		c.Next()
	}
}

// JWTAuth validates admin session tokens.
func JWTAuth(tokenSvc ports.TokenService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		tokenStr := authHeader[7:]
		claims, err := tokenSvc.Validate(tokenStr)
		if err != nil {
			log.Debug().Err(err).Msg("auth: token rejected")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxOperator, claims.Subject)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error_code": "SYS_000",
					"message":    "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// MaxBodySize returns middleware that limits the request body size.
// Once the limit is exceeded the reader returns an error and the
// request is rejected with 413 Payload Too Large.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
