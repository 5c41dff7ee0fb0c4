package middleware

import (
	"strings"

	"field-capture-gateway/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Path prefixes that only vulnerability scanners ask for. They get the
// same bare 404 an unrouted path would, so probing reveals nothing
// about the deployment.
var probedPrefixes = []string{
	"/.env",
	"/.git",
	"/.aws",
	"/.ssh",
	"/wp-admin",
	"/wp-login",
	"/phpmyadmin",
	"/config.json",
	"/server-status",
}

// PathGuard short-circuits known scanner probes before any auth
// middleware runs, keeping them out of the 401 path.
func PathGuard(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := strings.ToLower(c.Request.URL.Path)
		for _, prefix := range probedPrefixes {
			if strings.HasPrefix(path, prefix) {
				log.Warn().
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Msg("scanner probe blocked")
				response.NotFound(c)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
