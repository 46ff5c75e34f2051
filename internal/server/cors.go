package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS header values sent on every response.
const (
	corsAllowOrigin      = "*"
	corsAllowCredentials = "true"
	corsAllowMethods     = "GET,OPTIONS,PATCH,DELETE,POST,PUT"
	corsAllowHeaders     = "X-CSRF-Token, X-Requested-With, Accept, Accept-Version, Content-Length, Content-MD5, Content-Type, Date, X-Api-Version"
)

// CORS sets the CORS headers and answers every OPTIONS preflight with an empty 200.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", corsAllowOrigin)
		h.Set("Access-Control-Allow-Credentials", corsAllowCredentials)
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
