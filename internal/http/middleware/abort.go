package middleware

import "github.com/gin-gonic/gin"

// abort stops the chain with the service's JSON error envelope. Handlers use
// handlers.Fail; middleware cannot import that package, so the shape is
// repeated here.
func abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"request_id": RequestIDFrom(c),
		"code":       code,
		"message":    msg,
	})
}
