package response

import (
	"github.com/gin-gonic/gin"
)

// RespondOK renders payload with "success": true folded in. Payload keys named
// "success" are overwritten.
func RespondOK(c *gin.Context, status int, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(status, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   msg,
		"code":    code,
	})
}
