package httperr

import (
	"github.com/gin-gonic/gin"
)

// Response is the error body every endpoint returns: {"error": "...", "details": ...}.
type Response struct {
	Status  int    `json:"-"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, details any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Error: msg, Details: details}

	_ = c.Error(&gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
