package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewOKResp returns a new OK response with the given data.
func NewOKResp(data any) Resp {
	return Resp{
		ErrorCode: 0,
		Message:   MessageSuccess,
		Data:      data,
	}
}

// OK sends 200 JSON with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, NewOKResp(data))
}

// Error sends a 400 response with the error message.
func Error(c *gin.Context, err error, data map[string]interface{}) {
	if data == nil {
		data = make(map[string]interface{})
	}

	c.JSON(http.StatusBadRequest, Resp{
		ErrorCode: BadRequestErrorCode,
		Message:   err.Error(),
		Data:      data,
	})
}

// Reject sends status with a {"error": msg} body.
func Reject(c *gin.Context, status int, msg string) {
	c.JSON(status, Rejection{Error: msg})
}

// Unauthorized sends 401 for a failed signature check.
func Unauthorized(c *gin.Context) {
	Reject(c, http.StatusUnauthorized, "invalid signature")
}

// TooManyRequests sends 429.
func TooManyRequests(c *gin.Context) {
	Reject(c, http.StatusTooManyRequests, "rate limit exceeded")
}

// Forbidden sends 403 for a source outside the allow-list.
func Forbidden(c *gin.Context) {
	Reject(c, http.StatusForbidden, "address not allowed")
}
