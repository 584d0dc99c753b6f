package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rishi7822/Finalproject/pkg/errno"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error returns an error response
func Error(c *gin.Context, err error) {
	ErrorWithData(c, err, nil)
}

// ErrorWithData returns an error response that still carries data, e.g. the
// session view after a failed transfer.
func ErrorWithData(c *gin.Context, err error, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	code, msg := errno.Decode(err)
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: msg,
		Data:    data,
	})
}

// TooManyRequests is the rejection handler for the rate limiter.
func TooManyRequests(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, Response{
		Code:    errno.ErrTooManyRequests.Code,
		Message: errno.ErrTooManyRequests.Message,
		Data:    gin.H{},
	})
}
