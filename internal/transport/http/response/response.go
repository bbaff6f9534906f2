package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeBadRequest         = 40000
	CodeFileTypeNotAllowed = 40001
	CodeEmailExists        = 40002
	CodeFileTooLarge       = 40003
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeAccessDenied       = 40300
	CodeNotFound           = 40400
	CodeAssignmentNotFound = 40401
	CodeAnalysisNotFound   = 40402
	CodeInternalServer     = 50000
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// OK writes a bare JSON body; success payloads are not wrapped.
func OK(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetail exposes the underlying cause. Only internal endpoints use it.
func ErrorWithDetail(c *gin.Context, httpStatus, code int, message, detail string) {
	c.JSON(httpStatus, ErrorBody{
		Code:    code,
		Message: message,
		Detail:  detail,
	})
}
