package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable error codes exposed to clients.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeForbidden            = "FORBIDDEN"
	CodeNotFound             = "NOT_FOUND"
	CodePreconditionFailed   = "PRECONDITION_FAILED"
	CodePreconditionRequired = "PRECONDITION_REQUIRED"
	CodeInternal             = "INTERNAL"
)

// RequestIDKey is the gin context key holding the per-request correlation id.
const RequestIDKey = "request_id"

type Body struct {
	Code           string `json:"code"`
	Message        string `json:"message"`
	TraceID        string `json:"traceId,omitempty"`
	CurrentVersion *int64 `json:"currentVersion,omitempty"`
	Details        any    `json:"details,omitempty"`
}

type Response struct {
	Status int  `json:"-"`
	Error  Body `json:"error"`
}

func New(c *gin.Context, status int, code, msg string) Response {
	return Response{
		Status: status,
		Error: Body{
			Code:    code,
			Message: msg,
			TraceID: TraceID(c),
		},
	}
}

// AbortWithError preserves err on the gin context for the logging middleware
// and writes the envelope.
func AbortWithError(c *gin.Context, status int, code string, err error, msg string, details any) {
	resp := New(c, status, code, msg)
	resp.Error.Details = details
	Abort(c, err, resp)
}

// AbortPreconditionFailed echoes the current version so the client can retry
// without another GET.
func AbortPreconditionFailed(c *gin.Context, err error, current int64) {
	resp := New(c, http.StatusPreconditionFailed, CodePreconditionFailed, "The booking was modified by another request; retry with the current version")
	resp.Error.CurrentVersion = &current
	Abort(c, err, resp)
}

func Abort(c *gin.Context, err error, resp Response) {
	if err == nil {
		panic("httperr.Abort: err cannot be nil")
	}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(resp.Status, resp)
}

func TraceID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
