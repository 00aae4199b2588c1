package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Resource string `json:"resource,omitempty"`
}

// detailer is implemented by wrapped causes that name the offending resource.
type detailer interface {
	Detail() string
}

// Error sends a JSON error response.
// It checks if the error is an AppError to determine the status code.
// Anything else is logged and reported as 500 Internal Server Error.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp := ErrorResponse{Error: appErr.Message, Code: string(appErr.Kind)}
		var d detailer
		if errors.As(err, &d) {
			resp.Resource = d.Detail()
		}
		c.JSON(appErr.Code, resp)
		return
	}

	zap.L().Error("unhandled error",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// BadRequest reports a request that failed binding or validation.
func BadRequest(c *gin.Context, message string, err error) {
	body := gin.H{"error": message, "code": string(apperror.KindValidation)}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}
