package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type RateLimitResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors"`
}

func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

func Error(c *gin.Context, statusCode int, err, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

func ValidationErrors(c *gin.Context, errors []ValidationError) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Success: false,
		Message: "Validation failed",
		Errors:  errors,
	})
}

func BadRequest(c *gin.Context, err, message string) {
	Error(c, http.StatusBadRequest, err, message)
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized", "")
}

// TooManyRequests writes a 429 with a Retry-After header in whole seconds.
func TooManyRequests(c *gin.Context, message string, retryAfter int) {
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.JSON(http.StatusTooManyRequests, RateLimitResponse{
		Error:      "Rate limit exceeded",
		Message:    message,
		RetryAfter: retryAfter,
	})
}

func ServiceUnavailable(c *gin.Context, data interface{}) {
	JSON(c, http.StatusServiceUnavailable, data)
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, "Internal server error", message)
}
