package response

import "github.com/gin-gonic/gin"

// ErrorBody is the envelope written by Error, kept for API docs.
type ErrorBody struct {
	Success bool        `json:"success" example:"false"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code" example:"BAD_REQUEST"`
	Message string `json:"message" example:"payments are not available for country \"BR\""`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.AbortWithStatusJSON(statusCode, ErrorBody{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}
