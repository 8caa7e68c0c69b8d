package common

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON envelope for failed requests
type ErrorBody struct {
	Error string `json:"error"`
}

// ErrorResponse writes a JSON error envelope
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}
