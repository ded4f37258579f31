package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func NewValidationError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func NewDuplicateError(message string) *AppError {
	return NewAppError(http.StatusConflict, "DUPLICATE", message)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, "NOT_FOUND", message)
}

func NewAuthError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

func NewInternalError() *AppError {
	return NewAppError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// RespondError is the single place an error becomes a status code and JSON
// body. Anything that is not an AppError is downgraded to a generic 500 so no
// internals reach the client.
func RespondError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError()
	}

	c.JSON(appErr.Status, ErrorResponse{
		Success: false,
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

func RespondOK(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusOK, envelope(message, payload))
}

func RespondCreated(c *gin.Context, message string, payload gin.H) {
	c.JSON(http.StatusCreated, envelope(message, payload))
}

func envelope(message string, payload gin.H) gin.H {
	body := gin.H{"success": true, "message": message}
	for key, value := range payload {
		body[key] = value
	}
	return body
}
