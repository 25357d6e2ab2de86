package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/exam-service/internal/services"
	"github.com/prepstack/exam-service/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and error mapping for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"remote_addr", c.ClientIP(),
		"request_id", c.GetHeader("X-Request-ID"),
	}
	fields = append(fields, additionalFields...)
	h.logger.Info(message, fields...)
}

// LogError logs error details with context information
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)
	h.logger.LogError(err, message, fields...)
}

// handleServiceError maps service errors onto HTTP responses. Typed errors
// carry the detail the client needs (window times, prior submission,
// missing question UIDs); sentinels map to plain statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var windowErr *services.SubmissionWindowError
	if errors.As(err, &windowErr) {
		status := http.StatusForbidden
		message := "Test has not started yet"
		if errors.Is(err, services.ErrTestEnded) {
			status = http.StatusGone
			message = "Test has ended"
		}
		c.JSON(status, ErrorResponse{
			Message: message,
			Details: windowErr,
		})
		return
	}

	var dupErr *services.DuplicateSubmissionError
	if errors.As(err, &dupErr) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Test already submitted",
			Details: dupErr,
		})
		return
	}

	var unknownQuestions *services.UnknownQuestionsError
	if errors.As(err, &unknownQuestions) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Some questions not found or inactive",
			Details: unknownQuestions,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTestNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Test not found"})
	case errors.Is(err, services.ErrResultNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Result not found"})
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Question not found"})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "User not found"})
	case errors.Is(err, services.ErrInvalidTimeWindow):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "End time must be after start time"})
	case errors.Is(err, services.ErrAnswerCountMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer count does not match question count",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrAlreadySubmitted):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Test already submitted"})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "Resource conflict", Details: err.Error()})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Validation failed", Details: err.Error()})
	case errors.Is(err, services.ErrIncompleteQuestionSet):
		// Integrity failure between tests and the question store.
		h.LogError(c, err, "Question snapshot incomplete")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Test questions could not be loaded",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
