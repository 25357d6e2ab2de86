package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/exam-service/internal/repositories"
	"github.com/prepstack/exam-service/internal/services"
	"github.com/prepstack/exam-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// CreateQuestion creates a new bilingual question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating question")

	creatorID := parseCreatorID(c)
	question, err := h.questionService.Create(c.Request.Context(), &req, creatorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// GetQuestion retrieves a question by its UID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	uid := parseStringParam(c, "uid")
	if uid == "" {
		return
	}

	question, err := h.questionService.GetByUID(c.Request.Context(), uid)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions lists questions with optional filters
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	size := parseIntQuery(c, "size", 20)
	filters := repositories.QuestionFilters{
		Limit:     size,
		Offset:    (parseIntQuery(c, "page", 1) - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			filters.IsActive = &active
		}
	}

	questions, total, err := h.questionService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questions": questions, "total": total})
}
