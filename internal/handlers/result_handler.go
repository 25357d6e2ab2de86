package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/exam-service/internal/services"
	"github.com/prepstack/exam-service/internal/utils"
)

type ResultHandler struct {
	BaseHandler
	resultService services.ResultService
}

func NewResultHandler(resultService services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler:   NewBaseHandler(logger),
		resultService: resultService,
	}
}

// SubmitTest grades and persists a student's answer sheet
func (h *ResultHandler) SubmitTest(c *gin.Context) {
	var req services.SubmitTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting test",
		"test_id", req.TestID,
		"student_id", req.StudentID,
		"answers_count", len(req.Answers))

	response, err := h.resultService.SubmitTest(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetTestResult returns one student's graded result with their rank
func (h *ResultHandler) GetTestResult(c *gin.Context) {
	testID := parseUintParam(c, "test_id")
	if testID == 0 {
		return
	}
	studentID := parseUintParam(c, "student_id")
	if studentID == 0 {
		return
	}

	result, err := h.resultService.GetTestResultWithRank(c.Request.Context(), testID, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetLeaderboard returns the ranked results for a test
func (h *ResultHandler) GetLeaderboard(c *gin.Context) {
	testID := parseUintParam(c, "test_id")
	if testID == 0 {
		return
	}

	board, err := h.resultService.GetTestLeaderboard(c.Request.Context(), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// GetStudentResults returns all of a student's results, ranked per test
func (h *ResultHandler) GetStudentResults(c *gin.Context) {
	studentID := parseUintParam(c, "student_id")
	if studentID == 0 {
		return
	}

	results, err := h.resultService.GetStudentResults(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
