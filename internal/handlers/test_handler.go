package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/exam-service/internal/repositories"
	"github.com/prepstack/exam-service/internal/services"
	"github.com/prepstack/exam-service/internal/utils"
)

type TestHandler struct {
	BaseHandler
	testService services.TestService
}

func NewTestHandler(testService services.TestService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler: NewBaseHandler(logger),
		testService: testService,
	}
}

// CreateTest creates a new timed test referencing question UIDs
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req services.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating test", "title", req.Title)

	creatorID := parseCreatorID(c)
	test, err := h.testService.Create(c.Request.Context(), &req, creatorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest returns a test definition by ID
func (h *TestHandler) GetTest(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}

	test, err := h.testService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// UpdateTest applies a partial update to a test definition
func (h *TestHandler) UpdateTest(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating test", "test_id", id)

	test, err := h.testService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest hard-deletes a test and all of its results
func (h *TestHandler) DeleteTest(c *gin.Context) {
	id := parseUintParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting test", "test_id", id)

	if err := h.testService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Test deleted"})
}

// ListTests lists tests with optional filters
func (h *TestHandler) ListTests(c *gin.Context) {
	filters := repositories.TestFilters{
		Limit:     parseIntQuery(c, "size", 20),
		Offset:    (parseIntQuery(c, "page", 1) - 1) * parseIntQuery(c, "size", 20),
		SortBy:    c.DefaultQuery("sort_by", "start_time"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
	}
	if activeStr := c.Query("is_active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			filters.IsActive = &active
		}
	}

	tests, total, err := h.testService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tests": tests, "total": total})
}

// ListAvailableTests returns active tests whose window has not yet closed
func (h *TestHandler) ListAvailableTests(c *gin.Context) {
	tests, err := h.testService.ListAvailable(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// parseCreatorID reads the authenticated creator from the upstream gateway
// header. Authentication itself is the gateway's concern.
func parseCreatorID(c *gin.Context) uint {
	idStr := c.GetHeader("X-User-ID")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
