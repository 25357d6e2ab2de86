package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prepstack/exam-service/internal/services"
	"github.com/prepstack/exam-service/internal/utils"
)

type HandlerManager struct {
	testHandler     *TestHandler
	resultHandler   *ResultHandler
	questionHandler *QuestionHandler
}

func NewHandlerManager(
	testService services.TestService,
	resultService services.ResultService,
	questionService services.QuestionService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		testHandler:     NewTestHandler(testService, logger),
		resultHandler:   NewResultHandler(resultService, logger),
		questionHandler: NewQuestionHandler(questionService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/available", hm.testHandler.ListAvailableTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", hm.testHandler.UpdateTest)
			tests.DELETE("/:id", hm.testHandler.DeleteTest)
		}

		results := v1.Group("/results")
		{
			results.POST("/submit", hm.resultHandler.SubmitTest)
			results.GET("/test/:test_id/student/:student_id", hm.resultHandler.GetTestResult)
			results.GET("/test/:test_id/leaderboard", hm.resultHandler.GetLeaderboard)
			results.GET("/student/:student_id", hm.resultHandler.GetStudentResults)
		}

		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/:uid", hm.questionHandler.GetQuestion)
		}
	}
}
