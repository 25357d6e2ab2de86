package services

import (
	"context"
	"time"

	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

type TestService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID uint) (*models.Test, error)
	GetByID(ctx context.Context, id uint) (*models.Test, error)
	Update(ctx context.Context, id uint, req *UpdateTestRequest) (*models.Test, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error)
	ListAvailable(ctx context.Context) ([]*models.Test, error)
}

type ResultService interface {
	SubmitTest(ctx context.Context, req *SubmitTestRequest) (*SubmitTestResponse, error)
	GetTestResultWithRank(ctx context.Context, testID, studentID uint) (*ResultWithRank, error)
	GetTestLeaderboard(ctx context.Context, testID uint) (*Leaderboard, error)
	GetStudentResults(ctx context.Context, studentID uint) ([]*ResultWithRank, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID uint) (*models.Question, error)
	GetByUID(ctx context.Context, uid string) (*models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
}

// ===== REQUEST STRUCTURES =====

type CreateTestRequest struct {
	Title            string    `json:"title" validate:"required,min=1,max=200"`
	Description      *string   `json:"description" validate:"omitempty,max=1000"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	EndTime          time.Time `json:"end_time" validate:"required"`
	Duration         int       `json:"duration" validate:"required,min=1"`
	MarksPerQuestion float64   `json:"marks_per_question" validate:"min=0"`
	NegativeMarks    float64   `json:"negative_marks" validate:"min=0"`
	QuestionUIDs     []string  `json:"question_uids" validate:"required,min=1,dive,required"`
	VideoLink        string    `json:"video_link"`
	IntroPage        string    `json:"intro_page"`
}

// UpdateTestRequest applies a partial update. A supplied start or end time is
// validated against the stored counterpart when the other side is absent; an
// update that would invalidate the window leaves the test unchanged.
type UpdateTestRequest struct {
	Title            *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string    `json:"description" validate:"omitempty,max=1000"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	Duration         *int       `json:"duration" validate:"omitempty,min=1"`
	MarksPerQuestion *float64   `json:"marks_per_question" validate:"omitempty,min=0"`
	NegativeMarks    *float64   `json:"negative_marks" validate:"omitempty,min=0"`
	QuestionUIDs     []string   `json:"question_uids" validate:"omitempty,min=1,dive,required"`
	VideoLink        *string    `json:"video_link"`
	IntroPage        *string    `json:"intro_page"`
	IsActive         *bool      `json:"is_active"`
}

type SubmitTestRequest struct {
	TestID           uint          `json:"test_id" validate:"required"`
	StudentID        uint          `json:"student_id" validate:"required"`
	Answers          []AnswerInput `json:"answers" validate:"required,dive"`
	TimeTakenSeconds int           `json:"time_taken_seconds" validate:"min=0"`
}

type CreateQuestionRequest struct {
	UID           string                 `json:"uid" validate:"omitempty,uuid"`
	Prompt        models.BilingualText   `json:"prompt" validate:"bilingual_text"`
	Explanation   models.BilingualText   `json:"explanation"`
	Options       []models.BilingualText `json:"options" validate:"option_list"`
	CorrectAnswer int                    `json:"correct_answer" validate:"min=0,max=3"`
}

// ===== RESPONSE STRUCTURES =====

type SubmitTestResponse struct {
	ResultID    uint                 `json:"result_id"`
	TestID      uint                 `json:"test_id"`
	Score       float64              `json:"score"`
	TotalMarks  float64              `json:"total_marks"`
	Percentage  float64              `json:"percentage"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Summary     models.ResultSummary `json:"summary"`
}

// ResultWithRank is a stored result annotated with the student's position in
// the test's total order at read time. Ranks are recomputed per read, never
// persisted.
type ResultWithRank struct {
	Result        *models.Result `json:"result"`
	TestTitle     string         `json:"test_title,omitempty"`
	Rank          int            `json:"rank"`
	TotalStudents int            `json:"total_students"`
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	StudentID   uint      `json:"student_id"`
	StudentName string    `json:"student_name,omitempty"`
	Score       float64   `json:"score"`
	Percentage  float64   `json:"percentage"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type Leaderboard struct {
	TestID        uint               `json:"test_id"`
	TotalStudents int                `json:"total_students"`
	Entries       []LeaderboardEntry `json:"entries"`
}
