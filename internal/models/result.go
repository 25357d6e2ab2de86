package models

import (
	"time"

	"gorm.io/datatypes"
)

// ResultAnswer is the per-question outcome of a graded submission. The correct
// answer is copied from the question at grading time so a later edit to the
// question cannot change an existing result.
type ResultAnswer struct {
	QuestionUID    string  `json:"question_uid"`
	QuestionIndex  int     `json:"question_index"`
	SelectedOption int     `json:"selected_option"`
	IsAttempted    bool    `json:"is_attempted"`
	IsCorrect      bool    `json:"is_correct"`
	CorrectAnswer  int     `json:"correct_answer"`
	MarksObtained  float64 `json:"marks_obtained"`
}

// ResultSummary freezes the scoring parameters and attempt counts as graded.
type ResultSummary struct {
	TotalQuestions   int     `json:"total_questions"`
	CorrectAnswers   int     `json:"correct_answers"`
	WrongAnswers     int     `json:"wrong_answers"`
	Unattempted      int     `json:"unattempted"`
	MarksPerQuestion float64 `json:"marks_per_question"`
	NegativeMarks    float64 `json:"negative_marks"`
}

// Result is a write-once graded submission. The composite unique index on
// (test_id, student_id) is the final authority for at-most-one submission per
// student per test: when two submissions race, the storage layer rejects the
// loser and the service reports it as already submitted.
type Result struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	TestID    uint `json:"test_id" gorm:"not null;uniqueIndex:idx_results_test_student"`
	StudentID uint `json:"student_id" gorm:"not null;uniqueIndex:idx_results_test_student"`

	Answers     datatypes.JSONSlice[ResultAnswer] `json:"answers" gorm:"not null"`
	Score       float64                           `json:"score" gorm:"not null"`
	TotalMarks  float64                           `json:"total_marks" gorm:"not null"`
	Percentage  float64                           `json:"percentage" gorm:"not null"`
	TimeTaken   int                               `json:"time_taken" gorm:"not null"` // seconds
	SubmittedAt time.Time                         `json:"submitted_at" gorm:"not null;index"`
	Summary     datatypes.JSONType[ResultSummary] `json:"summary"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Test    Test `json:"-" gorm:"foreignKey:TestID"`
	Student User `json:"-" gorm:"foreignKey:StudentID"`
}

func (Result) TableName() string {
	return "results"
}
