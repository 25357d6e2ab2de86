package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestStatus string

const (
	TestUpcoming  TestStatus = "Upcoming"
	TestActive    TestStatus = "Active"
	TestCompleted TestStatus = "Completed"
)

// Test is a timed multiple-choice assessment. QuestionUIDs is an ordered list:
// position i of a submitted answer sheet corresponds to QuestionUIDs[i].
//
// EndTime is stored explicitly and is the authoritative close of the
// submission window. Duration is informational (display only) and is never
// used to derive the window.
type Test struct {
	ID               uint                        `json:"id" gorm:"primaryKey"`
	Title            string                      `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description      *string                     `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	StartTime        time.Time                   `json:"start_time" gorm:"not null;index" validate:"required"`
	EndTime          time.Time                   `json:"end_time" gorm:"not null;index" validate:"required"`
	Duration         int                         `json:"duration" gorm:"not null" validate:"required,min=1"` // minutes
	MarksPerQuestion float64                     `json:"marks_per_question" gorm:"default:1" validate:"min=0"`
	NegativeMarks    float64                     `json:"negative_marks" gorm:"default:0" validate:"min=0"`
	QuestionUIDs     datatypes.JSONSlice[string] `json:"question_uids" gorm:"not null" validate:"required,min=1,dive,required"`
	VideoLink        string                      `json:"video_link" gorm:"size:500"`
	IntroPage        string                      `json:"intro_page" gorm:"type:text"`
	IsActive         bool                        `json:"is_active" gorm:"default:true;index"`
	CreatedBy        uint                        `json:"created_by" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Derived, not stored
	Results []Result `json:"-" gorm:"foreignKey:TestID"`
}

func (Test) TableName() string {
	return "tests"
}

// QuestionCount returns the number of questions on the paper.
func (t *Test) QuestionCount() int {
	return len(t.QuestionUIDs)
}

// TotalMarks is derived: question count times marks per question. Negative
// marking never changes the maximum.
func (t *Test) TotalMarks() float64 {
	return float64(len(t.QuestionUIDs)) * t.MarksPerQuestion
}

// Status classifies the test relative to its submission window.
func (t *Test) Status(now time.Time) TestStatus {
	switch {
	case now.Before(t.StartTime):
		return TestUpcoming
	case !now.After(t.EndTime):
		return TestActive
	default:
		return TestCompleted
	}
}

// WindowOpen reports whether a submission at now is inside [StartTime, EndTime].
// Both boundaries are inclusive.
func (t *Test) WindowOpen(now time.Time) bool {
	return !now.Before(t.StartTime) && !now.After(t.EndTime)
}
