package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OptionCount is the fixed option cardinality for multiple-choice questions.
// Selected options are indices in [0, OptionCount-1]; UnattemptedOption marks
// a question the student skipped.
const (
	OptionCount       = 4
	UnattemptedOption = -1
)

// Question is an immutable content unit. Tests reference questions by UID, a
// stable identifier independent of the storage key, so a test definition
// survives question re-indexing. Results freeze the correct answer at grading
// time; editing a question never rewrites an already-graded result.
type Question struct {
	ID            uint                                  `json:"id" gorm:"primaryKey"`
	UID           string                                `json:"uid" gorm:"uniqueIndex;size:36;not null"`
	Prompt        datatypes.JSONType[BilingualText]     `json:"prompt" gorm:"not null"`
	Explanation   datatypes.JSONType[BilingualText]     `json:"explanation"`
	Options       datatypes.JSONSlice[BilingualText]    `json:"options" gorm:"not null"`
	CorrectAnswer int                                   `json:"correct_answer" gorm:"not null" validate:"min=0,max=3"`
	IsActive      bool                                  `json:"is_active" gorm:"default:true;index"`
	CreatedBy     uint                                  `json:"created_by" gorm:"index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// BeforeCreate assigns a UID when the caller did not supply one.
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.UID == "" {
		q.UID = uuid.NewString()
	}
	return nil
}
