package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/prepstack/exam-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Test specific errors
	ErrTestNotFound      = errors.New("test not found")
	ErrTestNotStarted    = errors.New("test has not started yet")
	ErrTestEnded         = errors.New("test has ended")
	ErrInvalidTimeWindow = errors.New("end time must be after start time")

	// Submission specific errors
	ErrAlreadySubmitted    = errors.New("test already submitted")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")

	// Result specific errors
	ErrResultNotFound = errors.New("result not found")

	// Question / integrity errors
	ErrQuestionNotFound = errors.New("question not found")

	// ErrIncompleteQuestionSet means a test references a question UID the
	// snapshot store could not resolve. That is data corruption between tests
	// and questions, not user error: fatal to the operation, logged loudly.
	ErrIncompleteQuestionSet = errors.New("question snapshot is incomplete")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// SubmissionWindowError reports a timing rejection with enough detail for the
// client to explain it (current time vs. window) without touching anyone
// else's data.
type SubmissionWindowError struct {
	Now       time.Time `json:"now"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Err       error     `json:"-"`
}

func (e *SubmissionWindowError) Error() string {
	return fmt.Sprintf("%v: window [%s, %s], submitted at %s",
		e.Err,
		e.StartTime.Format(time.RFC3339),
		e.EndTime.Format(time.RFC3339),
		e.Now.Format(time.RFC3339))
}

func (e *SubmissionWindowError) Unwrap() error { return e.Err }

// DuplicateSubmissionError carries the prior submission's timestamp so the
// client can show when the student already submitted.
type DuplicateSubmissionError struct {
	TestID      uint      `json:"test_id"`
	StudentID   uint      `json:"student_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("test %d already submitted by student %d at %s",
		e.TestID, e.StudentID, e.SubmittedAt.Format(time.RFC3339))
}

func (e *DuplicateSubmissionError) Unwrap() error { return ErrAlreadySubmitted }

// UnknownQuestionsError lists the UIDs a test definition references that do
// not resolve to active questions.
type UnknownQuestionsError struct {
	MissingUIDs []string `json:"missing_uids"`
}

func (e *UnknownQuestionsError) Error() string {
	return fmt.Sprintf("questions not found or inactive: %s", strings.Join(e.MissingUIDs, ", "))
}

func (e *UnknownQuestionsError) Unwrap() error { return ErrQuestionNotFound }

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrTestNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrAnswerCountMismatch) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadySubmitted)
}

// IsIntegrity checks if error indicates corruption between test definitions
// and the question store.
func IsIntegrity(err error) bool {
	var uq *UnknownQuestionsError
	return errors.Is(err, ErrIncompleteQuestionSet) || errors.As(err, &uq)
}
