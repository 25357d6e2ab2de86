package services

import (
	"fmt"
	"math"
	"time"

	"github.com/prepstack/exam-service/internal/models"
	"gorm.io/datatypes"
)

// AnswerInput is one entry of a submitted answer sheet. Position in the slice
// corresponds to the test's question order; SelectedOption is -1 for an
// unattempted question.
type AnswerInput struct {
	QuestionUID    string `json:"question_uid"`
	SelectedOption int    `json:"selected_option" validate:"selected_option"`
}

// GradeTest evaluates an ordered answer sheet against the test's question
// snapshot and returns an unsaved Result. Pure computation: persistence and
// duplicate checks are the caller's job.
//
// Per question: attempted iff the selected option is a valid index in
// [0, OptionCount). Correct answers earn +MarksPerQuestion, wrong answers
// earn -NegativeMarks, unattempted earn 0. The aggregate score is clamped to
// a minimum of 0; individual question penalties are not. Total marks stay
// questionCount x MarksPerQuestion regardless of negative marking.
func GradeTest(test *models.Test, questions map[string]*models.Question, answers []AnswerInput, timeTakenSeconds int, submittedAt time.Time) (*models.Result, error) {
	if len(answers) != len(test.QuestionUIDs) {
		return nil, fmt.Errorf("%w: expected %d answers, got %d",
			ErrAnswerCountMismatch, len(test.QuestionUIDs), len(answers))
	}

	var (
		score       float64
		correct     int
		wrong       int
		unattempted int
	)

	evaluated := make([]models.ResultAnswer, len(test.QuestionUIDs))
	for i, uid := range test.QuestionUIDs {
		question, ok := questions[uid]
		if !ok {
			return nil, fmt.Errorf("%w: question %s", ErrIncompleteQuestionSet, uid)
		}

		selected := answers[i].SelectedOption
		attempted := selected >= 0 && selected < models.OptionCount
		isCorrect := attempted && selected == question.CorrectAnswer

		var marks float64
		switch {
		case isCorrect:
			marks = test.MarksPerQuestion
			correct++
		case attempted:
			marks = -test.NegativeMarks
			wrong++
		default:
			unattempted++
		}

		// Accumulate unrounded; rounding happens only at the edges.
		score += marks

		evaluated[i] = models.ResultAnswer{
			QuestionUID:    uid,
			QuestionIndex:  i,
			SelectedOption: selected,
			IsAttempted:    attempted,
			IsCorrect:      isCorrect,
			CorrectAnswer:  question.CorrectAnswer,
			MarksObtained:  round2(marks),
		}
	}

	// A test-wide negative total floors at zero.
	score = math.Max(0, score)
	score = round2(score)

	totalMarks := test.TotalMarks()
	percentage := 0.0
	if totalMarks > 0 {
		percentage = round2(score / totalMarks * 100)
	}

	return &models.Result{
		TestID:      test.ID,
		Answers:     evaluated,
		Score:       score,
		TotalMarks:  totalMarks,
		Percentage:  percentage,
		TimeTaken:   timeTakenSeconds,
		SubmittedAt: submittedAt,
		Summary: datatypes.NewJSONType(models.ResultSummary{
			TotalQuestions:   len(test.QuestionUIDs),
			CorrectAnswers:   correct,
			WrongAnswers:     wrong,
			Unattempted:      unattempted,
			MarksPerQuestion: round2(test.MarksPerQuestion),
			NegativeMarks:    round2(test.NegativeMarks),
		}),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
