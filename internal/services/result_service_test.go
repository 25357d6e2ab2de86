package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prepstack/exam-service/internal/events"
	"github.com/prepstack/exam-service/internal/models"
	"github.com/prepstack/exam-service/internal/repositories"
	"github.com/prepstack/exam-service/internal/utils"
	"github.com/prepstack/exam-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ===== MOCKS =====

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByUID(ctx context.Context, uid string) (*models.Question, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetActiveByUIDs(ctx context.Context, uids []string) (map[string]*models.Question, error) {
	args := m.Called(ctx, uids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) Create(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) GetByID(ctx context.Context, id uint) (*models.Test, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Test), args.Error(1)
}

func (m *MockTestRepository) Update(ctx context.Context, test *models.Test) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *MockTestRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTestRepository) List(ctx context.Context, filters repositories.TestFilters) ([]*models.Test, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Test), args.Get(1).(int64), args.Error(2)
}

func (m *MockTestRepository) ListAvailable(ctx context.Context, now time.Time) ([]*models.Test, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Test), args.Error(1)
}

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) InsertIfAbsent(ctx context.Context, result *models.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByTestAndStudent(ctx context.Context, testID, studentID uint) (*models.Result, error) {
	args := m.Called(ctx, testID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Result), args.Error(1)
}

func (m *MockResultRepository) ListByTest(ctx context.Context, testID uint) ([]*models.Result, error) {
	args := m.Called(ctx, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Result), args.Error(1)
}

func (m *MockResultRepository) ListByStudent(ctx context.Context, studentID uint) ([]*models.Result, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Result), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockRepository struct {
	questionRepo *MockQuestionRepository
	testRepo     *MockTestRepository
	resultRepo   *MockResultRepository
	userRepo     *MockUserRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		questionRepo: &MockQuestionRepository{},
		testRepo:     &MockTestRepository{},
		resultRepo:   &MockResultRepository{},
		userRepo:     &MockUserRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository { return m.questionRepo }
func (m *MockRepository) Test() repositories.TestRepository         { return m.testRepo }
func (m *MockRepository) Result() repositories.ResultRepository     { return m.resultRepo }
func (m *MockRepository) User() repositories.UserRepository         { return m.userRepo }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockRepository) Ping(ctx context.Context) error { return nil }

// memoryCache is a map-backed CacheService for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = nil
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("cache miss")
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// fixedClock pins Now for deterministic window checks.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// ===== FIXTURES =====

var (
	windowStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	windowEnd   = time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
)

func submissionFixture() (*models.Test, map[string]*models.Question, *SubmitTestRequest) {
	test := &models.Test{
		ID:               1,
		Title:            "Weekly Mock",
		StartTime:        windowStart,
		EndTime:          windowEnd,
		Duration:         120,
		MarksPerQuestion: 2,
		NegativeMarks:    0.66,
		QuestionUIDs:     []string{"q-a", "q-b", "q-c"},
		IsActive:         true,
	}
	questions := map[string]*models.Question{
		"q-a": {UID: "q-a", CorrectAnswer: 1, IsActive: true},
		"q-b": {UID: "q-b", CorrectAnswer: 2, IsActive: true},
		"q-c": {UID: "q-c", CorrectAnswer: 0, IsActive: true},
	}
	req := &SubmitTestRequest{
		TestID:    1,
		StudentID: 7,
		Answers: []AnswerInput{
			{QuestionUID: "q-a", SelectedOption: 1},
			{QuestionUID: "q-b", SelectedOption: 3},
			{QuestionUID: "q-c", SelectedOption: -1},
		},
		TimeTakenSeconds: 900,
	}
	return test, questions, req
}

func newResultServiceForTest(repo *MockRepository, now time.Time) ResultService {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewResultService(repo, newMemoryCache(), publisher, fixedClock{now: now}, logger, validator.New(), 30*time.Second)
}

// ===== TESTS =====

func TestResultService_SubmitTest_Success(t *testing.T) {
	test, questions, req := submissionFixture()
	repo := newMockRepository()

	repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).
		Return(nil, repositories.ErrNotFound)
	repo.questionRepo.On("GetActiveByUIDs", mock.Anything, mock.Anything).Return(questions, nil)
	repo.resultRepo.On("InsertIfAbsent", mock.Anything, mock.MatchedBy(func(r *models.Result) bool {
		return r.TestID == 1 && r.StudentID == 7
	})).Return(nil)

	svc := newResultServiceForTest(repo, windowStart.Add(time.Hour))
	resp, err := svc.SubmitTest(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1.34, resp.Score)
	assert.Equal(t, 6.0, resp.TotalMarks)
	assert.Equal(t, 22.33, resp.Percentage)
	assert.Equal(t, 1, resp.Summary.CorrectAnswers)
	assert.Equal(t, 1, resp.Summary.WrongAnswers)
	assert.Equal(t, 1, resp.Summary.Unattempted)

	repo.resultRepo.AssertExpectations(t)
}

func TestResultService_SubmitTest_TestNotFound(t *testing.T) {
	_, _, req := submissionFixture()
	repo := newMockRepository()

	repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(nil, repositories.ErrNotFound)

	svc := newResultServiceForTest(repo, windowStart.Add(time.Hour))
	_, err := svc.SubmitTest(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTestNotFound))
}

func TestResultService_SubmitTest_WindowBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		wantErr error
	}{
		{"one second before start", windowStart.Add(-time.Second), ErrTestNotStarted},
		{"exactly at start", windowStart, nil},
		{"exactly at end", windowEnd, nil},
		{"one second after end", windowEnd.Add(time.Second), ErrTestEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test, questions, req := submissionFixture()
			repo := newMockRepository()

			repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
			if tt.wantErr == nil {
				repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).
					Return(nil, repositories.ErrNotFound)
				repo.questionRepo.On("GetActiveByUIDs", mock.Anything, mock.Anything).Return(questions, nil)
				repo.resultRepo.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(nil)
			}

			svc := newResultServiceForTest(repo, tt.now)
			resp, err := svc.SubmitTest(context.Background(), req)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))

				var windowErr *SubmissionWindowError
				require.True(t, errors.As(err, &windowErr))
				assert.True(t, windowErr.StartTime.Equal(windowStart))
				assert.True(t, windowErr.EndTime.Equal(windowEnd))
				return
			}

			require.NoError(t, err)
			assert.True(t, resp.SubmittedAt.Equal(tt.now))
		})
	}
}

func TestResultService_SubmitTest_AlreadySubmitted(t *testing.T) {
	test, _, req := submissionFixture()
	repo := newMockRepository()

	prior := &models.Result{
		TestID:      1,
		StudentID:   7,
		SubmittedAt: windowStart.Add(10 * time.Minute),
	}
	repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).Return(prior, nil)

	svc := newResultServiceForTest(repo, windowStart.Add(time.Hour))
	_, err := svc.SubmitTest(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadySubmitted))

	var dup *DuplicateSubmissionError
	require.True(t, errors.As(err, &dup))
	assert.True(t, dup.SubmittedAt.Equal(prior.SubmittedAt))
}

func TestResultService_SubmitTest_DuplicateRaceAtInsert(t *testing.T) {
	// The existence check passes, then the insert loses the race: the
	// uniqueness violation must still surface as a duplicate submission.
	test, questions, req := submissionFixture()
	repo := newMockRepository()

	prior := &models.Result{TestID: 1, StudentID: 7, SubmittedAt: windowStart.Add(5 * time.Minute)}
	repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).
		Return(nil, repositories.ErrNotFound).Once()
	repo.questionRepo.On("GetActiveByUIDs", mock.Anything, mock.Anything).Return(questions, nil)
	repo.resultRepo.On("InsertIfAbsent", mock.Anything, mock.Anything).
		Return(repositories.ErrDuplicateKey)
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).Return(prior, nil)

	svc := newResultServiceForTest(repo, windowStart.Add(time.Hour))
	_, err := svc.SubmitTest(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadySubmitted))
}

func TestResultService_SubmitTest_IncompleteSnapshot(t *testing.T) {
	test, questions, req := submissionFixture()
	delete(questions, "q-b")
	repo := newMockRepository()

	repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).
		Return(nil, repositories.ErrNotFound)
	repo.questionRepo.On("GetActiveByUIDs", mock.Anything, mock.Anything).Return(questions, nil)

	svc := newResultServiceForTest(repo, windowStart.Add(time.Hour))
	_, err := svc.SubmitTest(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteQuestionSet))
}

func TestResultService_GetTestResultWithRank(t *testing.T) {
	repo := newMockRepository()

	mine := &models.Result{TestID: 1, StudentID: 7, Score: 5, SubmittedAt: windowStart.Add(time.Minute)}
	cohort := []*models.Result{
		{TestID: 1, StudentID: 3, Score: 8, SubmittedAt: windowStart.Add(2 * time.Minute)},
		mine,
		{TestID: 1, StudentID: 9, Score: 2, SubmittedAt: windowStart.Add(3 * time.Minute)},
	}
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).Return(mine, nil)
	repo.resultRepo.On("ListByTest", mock.Anything, uint(1)).Return(cohort, nil)

	svc := newResultServiceForTest(repo, windowEnd)
	got, err := svc.GetTestResultWithRank(context.Background(), 1, 7)
	require.NoError(t, err)

	assert.Equal(t, 2, got.Rank)
	assert.Equal(t, 3, got.TotalStudents)
	assert.Equal(t, 5.0, got.Result.Score)
}

func TestResultService_GetTestResultWithRank_NoResult(t *testing.T) {
	repo := newMockRepository()
	repo.resultRepo.On("GetByTestAndStudent", mock.Anything, uint(1), uint(7)).
		Return(nil, repositories.ErrNotFound)

	svc := newResultServiceForTest(repo, windowEnd)
	_, err := svc.GetTestResultWithRank(context.Background(), 1, 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResultNotFound))
}

func TestResultService_GetTestLeaderboard(t *testing.T) {
	test, _, _ := submissionFixture()
	repo := newMockRepository()

	cohort := []*models.Result{
		{TestID: 1, StudentID: 3, Score: 8, Percentage: 80, SubmittedAt: windowStart.Add(2 * time.Minute)},
		{TestID: 1, StudentID: 7, Score: 8, Percentage: 80, SubmittedAt: windowStart.Add(time.Minute)},
	}
	repo.testRepo.On("GetByID", mock.Anything, uint(1)).Return(test, nil)
	repo.resultRepo.On("ListByTest", mock.Anything, uint(1)).Return(cohort, nil)

	svc := newResultServiceForTest(repo, windowEnd)
	board, err := svc.GetTestLeaderboard(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, board.Entries, 2)
	assert.Equal(t, uint(7), board.Entries[0].StudentID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, uint(3), board.Entries[1].StudentID)
	assert.Equal(t, 2, board.Entries[1].Rank)
	assert.Equal(t, 2, board.TotalStudents)
}

func TestResultService_GetStudentResults(t *testing.T) {
	repo := newMockRepository()

	mine := &models.Result{
		TestID:      1,
		StudentID:   7,
		Score:       4,
		SubmittedAt: windowStart.Add(time.Minute),
		Test:        models.Test{Title: "Weekly Mock"},
	}
	cohort := []*models.Result{
		mine,
		{TestID: 1, StudentID: 2, Score: 9, SubmittedAt: windowStart.Add(2 * time.Minute)},
	}
	repo.resultRepo.On("ListByStudent", mock.Anything, uint(7)).Return([]*models.Result{mine}, nil)
	repo.resultRepo.On("ListByTest", mock.Anything, uint(1)).Return(cohort, nil)

	svc := newResultServiceForTest(repo, windowEnd)
	results, err := svc.GetStudentResults(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Weekly Mock", results[0].TestTitle)
	assert.Equal(t, 2, results[0].Rank)
	assert.Equal(t, 2, results[0].TotalStudents)
}
