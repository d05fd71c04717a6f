package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/dto"
	"quizmaster/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var (
	startedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	taker     = domain.Principal{ID: "user1", Role: domain.RoleUser}
	author    = domain.Principal{ID: "owner", Role: domain.RoleUser}
	stranger  = domain.Principal{ID: "someone-else", Role: domain.RoleUser}
	admin     = domain.Principal{ID: "root", Role: domain.RoleAdmin}
)

func sampleQuiz() *domain.Quiz {
	return &domain.Quiz{
		ID:           "quiz1",
		Title:        "General knowledge",
		Description:  "Warm-up round",
		Category:     "trivia",
		TimeLimit:    10,
		PassingScore: 50,
		IsPublic:     true,
		CreatorID:    "owner",
		Questions: []domain.Question{
			{ID: "q1", Text: "2+2?", Choices: []string{"4", "5"}, RightAnswer: 0, Explanation: "arithmetic", Points: 10, Difficulty: domain.DifficultyEasy},
			{ID: "q2", Text: "Capital of France?", Choices: []string{"Rome", "Paris"}, RightAnswer: 1, Points: 20, Difficulty: domain.DifficultyMedium},
		},
	}
}

func startedAttempt() *domain.Attempt {
	return domain.NewAttempt("attempt1", "user1", "quiz1", startedAt)
}

type attemptFixture struct {
	quizRepo *MockQuizRepository
	attempts *MockAttemptRepository
	stats    *MockStatsService
	service  AttemptService
}

func newAttemptFixture(cfg config.AttemptConfig, now time.Time) *attemptFixture {
	f := &attemptFixture{
		quizRepo: new(MockQuizRepository),
		attempts: new(MockAttemptRepository),
		stats:    new(MockStatsService),
	}
	if cfg.ScoringBasis == "" {
		cfg.ScoringBasis = config.ScoringBasisLive
	}
	f.service = NewAttemptService(
		f.quizRepo,
		directQuizReader{repo: f.quizRepo},
		f.attempts,
		f.stats,
		cfg,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "attempt1" }),
		WithShuffleSource(func(n int) int { return 0 }),
	)
	return f
}

func requireDomainError(t *testing.T, err error, code domain.ErrorCode, message string) {
	t.Helper()
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
	assert.Equal(t, message, domainErr.Message)
}

func TestStartAttempt_Success(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a *domain.Attempt) bool {
		return a.ID == "attempt1" &&
			a.UserID == "user1" &&
			a.Status == domain.AttemptStarted &&
			a.StartTime.Equal(startedAt) &&
			len(a.AnswerKey) == 0
	})).Return(nil)

	attemptID, view, err := f.service.StartAttempt(context.Background(), "quiz1", taker)

	require.NoError(t, err)
	assert.Equal(t, "attempt1", attemptID)
	require.NotNil(t, view)
	assert.Equal(t, "quiz1", view.ID)
	assert.Equal(t, 10, view.TimeLimit)
	require.Len(t, view.Questions, 2)
	assert.Equal(t, "q1", view.Questions[0].ID)

	payload, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "rightAnswer")
	assert.NotContains(t, string(payload), "explanation")
	f.attempts.AssertExpectations(t)
}

func TestStartAttempt_SnapshotStoresAnswerKey(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{ScoringBasis: config.ScoringBasisSnapshot}, startedAt)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CreateAttempt", mock.Anything, mock.MatchedBy(func(a *domain.Attempt) bool {
		return len(a.AnswerKey) == 2 && a.AnswerKey[1].RightAnswer == 1
	})).Return(nil)

	_, _, err := f.service.StartAttempt(context.Background(), "quiz1", taker)

	require.NoError(t, err)
	f.attempts.AssertExpectations(t)
}

func TestStartAttempt_QuizNotFound(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt)
	f.quizRepo.On("GetQuizByID", mock.Anything, "missing").Return(nil, nil)

	_, view, err := f.service.StartAttempt(context.Background(), "missing", taker)

	requireDomainError(t, err, domain.CodeNotFound, "Quiz not found")
	assert.Nil(t, view)
	f.attempts.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
}

func TestStartAttempt_PrivateQuiz(t *testing.T) {
	quiz := sampleQuiz()
	quiz.IsPublic = false

	t.Run("stranger is refused", func(t *testing.T) {
		f := newAttemptFixture(config.AttemptConfig{}, startedAt)
		f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)

		_, _, err := f.service.StartAttempt(context.Background(), "quiz1", stranger)

		requireDomainError(t, err, domain.CodeForbidden, "Not authorized to attempt this quiz")
		f.attempts.AssertNotCalled(t, "CreateAttempt", mock.Anything, mock.Anything)
	})

	t.Run("owner may attempt", func(t *testing.T) {
		f := newAttemptFixture(config.AttemptConfig{}, startedAt)
		f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)
		f.attempts.On("CreateAttempt", mock.Anything, mock.AnythingOfType("*domain.Attempt")).Return(nil)

		_, _, err := f.service.StartAttempt(context.Background(), "quiz1", author)
		require.NoError(t, err)
	})
}

func TestStartAttempt_StoreFailure(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CreateAttempt", mock.Anything, mock.Anything).Return(errors.New("ORA-00001"))

	_, _, err := f.service.StartAttempt(context.Background(), "quiz1", taker)

	requireDomainError(t, err, domain.CodeInternal, "Could not start quiz attempt")
}

func TestSubmitAttempt_ScoresAndCompletes(t *testing.T) {
	finish := startedAt.Add(90*time.Second + 500*time.Millisecond)
	f := newAttemptFixture(config.AttemptConfig{}, finish)
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.MatchedBy(func(a *domain.Attempt) bool {
		return a.Status == domain.AttemptCompleted &&
			a.TotalScore == 10 &&
			a.PercentageScore == 33 &&
			!a.Passed &&
			a.TotalTimeTaken == 91 &&
			len(a.Answers) == 2
	})).Return(nil)
	f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 33).Return(nil)

	result, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedChoice: 0, TimeTaken: 30},
		{QuestionID: "q2", SelectedChoice: 0, TimeTaken: 40},
	})

	require.NoError(t, err)
	assert.Equal(t, &dto.SubmitAttemptResult{
		AttemptID:         "attempt1",
		TotalScore:        10,
		PercentageScore:   33,
		Passed:            false,
		TotalQuestions:    2,
		AnsweredCorrectly: 1,
		TimeTaken:         91,
		Feedback:          domain.FeedbackKeepGoing,
	}, result)
	f.attempts.AssertExpectations(t)
	f.stats.AssertExpectations(t)
}

func TestSubmitAttempt_EmptySubmission(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(nil)
	f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 0).Return(nil)

	result, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, nil)

	require.NoError(t, err)
	assert.Zero(t, result.TotalScore)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.False(t, result.Passed)
}

func TestSubmitAttempt_ZeroPointQuizNeverPasses(t *testing.T) {
	quiz := sampleQuiz()
	quiz.PassingScore = 0
	for i := range quiz.Questions {
		quiz.Questions[i].Points = 0
	}

	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(quiz, nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(nil)
	f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 0).Return(nil)

	result, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedChoice: 0},
		{QuestionID: "q2", SelectedChoice: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, result.PercentageScore)
	assert.False(t, result.Passed)
	assert.Equal(t, 2, result.AnsweredCorrectly)
}

func TestSubmitAttempt_Rejections(t *testing.T) {
	completed := startedAttempt()
	completed.Status = domain.AttemptCompleted
	expired := startedAttempt()
	expired.Status = domain.AttemptExpired

	tests := []struct {
		name      string
		attempt   *domain.Attempt
		requester domain.Principal
		code      domain.ErrorCode
		message   string
	}{
		{"unknown attempt", nil, taker, domain.CodeNotFound, "Attempt not found"},
		{"someone else's attempt", startedAttempt(), stranger, domain.CodeForbidden, "Not authorized to submit this attempt"},
		{"admin cannot submit for others", startedAttempt(), admin, domain.CodeForbidden, "Not authorized to submit this attempt"},
		{"already submitted", completed, taker, domain.CodeInvalidState, "This attempt has already been submitted"},
		{"expired", expired, taker, domain.CodeInvalidState, "This attempt has expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
			if tt.attempt == nil {
				f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(nil, nil)
			} else {
				f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(tt.attempt, nil)
			}

			result, err := f.service.SubmitAttempt(context.Background(), "attempt1", tt.requester, nil)

			assert.Nil(t, result)
			requireDomainError(t, err, tt.code, tt.message)
			f.attempts.AssertNotCalled(t, "CompleteAttempt", mock.Anything, mock.Anything)
			f.stats.AssertNotCalled(t, "RecordCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitAttempt_AbandonedAttemptIsExpired(t *testing.T) {
	now := startedAt.Add(3 * time.Hour)
	f := newAttemptFixture(config.AttemptConfig{AbandonAfter: 2 * time.Hour}, now)
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.attempts.On("MarkExpired", mock.Anything, "attempt1", now).Return(nil)

	_, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, nil)

	requireDomainError(t, err, domain.CodeInvalidState, "This attempt has expired")
	f.attempts.AssertExpectations(t)
	f.attempts.AssertNotCalled(t, "CompleteAttempt", mock.Anything, mock.Anything)
}

func TestSubmitAttempt_NoExpiryWhenWindowDisabled(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(30*24*time.Hour))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(nil)
	f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 0).Return(nil)

	_, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, nil)

	require.NoError(t, err)
	f.attempts.AssertNotCalled(t, "MarkExpired", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAttempt_QuizDeleted(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(nil, nil)

	_, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, nil)

	requireDomainError(t, err, domain.CodeNotFound, "Quiz not found")
	f.attempts.AssertNotCalled(t, "CompleteAttempt", mock.Anything, mock.Anything)
}

func TestSubmitAttempt_LostRace(t *testing.T) {
	winner := startedAttempt()
	winner.Status = domain.AttemptCompleted

	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil).Once()
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(winner, nil).Once()
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(domain.ErrAttemptNotStarted)

	_, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, nil)

	requireDomainError(t, err, domain.CodeInvalidState, "This attempt has already been submitted")
	f.stats.AssertNotCalled(t, "RecordCompletion", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAttempt_StoreFailure(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(errors.New("ORA-03113: end-of-file on communication channel"))

	_, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, nil)

	requireDomainError(t, err, domain.CodeInternal, "Could not submit quiz attempt")
}

func TestSubmitAttempt_StatsFailureDoesNotFailSubmission(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt.Add(time.Minute))
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
	f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
	f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(nil)
	f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 100).Return(errors.New("quiz statistics: deadlock"))

	result, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedChoice: 0},
		{QuestionID: "q2", SelectedChoice: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, 100, result.PercentageScore)
	assert.True(t, result.Passed)
	assert.Equal(t, domain.FeedbackExcellent, result.Feedback)
}

func TestSubmitAttempt_SnapshotBasis(t *testing.T) {
	t.Run("grades against the frozen key", func(t *testing.T) {
		attempt := startedAttempt()
		attempt.AnswerKey = sampleQuiz().Questions
		// The quiz was edited after the attempt started.
		edited := sampleQuiz()
		edited.Questions[0].RightAnswer = 1

		f := newAttemptFixture(config.AttemptConfig{ScoringBasis: config.ScoringBasisSnapshot}, startedAt.Add(time.Minute))
		f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(attempt, nil)
		f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(edited, nil)
		f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(nil)
		f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 33).Return(nil)

		result, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, []domain.SubmittedAnswer{
			{QuestionID: "q1", SelectedChoice: 0},
		})

		require.NoError(t, err)
		assert.Equal(t, 10, result.TotalScore)
	})

	t.Run("falls back to live questions without a key", func(t *testing.T) {
		edited := sampleQuiz()
		edited.Questions[0].RightAnswer = 1

		f := newAttemptFixture(config.AttemptConfig{ScoringBasis: config.ScoringBasisSnapshot}, startedAt.Add(time.Minute))
		f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
		f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(edited, nil)
		f.attempts.On("CompleteAttempt", mock.Anything, mock.Anything).Return(nil)
		f.stats.On("RecordCompletion", mock.Anything, "quiz1", "user1", 0).Return(nil)

		result, err := f.service.SubmitAttempt(context.Background(), "attempt1", taker, []domain.SubmittedAnswer{
			{QuestionID: "q1", SelectedChoice: 0},
		})

		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalScore)
	})
}

func TestSubmitAttempt_ConcurrentSubmissionsCompleteOnce(t *testing.T) {
	store := newMemoryStore(sampleQuiz())
	require.NoError(t, store.CreateAttempt(context.Background(), startedAttempt()))

	svc := NewAttemptService(store, directQuizReader{repo: store}, store,
		NewStatsService(store, store, nil),
		config.AttemptConfig{ScoringBasis: config.ScoringBasisLive})

	const submitters = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SubmitAttempt(context.Background(), "attempt1", taker, []domain.SubmittedAnswer{
				{QuestionID: "q1", SelectedChoice: 0},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if domain.HasCode(err, domain.CodeInvalidState) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, submitters-1, conflicts)
	quiz, _ := store.GetQuizByID(context.Background(), "quiz1")
	assert.EqualValues(t, 1, quiz.Attempts)
	assert.EqualValues(t, 1, store.quizzesTaken["user1"])
}

func TestGetAttempt_Visibility(t *testing.T) {
	completed := func() *domain.Attempt {
		a := startedAttempt()
		_ = a.Complete(domain.ScoreResult{
			TotalScore: 10,
			Answers:    []domain.AnsweredQuestion{{QuestionID: "q1", SelectedChoice: 0, IsCorrect: true, PointsEarned: 10, TimeTaken: 12}},
		}, 33, false, startedAt.Add(time.Minute))
		return a
	}

	tests := []struct {
		name        string
		requester   domain.Principal
		quizDeleted bool
		allowed     bool
	}{
		{"taker", taker, false, true},
		{"quiz owner", author, false, true},
		{"admin", admin, false, true},
		{"stranger", stranger, false, false},
		{"taker after quiz deletion", taker, true, true},
		{"admin after quiz deletion", admin, true, true},
		{"former quiz owner after deletion", author, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture(config.AttemptConfig{}, startedAt)
			f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(completed(), nil)
			if tt.quizDeleted {
				f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(nil, nil)
			} else {
				f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(sampleQuiz(), nil)
			}

			detail, err := f.service.GetAttempt(context.Background(), "attempt1", tt.requester)

			if !tt.allowed {
				requireDomainError(t, err, domain.CodeForbidden, "Not authorized to view this attempt")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "attempt1", detail.ID)
			assert.Equal(t, "user1", detail.UserID)
			assert.Equal(t, "completed", detail.Status)
			assert.Equal(t, 33, detail.PercentageScore)
			require.Len(t, detail.Answers, 1)
			assert.Equal(t, 12, detail.Answers[0].TimeTaken)
			if tt.quizDeleted {
				assert.Nil(t, detail.Quiz)
			} else {
				require.NotNil(t, detail.Quiz)
				assert.Equal(t, "General knowledge", detail.Quiz.Title)
			}
		})
	}
}

func TestGetAttempt_NotFound(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt)
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(nil, nil)

	_, err := f.service.GetAttempt(context.Background(), "attempt1", admin)

	requireDomainError(t, err, domain.CodeNotFound, "Attempt not found")
}

func TestGetAttempt_StoreFailure(t *testing.T) {
	f := newAttemptFixture(config.AttemptConfig{}, startedAt)
	f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(nil, errors.New("connection reset"))

	_, err := f.service.GetAttempt(context.Background(), "attempt1", taker)

	requireDomainError(t, err, domain.CodeInternal, "Could not get attempt")
}

func TestGetAttempt_QuizLoadFailure(t *testing.T) {
	tests := []struct {
		name      string
		requester domain.Principal
		wantCode  domain.ErrorCode
	}{
		{"taker still sees the attempt", taker, ""},
		{"admin still sees the attempt", admin, ""},
		{"quiz owner cannot be confirmed", author, domain.CodeInternal},
		{"stranger cannot be confirmed", stranger, domain.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAttemptFixture(config.AttemptConfig{}, startedAt)
			f.attempts.On("GetAttemptByID", mock.Anything, "attempt1").Return(startedAttempt(), nil)
			f.quizRepo.On("GetQuizByID", mock.Anything, "quiz1").Return(nil, errors.New("ORA-03113: end-of-file on communication channel"))

			detail, err := f.service.GetAttempt(context.Background(), "attempt1", tt.requester)

			if tt.wantCode != "" {
				requireDomainError(t, err, tt.wantCode, "Could not get attempt")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "attempt1", detail.ID)
			assert.Nil(t, detail.Quiz)
		})
	}
}
