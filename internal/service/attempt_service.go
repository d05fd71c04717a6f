package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"quizmaster/internal/config"
	"quizmaster/internal/domain"
	"quizmaster/internal/dto"
	"quizmaster/internal/logger"
	"quizmaster/internal/metrics"
	"quizmaster/internal/util"

	"go.uber.org/zap"
)

const (
	msgQuizNotFound        = "Quiz not found"
	msgAttemptNotFound     = "Attempt not found"
	msgNotAllowedAttempt   = "Not authorized to attempt this quiz"
	msgNotAllowedSubmit    = "Not authorized to submit this attempt"
	msgNotAllowedView      = "Not authorized to view this attempt"
	msgAlreadySubmitted    = "This attempt has already been submitted"
	msgAttemptExpired      = "This attempt has expired"
	msgCouldNotStart       = "Could not start quiz attempt"
	msgCouldNotSubmit      = "Could not submit quiz attempt"
	msgCouldNotLoadAttempt = "Could not get attempt"
)

// AttemptService runs the start, submit and view operations of a quiz attempt.
type AttemptService interface {
	StartAttempt(ctx context.Context, quizID string, requester domain.Principal) (string, *dto.AttemptQuizView, error)
	SubmitAttempt(ctx context.Context, attemptID string, requester domain.Principal, answers []domain.SubmittedAnswer) (*dto.SubmitAttemptResult, error)
	GetAttempt(ctx context.Context, attemptID string, requester domain.Principal) (*dto.AttemptDetail, error)
}

// AttemptServiceOption customises an AttemptService.
type AttemptServiceOption func(*attemptService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AttemptServiceOption {
	return func(s *attemptService) { s.now = now }
}

// WithShuffleSource replaces the random source used to shuffle questions.
// intn must be safe for concurrent use.
func WithShuffleSource(intn func(n int) int) AttemptServiceOption {
	return func(s *attemptService) { s.intn = intn }
}

// WithIDGenerator replaces the ULID generator used for new attempts.
func WithIDGenerator(newID func() string) AttemptServiceOption {
	return func(s *attemptService) { s.newID = newID }
}

type attemptService struct {
	quizRepo domain.QuizRepository
	quizzes  QuizReader
	attempts domain.AttemptRepository
	stats    StatsService
	cfg      config.AttemptConfig

	now   func() time.Time
	intn  func(n int) int
	newID func() string
}

// NewAttemptService creates a new instance of attemptService. quizzes serves
// cached reads; quizRepo is read directly when scoring against live content.
func NewAttemptService(
	quizRepo domain.QuizRepository,
	quizzes QuizReader,
	attempts domain.AttemptRepository,
	stats StatsService,
	cfg config.AttemptConfig,
	opts ...AttemptServiceOption,
) AttemptService {
	s := &attemptService{
		quizRepo: quizRepo,
		quizzes:  quizzes,
		attempts: attempts,
		stats:    stats,
		cfg:      cfg,
		now:      time.Now,
		intn:     rand.IntN,
		newID:    util.NewULID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartAttempt implements AttemptService
func (s *attemptService) StartAttempt(ctx context.Context, quizID string, requester domain.Principal) (string, *dto.AttemptQuizView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return "", nil, domain.NewInternalError(msgCouldNotStart, err)
	}
	if quiz == nil {
		return "", nil, domain.NewNotFoundError(msgQuizNotFound)
	}
	if !quiz.CanBeAttemptedBy(requester) {
		return "", nil, domain.NewForbiddenError(msgNotAllowedAttempt)
	}

	attempt := domain.NewAttempt(s.newID(), requester.ID, quiz.ID, s.now())
	if s.cfg.ScoringBasis == config.ScoringBasisSnapshot {
		attempt.AnswerKey = append([]domain.Question(nil), quiz.Questions...)
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return "", nil, domain.NewInternalError(msgCouldNotStart, err)
	}

	metrics.AttemptsStarted.Inc()
	logger.Get().Info("Attempt started",
		zap.String("attempt_id", attempt.ID),
		zap.String("quiz_id", quiz.ID),
		zap.String("user_id", requester.ID))

	return attempt.ID, BuildAttemptView(quiz, s.intn), nil
}

// SubmitAttempt implements AttemptService
func (s *attemptService) SubmitAttempt(ctx context.Context, attemptID string, requester domain.Principal, answers []domain.SubmittedAnswer) (*dto.SubmitAttemptResult, error) {
	attempt, err := s.attempts.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError(msgCouldNotSubmit, err)
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError(msgAttemptNotFound)
	}
	if !attempt.IsOwnedBy(requester.ID) {
		return nil, domain.NewForbiddenError(msgNotAllowedSubmit)
	}
	if err := terminalStateError(attempt.Status); err != nil {
		return nil, err
	}

	now := s.now()
	if attempt.IsAbandoned(now, s.cfg.AbandonAfter) {
		s.expire(ctx, attempt.ID, now)
		return nil, domain.NewInvalidStateError(msgAttemptExpired)
	}

	quiz, questions, err := s.scoringQuestions(ctx, attempt)
	if err != nil {
		return nil, domain.NewInternalError(msgCouldNotSubmit, err)
	}
	if quiz == nil {
		return nil, domain.NewNotFoundError(msgQuizNotFound)
	}

	result := domain.Score(questions, answers)
	maxScore := domain.MaxPossibleScore(questions)
	percentage := domain.Percentage(result.TotalScore, maxScore)
	passed := domain.Passed(percentage, quiz.PassingScore, maxScore)

	if err := attempt.Complete(result, percentage, passed, now); err != nil {
		return nil, domain.NewInvalidStateError(msgAlreadySubmitted)
	}
	if err := s.attempts.CompleteAttempt(ctx, attempt); err != nil {
		if errors.Is(err, domain.ErrAttemptNotStarted) {
			// Lost a race with another submission or the expiry sweep.
			return nil, s.stateConflictError(ctx, attempt.ID)
		}
		return nil, domain.NewInternalError(msgCouldNotSubmit, err)
	}

	metrics.AttemptsSubmitted.WithLabelValues(strconv.FormatBool(passed)).Inc()
	metrics.ScoreDistribution.Observe(float64(percentage))

	if err := s.stats.RecordCompletion(ctx, quiz.ID, requester.ID, percentage); err != nil {
		logger.Get().Warn("Attempt completed but statistics are behind",
			zap.String("attempt_id", attempt.ID),
			zap.Error(err))
	}

	logger.Get().Info("Attempt submitted",
		zap.String("attempt_id", attempt.ID),
		zap.String("quiz_id", quiz.ID),
		zap.Int("percentage", percentage),
		zap.Bool("passed", passed))

	return &dto.SubmitAttemptResult{
		AttemptID:         attempt.ID,
		TotalScore:        result.TotalScore,
		PercentageScore:   percentage,
		Passed:            passed,
		TotalQuestions:    len(questions),
		AnsweredCorrectly: result.AnsweredCorrectly,
		TimeTaken:         attempt.TotalTimeTaken,
		Feedback:          domain.Feedback(percentage, quiz.PassingScore),
	}, nil
}

// GetAttempt implements AttemptService
func (s *attemptService) GetAttempt(ctx context.Context, attemptID string, requester domain.Principal) (*dto.AttemptDetail, error) {
	attempt, err := s.attempts.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError(msgCouldNotLoadAttempt, err)
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError(msgAttemptNotFound)
	}

	// The taker and admins need the quiz only for the summary. Anyone else is
	// allowed only as owner of a quiz that still exists.
	privileged := attempt.IsOwnedBy(requester.ID) || requester.IsAdmin()
	quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		if !privileged {
			return nil, domain.NewInternalError(msgCouldNotLoadAttempt, err)
		}
		logger.Get().Warn("Returning attempt without quiz summary",
			zap.String("attempt_id", attempt.ID),
			zap.String("quiz_id", attempt.QuizID),
			zap.Error(err))
		quiz = nil
	}
	if !privileged && (quiz == nil || !quiz.IsOwnedBy(requester.ID)) {
		return nil, domain.NewForbiddenError(msgNotAllowedView)
	}
	return toAttemptDetail(attempt, quiz), nil
}

// scoringQuestions returns the quiz and the question set the attempt is graded
// against. A nil quiz means it no longer exists.
func (s *attemptService) scoringQuestions(ctx context.Context, attempt *domain.Attempt) (*domain.Quiz, []domain.Question, error) {
	if s.cfg.ScoringBasis == config.ScoringBasisSnapshot {
		quiz, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
		if err != nil || quiz == nil {
			return nil, nil, err
		}
		// Attempts started before the basis was switched carry no key.
		if len(attempt.AnswerKey) > 0 {
			return quiz, attempt.AnswerKey, nil
		}
		return quiz, quiz.Questions, nil
	}

	quiz, err := s.quizRepo.GetQuizByID(ctx, attempt.QuizID)
	if err != nil || quiz == nil {
		return nil, nil, err
	}
	return quiz, quiz.Questions, nil
}

func (s *attemptService) expire(ctx context.Context, attemptID string, now time.Time) {
	err := s.attempts.MarkExpired(ctx, attemptID, now)
	switch {
	case err == nil:
		metrics.AttemptsExpired.Inc()
	case errors.Is(err, domain.ErrAttemptNotStarted):
	default:
		logger.Get().Warn("Failed to mark abandoned attempt expired", zap.String("attempt_id", attemptID), zap.Error(err))
	}
}

// stateConflictError reports why a conditional completion matched no row.
func (s *attemptService) stateConflictError(ctx context.Context, attemptID string) error {
	current, err := s.attempts.GetAttemptByID(ctx, attemptID)
	if err == nil && current != nil && current.Status == domain.AttemptExpired {
		return domain.NewInvalidStateError(msgAttemptExpired)
	}
	return domain.NewInvalidStateError(msgAlreadySubmitted)
}

func terminalStateError(status domain.AttemptStatus) error {
	switch status {
	case domain.AttemptCompleted:
		return domain.NewInvalidStateError(msgAlreadySubmitted)
	case domain.AttemptExpired:
		return domain.NewInvalidStateError(msgAttemptExpired)
	}
	return nil
}

func toAttemptDetail(attempt *domain.Attempt, quiz *domain.Quiz) *dto.AttemptDetail {
	detail := &dto.AttemptDetail{
		ID:              attempt.ID,
		UserID:          attempt.UserID,
		QuizID:          attempt.QuizID,
		Status:          string(attempt.Status),
		StartTime:       attempt.StartTime,
		FinishTime:      attempt.FinishTime,
		TotalTimeTaken:  attempt.TotalTimeTaken,
		Answers:         make([]dto.AnsweredQuestionResponse, 0, len(attempt.Answers)),
		TotalScore:      attempt.TotalScore,
		PercentageScore: attempt.PercentageScore,
		Passed:          attempt.Passed,
		CreatedAt:       attempt.CreatedAt,
		UpdatedAt:       attempt.UpdatedAt,
	}
	for _, a := range attempt.Answers {
		detail.Answers = append(detail.Answers, dto.AnsweredQuestionResponse{
			QuestionID:     a.QuestionID,
			SelectedChoice: a.SelectedChoice,
			IsCorrect:      a.IsCorrect,
			PointsEarned:   a.PointsEarned,
			TimeTaken:      a.TimeTaken,
		})
	}
	if quiz != nil {
		detail.Quiz = &dto.QuizSummary{
			ID:          quiz.ID,
			Title:       quiz.Title,
			Description: quiz.Description,
			Category:    quiz.Category,
		}
	}
	return detail
}
