package domain

import (
	"context"
	"time"
)

// QuizRepository is the quiz-content store consumed by the attempt engine.
type QuizRepository interface {
	// GetQuizByID returns the quiz with its ordered questions, or (nil, nil) if absent.
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)

	// IncrementAttemptStats folds one completed attempt's percentage into the
	// quiz's running count and sum in a single atomic write.
	IncrementAttemptStats(ctx context.Context, quizID string, percentage int) error
}

// AttemptRepository persists attempts.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error

	// GetAttemptByID returns (nil, nil) if absent.
	GetAttemptByID(ctx context.Context, id string) (*Attempt, error)

	// CompleteAttempt writes a completed attempt only if it is still started.
	// It returns ErrAttemptNotStarted when no started row matched.
	CompleteAttempt(ctx context.Context, attempt *Attempt) error

	// MarkExpired moves one started attempt to expired.
	MarkExpired(ctx context.Context, id string, now time.Time) error

	// ExpireStartedBefore expires every started attempt whose start time is before cutoff.
	ExpireStartedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// UserRepository holds the user's lifetime counters.
type UserRepository interface {
	IncrementQuizzesTaken(ctx context.Context, userID string) error
}

// TransactionManager runs fn inside one database transaction. Repositories
// pick the transaction up from the context passed to fn.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
