package service

import (
	"context"
	"time"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/metrics"

	"go.uber.org/zap"
)

// AttemptExpiryService expires started attempts older than the abandon window.
type AttemptExpiryService struct {
	attempts domain.AttemptRepository
	window   time.Duration
	now      func() time.Time
}

// NewAttemptExpiryService returns a service that is disabled when window is 0.
func NewAttemptExpiryService(attempts domain.AttemptRepository, window time.Duration) *AttemptExpiryService {
	return &AttemptExpiryService{attempts: attempts, window: window, now: time.Now}
}

func (s *AttemptExpiryService) Enabled() bool {
	return s.window > 0
}

// ExpireAbandoned runs one sweep and reports how many attempts it expired.
func (s *AttemptExpiryService) ExpireAbandoned(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	cutoff := s.now().Add(-s.window)
	n, err := s.attempts.ExpireStartedBefore(ctx, cutoff)
	if err != nil {
		logger.Get().Error("Abandoned attempt sweep failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, err
	}
	if n > 0 {
		metrics.AttemptsExpired.Add(float64(n))
		logger.Get().Info("Expired abandoned attempts", zap.Int64("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}
