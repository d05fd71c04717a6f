package service

import (
	"context"
	"fmt"
	"time"

	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const statsUpdateTimeout = 10 * time.Second

// StatsService folds completed attempts into quiz and user aggregates.
type StatsService interface {
	// RecordCompletion applies one completed attempt. Every failure is logged
	// and counted; the first one is also returned.
	RecordCompletion(ctx context.Context, quizID, userID string, percentage int) error
}

type statsService struct {
	quizRepo domain.QuizRepository
	userRepo domain.UserRepository
	quizzes  QuizReader
}

func NewStatsService(quizRepo domain.QuizRepository, userRepo domain.UserRepository, quizzes QuizReader) StatsService {
	return &statsService{quizRepo: quizRepo, userRepo: userRepo, quizzes: quizzes}
}

func (s *statsService) RecordCompletion(ctx context.Context, quizID, userID string, percentage int) error {
	// The attempt is already completed; a client hanging up must not abort its bookkeeping.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsUpdateTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error {
		if err := s.quizRepo.IncrementAttemptStats(ctx, quizID, percentage); err != nil {
			metrics.StatsUpdateFailures.WithLabelValues("quiz").Inc()
			logger.Get().Error("Failed to update quiz statistics",
				zap.String("quiz_id", quizID),
				zap.Int("percentage", percentage),
				zap.Error(err))
			return fmt.Errorf("quiz statistics: %w", err)
		}
		if s.quizzes != nil {
			s.quizzes.Invalidate(ctx, quizID)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.userRepo.IncrementQuizzesTaken(ctx, userID); err != nil {
			metrics.StatsUpdateFailures.WithLabelValues("user").Inc()
			logger.Get().Error("Failed to update user statistics",
				zap.String("user_id", userID),
				zap.Error(err))
			return fmt.Errorf("user statistics: %w", err)
		}
		return nil
	})
	return g.Wait()
}
