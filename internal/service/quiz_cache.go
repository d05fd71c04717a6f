package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quizmaster/internal/cache"
	"quizmaster/internal/domain"
	"quizmaster/internal/logger"
	"quizmaster/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const quizLoadTimeout = 5 * time.Second

// QuizReader loads quizzes for the attempt engine.
type QuizReader interface {
	// GetQuiz returns (nil, nil) when the quiz does not exist.
	GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error)
	// Invalidate drops any cached copy of the quiz.
	Invalidate(ctx context.Context, quizID string)
}

// cachedQuizReader is a read-through cache in front of the quiz store.
// Concurrent misses for one quiz share a single store read. Any cache failure
// falls back to the store.
type cachedQuizReader struct {
	repo  domain.QuizRepository
	store domain.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedQuizReader returns a QuizReader. A nil store disables caching.
func NewCachedQuizReader(repo domain.QuizRepository, store domain.Cache, ttl time.Duration) QuizReader {
	return &cachedQuizReader{repo: repo, store: store, ttl: ttl}
}

func (r *cachedQuizReader) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	if r.store == nil {
		return r.repo.GetQuizByID(ctx, quizID)
	}

	key := cache.QuizKey(quizID)
	cached, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		var quiz domain.Quiz
		jsonErr := json.Unmarshal([]byte(cached), &quiz)
		if jsonErr == nil {
			metrics.QuizCacheLookups.WithLabelValues("hit").Inc()
			return &quiz, nil
		}
		logger.Get().Warn("Discarding undecodable cached quiz", zap.String("key", key), zap.Error(jsonErr))
	case errors.Is(err, domain.ErrCacheMiss):
		metrics.QuizCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.QuizCacheLookups.WithLabelValues("error").Inc()
		logger.Get().Warn("Quiz cache read failed, reading from store", zap.String("key", key), zap.Error(err))
	}

	v, err, _ := r.group.Do(key, func() (interface{}, error) {
		// Other callers wait on this load, so it must not die with the first caller.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), quizLoadTimeout)
		defer cancel()

		quiz, err := r.repo.GetQuizByID(loadCtx, quizID)
		if err != nil || quiz == nil {
			return quiz, err
		}
		if payload, err := json.Marshal(quiz); err == nil {
			if err := r.store.Set(loadCtx, key, string(payload), r.ttl); err != nil {
				logger.Get().Warn("Quiz cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return quiz, nil
	})
	if err != nil {
		return nil, err
	}
	quiz, _ := v.(*domain.Quiz)
	return quiz, nil
}

func (r *cachedQuizReader) Invalidate(ctx context.Context, quizID string) {
	if r.store == nil {
		return
	}
	if err := r.store.Delete(ctx, cache.QuizKey(quizID)); err != nil {
		logger.Get().Warn("Quiz cache invalidation failed", zap.String("quiz_id", quizID), zap.Error(err))
	}
}
