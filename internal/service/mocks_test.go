package service

import (
	"context"
	"sync"
	"time"

	"quizmaster/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) IncrementAttemptStats(ctx context.Context, quizID string, percentage int) error {
	args := m.Called(ctx, quizID, percentage)
	return args.Error(0)
}

// --- MockAttemptRepository ---
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetAttemptByID(ctx context.Context, id string) (*domain.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) CompleteAttempt(ctx context.Context, attempt *domain.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) MarkExpired(ctx context.Context, id string, now time.Time) error {
	args := m.Called(ctx, id, now)
	return args.Error(0)
}

func (m *MockAttemptRepository) ExpireStartedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IncrementQuizzesTaken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockStatsService ---
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) RecordCompletion(ctx context.Context, quizID, userID string, percentage int) error {
	args := m.Called(ctx, quizID, userID, percentage)
	return args.Error(0)
}

// directQuizReader reads straight from a repository.
type directQuizReader struct {
	repo domain.QuizRepository
}

func (r directQuizReader) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	return r.repo.GetQuizByID(ctx, quizID)
}

func (r directQuizReader) Invalidate(context.Context, string) {}

// memoryStore is an in-memory stand-in for the database. Its writes are
// serialised the way the conditional and accumulating SQL statements are.
type memoryStore struct {
	mu           sync.Mutex
	quizzes      map[string]*domain.Quiz
	attempts     map[string]*domain.Attempt
	quizzesTaken map[string]int64
}

func newMemoryStore(quizzes ...*domain.Quiz) *memoryStore {
	s := &memoryStore{
		quizzes:      make(map[string]*domain.Quiz),
		attempts:     make(map[string]*domain.Attempt),
		quizzesTaken: make(map[string]int64),
	}
	for _, q := range quizzes {
		s.quizzes[q.ID] = q
	}
	return s
}

func (s *memoryStore) GetQuizByID(_ context.Context, id string) (*domain.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok {
		return nil, nil
	}
	cp := *q
	cp.Questions = append([]domain.Question(nil), q.Questions...)
	return &cp, nil
}

func (s *memoryStore) IncrementAttemptStats(_ context.Context, quizID string, percentage int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.quizzes[quizID]
	q.AvgScore = float64(q.ScoreSum+int64(percentage)) / float64(q.Attempts+1)
	q.ScoreSum += int64(percentage)
	q.Attempts++
	return nil
}

func (s *memoryStore) CreateAttempt(_ context.Context, a *domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.attempts[a.ID] = &cp
	return nil
}

func (s *memoryStore) GetAttemptByID(_ context.Context, id string) (*domain.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) CompleteAttempt(_ context.Context, a *domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts[a.ID].Status != domain.AttemptStarted {
		return domain.ErrAttemptNotStarted
	}
	cp := *a
	s.attempts[a.ID] = &cp
	return nil
}

func (s *memoryStore) MarkExpired(_ context.Context, id string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attempts[id]
	if a.Status != domain.AttemptStarted {
		return domain.ErrAttemptNotStarted
	}
	a.Status = domain.AttemptExpired
	a.UpdatedAt = now
	return nil
}

func (s *memoryStore) ExpireStartedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, a := range s.attempts {
		if a.Status == domain.AttemptStarted && a.StartTime.Before(cutoff) {
			a.Status = domain.AttemptExpired
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) IncrementQuizzesTaken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzesTaken[userID]++
	return nil
}
