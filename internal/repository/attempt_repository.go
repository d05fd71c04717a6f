package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizmaster/internal/domain"
	"quizmaster/internal/repository/models"
	"quizmaster/internal/util"
)

const (
	insertAttemptQuery = `INSERT INTO attempts (
		ID, USER_ID, QUIZ_ID, STATUS, START_TIME, FINISH_TIME, TOTAL_TIME_TAKEN, ANSWERS,
		TOTAL_SCORE, PERCENTAGE_SCORE, PASSED, ANSWER_KEY, CREATED_AT, UPDATED_AT
	) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13, :14)`

	selectAttemptByIDQuery = `SELECT ID, USER_ID, QUIZ_ID, STATUS, START_TIME, FINISH_TIME, TOTAL_TIME_TAKEN, ANSWERS,
		TOTAL_SCORE, PERCENTAGE_SCORE, PASSED, ANSWER_KEY, CREATED_AT, UPDATED_AT
	FROM attempts
	WHERE ID = :1`

	// The STATUS guard makes completion a compare-and-set: of two racing
	// submissions only one can match the started row.
	completeAttemptQuery = `UPDATE attempts
	SET STATUS = :1, FINISH_TIME = :2, TOTAL_TIME_TAKEN = :3, ANSWERS = :4,
		TOTAL_SCORE = :5, PERCENTAGE_SCORE = :6, PASSED = :7, UPDATED_AT = :8
	WHERE ID = :9 AND STATUS = :10`

	markExpiredQuery = `UPDATE attempts SET STATUS = :1, UPDATED_AT = :2 WHERE ID = :3 AND STATUS = :4`

	expireStartedBeforeQuery = `UPDATE attempts SET STATUS = :1, UPDATED_AT = :2 WHERE STATUS = :3 AND START_TIME < :4`
)

// AttemptDatabaseAdapter implements domain.AttemptRepository using sqlx.
type AttemptDatabaseAdapter struct {
	db DBTX
}

func NewAttemptDatabaseAdapter(db DBTX) domain.AttemptRepository {
	return &AttemptDatabaseAdapter{db: db}
}

// CreateAttempt inserts a started attempt.
func (a *AttemptDatabaseAdapter) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	m, err := fromDomainAttempt(attempt)
	if err != nil {
		return err
	}

	_, err = GetExecutor(ctx, a.db).ExecContext(ctx, insertAttemptQuery,
		m.ID,
		m.UserID,
		m.QuizID,
		m.Status,
		m.StartTime,
		m.FinishTime,
		m.TotalTimeTaken,
		string(m.Answers),
		m.TotalScore,
		m.PercentageScore,
		m.Passed,
		string(m.AnswerKey),
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

// GetAttemptByID returns (nil, nil) when the attempt does not exist.
func (a *AttemptDatabaseAdapter) GetAttemptByID(ctx context.Context, id string) (*domain.Attempt, error) {
	var m models.Attempt
	if err := GetExecutor(ctx, a.db).GetContext(ctx, &m, selectAttemptByIDQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attempt by ID %s: %w", id, err)
	}
	return toDomainAttempt(&m)
}

// CompleteAttempt writes the scored attempt if, and only if, it is still started.
func (a *AttemptDatabaseAdapter) CompleteAttempt(ctx context.Context, attempt *domain.Attempt) error {
	m, err := fromDomainAttempt(attempt)
	if err != nil {
		return err
	}

	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, completeAttemptQuery,
		m.Status,
		m.FinishTime,
		m.TotalTimeTaken,
		string(m.Answers),
		m.TotalScore,
		m.PercentageScore,
		m.Passed,
		m.UpdatedAt,
		m.ID,
		string(domain.AttemptStarted),
	)
	if err != nil {
		return fmt.Errorf("failed to complete attempt %s: %w", attempt.ID, err)
	}
	if err := expectOneRow(result, domain.ErrAttemptNotStarted); err != nil {
		if errors.Is(err, domain.ErrAttemptNotStarted) {
			return err
		}
		return fmt.Errorf("failed to complete attempt %s: %w", attempt.ID, err)
	}
	return nil
}

// MarkExpired moves a single started attempt to expired.
func (a *AttemptDatabaseAdapter) MarkExpired(ctx context.Context, id string, now time.Time) error {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, markExpiredQuery,
		string(domain.AttemptExpired),
		now,
		id,
		string(domain.AttemptStarted),
	)
	if err != nil {
		return fmt.Errorf("failed to expire attempt %s: %w", id, err)
	}
	return expectOneRow(result, domain.ErrAttemptNotStarted)
}

// ExpireStartedBefore expires every started attempt older than cutoff and
// reports how many rows changed.
func (a *AttemptDatabaseAdapter) ExpireStartedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, expireStartedBeforeQuery,
		string(domain.AttemptExpired),
		time.Now(),
		string(domain.AttemptStarted),
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to expire attempts started before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func fromDomainAttempt(d *domain.Attempt) (*models.Attempt, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot save nil attempt")
	}
	answers := d.Answers
	if answers == nil {
		answers = []domain.AnsweredQuestion{}
	}
	answersJSON, err := models.MarshalJSONText(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	var answerKey models.JSONText
	if len(d.AnswerKey) > 0 {
		answerKey, err = models.MarshalJSONText(d.AnswerKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encode answer key: %w", err)
		}
	}

	return &models.Attempt{
		ID:              d.ID,
		UserID:          d.UserID,
		QuizID:          d.QuizID,
		Status:          string(d.Status),
		StartTime:       d.StartTime,
		FinishTime:      util.TimePtrToNullTime(d.FinishTime),
		TotalTimeTaken:  d.TotalTimeTaken,
		Answers:         answersJSON,
		TotalScore:      d.TotalScore,
		PercentageScore: d.PercentageScore,
		Passed:          models.BoolToInt(d.Passed),
		AnswerKey:       answerKey,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

func toDomainAttempt(m *models.Attempt) (*domain.Attempt, error) {
	attempt := &domain.Attempt{
		ID:              m.ID,
		UserID:          m.UserID,
		QuizID:          m.QuizID,
		Status:          domain.AttemptStatus(m.Status),
		StartTime:       m.StartTime,
		FinishTime:      util.NullTimeToTimePtr(m.FinishTime),
		TotalTimeTaken:  m.TotalTimeTaken,
		Answers:         []domain.AnsweredQuestion{},
		TotalScore:      m.TotalScore,
		PercentageScore: m.PercentageScore,
		Passed:          m.Passed != 0,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if err := m.Answers.Unmarshal(&attempt.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of attempt %s: %w", m.ID, err)
	}
	if err := m.AnswerKey.Unmarshal(&attempt.AnswerKey); err != nil {
		return nil, fmt.Errorf("failed to decode answer key of attempt %s: %w", m.ID, err)
	}
	return attempt, nil
}
