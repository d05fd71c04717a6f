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
	selectQuizByIDQuery = `SELECT ID, TITLE, DESCRIPTION, CATEGORY, TIME_LIMIT, PASSING_SCORE, SHUFFLE_QUESTIONS, IS_PUBLIC,
		CREATOR_ID, ATTEMPTS, SCORE_SUM, AVG_SCORE, CREATED_AT, UPDATED_AT, DELETED_AT
	FROM quizzes
	WHERE ID = :1 AND DELETED_AT IS NULL`

	selectQuestionsByQuizQuery = `SELECT ID, QUIZ_ID, POSITION, QUESTION_TEXT, CHOICES, RIGHT_ANSWER, EXPLANATION, POINTS, DIFFICULTY,
		CREATED_AT, UPDATED_AT
	FROM questions
	WHERE QUIZ_ID = :1
	ORDER BY POSITION`

	// Oracle evaluates every right-hand side against the pre-update row, so the
	// average is derived from the same count and sum that are being incremented.
	incrementAttemptStatsQuery = `UPDATE quizzes
	SET ATTEMPTS = ATTEMPTS + 1,
		SCORE_SUM = SCORE_SUM + :1,
		AVG_SCORE = (SCORE_SUM + :2) / (ATTEMPTS + 1),
		UPDATED_AT = :3
	WHERE ID = :4`

	insertQuizQuery = `INSERT INTO quizzes (
		ID, TITLE, DESCRIPTION, CATEGORY, TIME_LIMIT, PASSING_SCORE, SHUFFLE_QUESTIONS, IS_PUBLIC,
		CREATOR_ID, ATTEMPTS, SCORE_SUM, AVG_SCORE, CREATED_AT, UPDATED_AT
	) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, 0, 0, 0, :10, :11)`

	insertQuestionQuery = `INSERT INTO questions (
		ID, QUIZ_ID, POSITION, QUESTION_TEXT, CHOICES, RIGHT_ANSWER, EXPLANATION, POINTS, DIFFICULTY, CREATED_AT, UPDATED_AT
	) VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11)`
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.
type QuizDatabaseAdapter struct {
	db DBTX
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db DBTX) *QuizDatabaseAdapter {
	return &QuizDatabaseAdapter{db: db}
}

var _ domain.QuizRepository = (*QuizDatabaseAdapter)(nil)

// GetQuizByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	db := GetExecutor(ctx, a.db)

	var modelQuiz models.Quiz
	if err := db.GetContext(ctx, &modelQuiz, selectQuizByIDQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}

	var modelQuestions []models.Question
	if err := db.SelectContext(ctx, &modelQuestions, selectQuestionsByQuizQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz, modelQuestions), nil
}

// IncrementAttemptStats implements domain.QuizRepository
func (a *QuizDatabaseAdapter) IncrementAttemptStats(ctx context.Context, quizID string, percentage int) error {
	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, incrementAttemptStatsQuery,
		percentage,
		percentage,
		time.Now(),
		quizID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment attempt stats for quiz %s: %w", quizID, err)
	}
	if err := expectOneRow(result, sql.ErrNoRows); err != nil {
		return fmt.Errorf("failed to increment attempt stats for quiz %s: %w", quizID, err)
	}
	return nil
}

// CreateQuiz inserts a quiz and its questions. Run it inside WithTransaction
// so a failed question insert does not leave a partial quiz behind.
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	db := GetExecutor(ctx, a.db)

	now := time.Now()
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	_, err := db.ExecContext(ctx, insertQuizQuery,
		quiz.ID,
		quiz.Title,
		util.StringToNullString(quiz.Description),
		util.StringToNullString(quiz.Category),
		quiz.TimeLimit,
		quiz.PassingScore,
		models.BoolToInt(quiz.ShuffleQuestions),
		models.BoolToInt(quiz.IsPublic),
		util.StringToNullString(quiz.CreatorID),
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert quiz: %w", err)
	}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		choices, err := models.StringSlice(q.Choices).Value()
		if err != nil {
			return fmt.Errorf("failed to encode choices for question %d: %w", i, err)
		}
		_, err = db.ExecContext(ctx, insertQuestionQuery,
			q.ID,
			quiz.ID,
			i,
			q.Text,
			choices,
			q.RightAnswer,
			util.StringToNullString(q.Explanation),
			q.Points,
			string(q.Difficulty),
			now,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert question %d of quiz %s: %w", i, quiz.ID, err)
		}
	}
	return nil
}

func toDomainQuiz(m *models.Quiz, questions []models.Question) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description.String,
		Category:         m.Category.String,
		TimeLimit:        m.TimeLimit,
		PassingScore:     m.PassingScore,
		ShuffleQuestions: m.ShuffleQuestions != 0,
		IsPublic:         m.IsPublic != 0,
		CreatorID:        m.CreatorID.String,
		Attempts:         m.Attempts,
		ScoreSum:         m.ScoreSum,
		AvgScore:         m.AvgScore,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		Questions:        make([]domain.Question, 0, len(questions)),
	}
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:          q.ID,
			Text:        q.Text,
			Choices:     []string(q.Choices),
			RightAnswer: q.RightAnswer,
			Explanation: q.Explanation.String,
			Points:      q.Points,
			Difficulty:  domain.ParseDifficulty(q.Difficulty),
		})
	}
	return quiz
}
