package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quizmaster/internal/domain"
	"quizmaster/internal/repository/models"
	"quizmaster/internal/util"
)

// UserDatabaseAdapter implements domain.UserRepository using sqlx.
type UserDatabaseAdapter struct {
	db DBTX
}

func NewUserDatabaseAdapter(db DBTX) *UserDatabaseAdapter {
	return &UserDatabaseAdapter{db: db}
}

var _ domain.UserRepository = (*UserDatabaseAdapter)(nil)

// IncrementQuizzesTaken bumps the user's lifetime completed-attempt counter.
func (a *UserDatabaseAdapter) IncrementQuizzesTaken(ctx context.Context, userID string) error {
	query := `UPDATE users SET QUIZZES_TAKEN = QUIZZES_TAKEN + 1, UPDATED_AT = :1 WHERE ID = :2 AND DELETED_AT IS NULL`

	result, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to increment quizzes taken for user %s: %w", userID, err)
	}
	if err := expectOneRow(result, sql.ErrNoRows); err != nil {
		return fmt.Errorf("failed to increment quizzes taken for user %s: %w", userID, err)
	}
	return nil
}

// CreateUser inserts a user. The ID is generated when empty.
func (a *UserDatabaseAdapter) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (ID, EMAIL, NAME, ROLE, QUIZZES_TAKEN, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`

	if user.ID == "" {
		user.ID = util.NewULID()
	}
	if user.Role == "" {
		user.Role = string(domain.RoleUser)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		user.QuizzesTaken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		// ORA-00001 surfaces here for a duplicate email.
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
