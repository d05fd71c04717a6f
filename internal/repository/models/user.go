package models

import (
	"database/sql"
	"time"
)

// User represents a user in the system.
type User struct {
	ID           string         `db:"ID"` // ULID
	Email        string         `db:"EMAIL"`
	Name         sql.NullString `db:"NAME"`
	Role         string         `db:"ROLE"`
	QuizzesTaken int64          `db:"QUIZZES_TAKEN"` // lifetime count of completed attempts
	CreatedAt    time.Time      `db:"CREATED_AT"`
	UpdatedAt    time.Time      `db:"UPDATED_AT"`
	DeletedAt    sql.NullTime   `db:"DELETED_AT"`
}

// Attempt is a row of the attempts table.
type Attempt struct {
	ID              string       `db:"ID"` // ULID
	UserID          string       `db:"USER_ID"`
	QuizID          string       `db:"QUIZ_ID"`
	Status          string       `db:"STATUS"`
	StartTime       time.Time    `db:"START_TIME"`
	FinishTime      sql.NullTime `db:"FINISH_TIME"`
	TotalTimeTaken  int          `db:"TOTAL_TIME_TAKEN"` // seconds
	Answers         JSONText     `db:"ANSWERS"`          // []domain.AnsweredQuestion
	TotalScore      int          `db:"TOTAL_SCORE"`
	PercentageScore int          `db:"PERCENTAGE_SCORE"`
	Passed          int          `db:"PASSED"`
	AnswerKey       JSONText     `db:"ANSWER_KEY"` // []domain.Question, snapshot scoring basis only
	CreatedAt       time.Time    `db:"CREATED_AT"`
	UpdatedAt       time.Time    `db:"UPDATED_AT"`
}
