package models

import (
	"database/sql"
	"time"
)

// Oracle has no BOOLEAN column type before 23c, so flags are NUMBER(1).

// Quiz is a row of the quizzes table.
type Quiz struct {
	ID               string         `db:"ID"`
	Title            string         `db:"TITLE"`
	Description      sql.NullString `db:"DESCRIPTION"`
	Category         sql.NullString `db:"CATEGORY"`
	TimeLimit        int            `db:"TIME_LIMIT"`
	PassingScore     int            `db:"PASSING_SCORE"`
	ShuffleQuestions int            `db:"SHUFFLE_QUESTIONS"`
	IsPublic         int            `db:"IS_PUBLIC"`
	CreatorID        sql.NullString `db:"CREATOR_ID"`
	Attempts         int64          `db:"ATTEMPTS"`
	ScoreSum         int64          `db:"SCORE_SUM"`
	AvgScore         float64        `db:"AVG_SCORE"`
	CreatedAt        time.Time      `db:"CREATED_AT"`
	UpdatedAt        time.Time      `db:"UPDATED_AT"`
	DeletedAt        sql.NullTime   `db:"DELETED_AT"`
}

// Question is a row of the questions table. POSITION keeps the author's order.
type Question struct {
	ID          string         `db:"ID"`
	QuizID      string         `db:"QUIZ_ID"`
	Position    int            `db:"POSITION"`
	Text        string         `db:"QUESTION_TEXT"`
	Choices     StringSlice    `db:"CHOICES"`
	RightAnswer int            `db:"RIGHT_ANSWER"`
	Explanation sql.NullString `db:"EXPLANATION"`
	Points      int            `db:"POINTS"`
	Difficulty  string         `db:"DIFFICULTY"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	UpdatedAt   time.Time      `db:"UPDATED_AT"`
}

func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
