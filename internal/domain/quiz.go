package domain

import (
	"strings"
	"time"
)

// Difficulty of a single question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps stored values onto the enum; unknown values become medium,
// the default a question is created with.
func ParseDifficulty(diff string) Difficulty {
	switch strings.ToLower(diff) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Question is a multiple-choice question owned by exactly one Quiz.
type Question struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Choices     []string   `json:"choices"`
	RightAnswer int        `json:"rightAnswer"` // index into Choices
	Explanation string     `json:"explanation,omitempty"`
	Points      int        `json:"points"`
	Difficulty  Difficulty `json:"difficulty"`
}

// Quiz represents a quiz in the domain
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Category         string     `json:"category"`
	Questions        []Question `json:"questions"`
	TimeLimit        int        `json:"timeLimit"` // minutes
	PassingScore     int        `json:"passingScore"`
	ShuffleQuestions bool       `json:"shuffleQuestions"`
	IsPublic         bool       `json:"isPublic"`
	CreatorID        string     `json:"creatorId"`
	Attempts         int64      `json:"attempts"`
	ScoreSum         int64      `json:"scoreSum"`
	AvgScore         float64    `json:"avgScore"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// FindQuestion returns the question with the given id, or nil.
func (q *Quiz) FindQuestion(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// IsOwnedBy reports whether userID created the quiz.
func (q *Quiz) IsOwnedBy(userID string) bool {
	return q.CreatorID != "" && q.CreatorID == userID
}

// CanBeAttemptedBy: public quizzes are open to everyone, private ones only to their owner.
func (q *Quiz) CanBeAttemptedBy(p Principal) bool {
	return q.IsPublic || q.IsOwnedBy(p.ID)
}

// AverageScore is the mean percentage over all completed attempts.
func AverageScore(scoreSum, attempts int64) float64 {
	if attempts <= 0 {
		return 0
	}
	return float64(scoreSum) / float64(attempts)
}
