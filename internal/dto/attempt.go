package dto

import (
	"encoding/json"
	"math"
	"time"
)

// AttemptQuestionView is a question as shown to someone taking the quiz.
// It deliberately has no field for the right answer or the explanation.
type AttemptQuestionView struct {
	ID         string   `json:"_id"`
	Text       string   `json:"text"`
	Choices    []string `json:"choices"`
	Points     int      `json:"points"`
	Difficulty string   `json:"difficulty"`
}

// AttemptQuizView is the quiz snapshot returned when an attempt starts.
type AttemptQuizView struct {
	ID          string                `json:"_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	TimeLimit   int                   `json:"timeLimit"`
	Questions   []AttemptQuestionView `json:"questions"`
}

type StartAttemptResponse struct {
	Success   bool             `json:"success"`
	AttemptID string           `json:"attemptId"`
	Data      *AttemptQuizView `json:"data"`
}

// MaxAnswerSeconds caps the time reported for a single answer.
const MaxAnswerSeconds = 86400

// SubmitAnswerRequest is one answer in a submission.
type SubmitAnswerRequest struct {
	QuestionID     string `json:"questionId"`
	SelectedChoice *int   `json:"selectedChoice"` // nil unless a JSON integer was sent
	TimeTaken      int    `json:"timeTaken"`      // seconds, clamped to [0, MaxAnswerSeconds]
}

// UnmarshalJSON never rejects an answer. A field of the wrong type is left
// empty, so the answer ends up unmatched or wrong when scored.
func (a *SubmitAnswerRequest) UnmarshalJSON(data []byte) error {
	*a = SubmitAnswerRequest{}
	var raw struct {
		QuestionID     json.RawMessage `json:"questionId"`
		SelectedChoice json.RawMessage `json:"selectedChoice"`
		TimeTaken      json.RawMessage `json:"timeTaken"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	if len(raw.QuestionID) > 0 {
		_ = json.Unmarshal(raw.QuestionID, &a.QuestionID)
	}
	if n, ok := jsonInteger(raw.SelectedChoice); ok {
		a.SelectedChoice = &n
	}
	if n, ok := jsonInteger(raw.TimeTaken); ok {
		a.TimeTaken = min(max(n, 0), MaxAnswerSeconds)
	}
	return nil
}

// jsonInteger accepts a JSON number with no fractional part. Strings, null,
// booleans and anything else are rejected.
func jsonInteger(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || raw[0] == '"' || string(raw) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// SubmitAttemptRequest: a missing answers list is treated as an empty submission.
type SubmitAttemptRequest struct {
	Answers []SubmitAnswerRequest `json:"answers" validate:"max=500"`
}

type SubmitAttemptResult struct {
	AttemptID         string `json:"attemptId"`
	TotalScore        int    `json:"totalScore"`
	PercentageScore   int    `json:"percentageScore"`
	Passed            bool   `json:"passed"`
	TotalQuestions    int    `json:"totalQuestions"`
	AnsweredCorrectly int    `json:"answeredCorrectly"`
	TimeTaken         int    `json:"timeTaken"`
	Feedback          string `json:"feedback"`
}

type SubmitAttemptResponse struct {
	Success bool                 `json:"success"`
	Data    *SubmitAttemptResult `json:"data"`
}

type AnsweredQuestionResponse struct {
	QuestionID     string `json:"questionId"`
	SelectedChoice int    `json:"selectedChoice"`
	IsCorrect      bool   `json:"isCorrect"`
	PointsEarned   int    `json:"pointsEarned"`
	TimeTaken      int    `json:"timeTaken"`
}

// QuizSummary is the part of the quiz embedded in an attempt detail.
type QuizSummary struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type AttemptDetail struct {
	ID              string                     `json:"_id"`
	UserID          string                     `json:"user"`
	QuizID          string                     `json:"quizId"`
	Quiz            *QuizSummary               `json:"quiz"` // null when the quiz has been deleted
	Status          string                     `json:"status"`
	StartTime       time.Time                  `json:"startTime"`
	FinishTime      *time.Time                 `json:"finishTime,omitempty"`
	TotalTimeTaken  int                        `json:"totalTimeTaken"`
	Answers         []AnsweredQuestionResponse `json:"answers"`
	TotalScore      int                        `json:"totalScore"`
	PercentageScore int                        `json:"percentageScore"`
	Passed          bool                       `json:"passed"`
	CreatedAt       time.Time                  `json:"createdAt"`
	UpdatedAt       time.Time                  `json:"updatedAt"`
}

type GetAttemptResponse struct {
	Success bool           `json:"success"`
	Data    *AttemptDetail `json:"data"`
}
