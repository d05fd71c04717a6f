package domain

import "time"

// AttemptStatus is the lifecycle state of an Attempt.
type AttemptStatus string

const (
	AttemptStarted   AttemptStatus = "started"
	AttemptCompleted AttemptStatus = "completed"
	// AttemptExpired is only reached when abandoned-attempt expiry is enabled.
	AttemptExpired AttemptStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptExpired
}

// NoChoice is the selection recorded when the client sent none, or sent
// something other than an integer. It never matches a right answer.
const NoChoice = -1

// SubmittedAnswer is one raw answer from the client payload.
type SubmittedAnswer struct {
	QuestionID     string
	SelectedChoice int
	TimeTaken      int
}

// AnsweredQuestion is a scored answer stored on a completed Attempt.
type AnsweredQuestion struct {
	QuestionID     string `json:"questionId"`
	SelectedChoice int    `json:"selectedChoice"`
	IsCorrect      bool   `json:"isCorrect"`
	PointsEarned   int    `json:"pointsEarned"`
	TimeTaken      int    `json:"timeTaken"`
}

// Attempt is one user's single pass at a quiz. It is created at start,
// mutated exactly once by Complete and immutable afterwards.
type Attempt struct {
	ID              string
	UserID          string
	QuizID          string
	Status          AttemptStatus
	StartTime       time.Time
	FinishTime      *time.Time
	TotalTimeTaken  int // seconds
	Answers         []AnsweredQuestion
	TotalScore      int
	PercentageScore int
	Passed          bool
	// AnswerKey holds the question set frozen at start under the snapshot
	// scoring basis. It is empty under the live basis.
	AnswerKey []Question
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAttempt creates an attempt in the started state.
func NewAttempt(id, userID, quizID string, now time.Time) *Attempt {
	return &Attempt{
		ID:        id,
		UserID:    userID,
		QuizID:    quizID,
		Status:    AttemptStarted,
		StartTime: now,
		Answers:   []AnsweredQuestion{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOwnedBy reports whether userID started the attempt.
func (a *Attempt) IsOwnedBy(userID string) bool {
	return a.UserID == userID
}

// IsAbandoned reports whether a started attempt is older than window.
// A zero window means attempts never expire.
func (a *Attempt) IsAbandoned(now time.Time, window time.Duration) bool {
	return window > 0 && a.Status == AttemptStarted && now.Sub(a.StartTime) > window
}

// Complete applies a score result and moves the attempt to completed.
func (a *Attempt) Complete(result ScoreResult, percentage int, passed bool, now time.Time) error {
	if a.Status != AttemptStarted {
		return ErrAttemptNotStarted
	}
	finish := now
	a.Answers = result.Answers
	a.TotalScore = result.TotalScore
	a.PercentageScore = percentage
	a.Passed = passed
	a.Status = AttemptCompleted
	a.FinishTime = &finish
	a.TotalTimeTaken = ElapsedSeconds(a.StartTime, finish)
	a.UpdatedAt = now
	return nil
}

// ElapsedSeconds rounds the span between start and finish to whole seconds, half up.
func ElapsedSeconds(start, finish time.Time) int {
	d := finish.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d.Round(time.Second) / time.Second)
}
