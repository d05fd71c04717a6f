package domain

// ScoreResult is the output of Score.
type ScoreResult struct {
	Answers           []AnsweredQuestion
	TotalScore        int
	AnsweredCorrectly int
}

// Score grades submitted answers against a question set. Answers that reference
// an unknown question are dropped, as is any repeat answer to a question already
// graded, so the total never exceeds MaxPossibleScore. A negative selection such
// as NoChoice is always wrong. Output order follows input.
func Score(questions []Question, submitted []SubmittedAnswer) ScoreResult {
	byID := make(map[string]*Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	graded := make(map[string]struct{}, len(submitted))
	result := ScoreResult{Answers: make([]AnsweredQuestion, 0, len(submitted))}
	for _, answer := range submitted {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}
		if _, dup := graded[answer.QuestionID]; dup {
			continue
		}
		graded[answer.QuestionID] = struct{}{}

		isCorrect := answer.SelectedChoice >= 0 && answer.SelectedChoice == question.RightAnswer
		pointsEarned := 0
		if isCorrect {
			pointsEarned = question.Points
			result.AnsweredCorrectly++
		}
		result.TotalScore += pointsEarned

		result.Answers = append(result.Answers, AnsweredQuestion{
			QuestionID:     answer.QuestionID,
			SelectedChoice: answer.SelectedChoice,
			IsCorrect:      isCorrect,
			PointsEarned:   pointsEarned,
			TimeTaken:      answer.TimeTaken,
		})
	}
	return result
}

// MaxPossibleScore sums points over every question, answered or not.
func MaxPossibleScore(questions []Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

// Percentage returns round-half-up(totalScore*100/maxScore) using integer
// arithmetic. A quiz worth zero points scores 0.
func Percentage(totalScore, maxScore int) int {
	if maxScore <= 0 || totalScore <= 0 {
		return 0
	}
	return (200*totalScore + maxScore) / (2 * maxScore)
}

// Passed: a zero-point quiz can never be passed, whatever its passing score.
func Passed(percentage, passingScore, maxScore int) bool {
	if maxScore <= 0 {
		return false
	}
	return percentage >= passingScore
}

const (
	FeedbackExcellent = "Excellent! You aced this quiz."
	FeedbackGreat     = "Great job! You really know your stuff."
	FeedbackPassed    = "Good work! You passed the quiz."
	FeedbackClose     = "So close! Try again, you can do it."
	FeedbackKeepGoing = "Keep studying and try again soon."
)

// Feedback tiers are evaluated top to bottom; the first match wins.
func Feedback(score, passingScore int) string {
	switch {
	case score >= 90:
		return FeedbackExcellent
	case score >= 80:
		return FeedbackGreat
	case score >= passingScore:
		return FeedbackPassed
	case score >= passingScore-10:
		return FeedbackClose
	default:
		return FeedbackKeepGoing
	}
}
