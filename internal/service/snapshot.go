package service

import (
	"quizmaster/internal/domain"
	"quizmaster/internal/dto"
)

// BuildAttemptView projects a quiz onto what an attempt taker may see. The
// quiz is not modified. When the quiz asks for shuffling, the questions are
// permuted with Fisher–Yates using intn, which must return a uniform value in
// [0, n).
func BuildAttemptView(quiz *domain.Quiz, intn func(n int) int) *dto.AttemptQuizView {
	questions := make([]dto.AttemptQuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		choices := make([]string, len(q.Choices))
		copy(choices, q.Choices)
		questions = append(questions, dto.AttemptQuestionView{
			ID:         q.ID,
			Text:       q.Text,
			Choices:    choices,
			Points:     q.Points,
			Difficulty: string(q.Difficulty),
		})
	}

	if quiz.ShuffleQuestions {
		for i := len(questions) - 1; i > 0; i-- {
			j := intn(i + 1)
			questions[i], questions[j] = questions[j], questions[i]
		}
	}

	return &dto.AttemptQuizView{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Category:    quiz.Category,
		TimeLimit:   quiz.TimeLimit,
		Questions:   questions,
	}
}
