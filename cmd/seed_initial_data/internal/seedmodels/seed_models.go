package seedmodels

// SeedUser defines a user in the JSON seed file.
type SeedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// SeedQuestion defines one question of a seeded quiz.
type SeedQuestion struct {
	Text        string   `json:"text"`
	Choices     []string `json:"choices"`
	RightAnswer int      `json:"right_answer"`
	Explanation string   `json:"explanation"`
	Points      int      `json:"points"`
	Difficulty  string   `json:"difficulty"`
}

// SeedQuiz defines a quiz in the JSON seed file. Creator is the id of a seeded user.
type SeedQuiz struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Category         string         `json:"category"`
	TimeLimit        int            `json:"time_limit"`
	PassingScore     int            `json:"passing_score"`
	ShuffleQuestions bool           `json:"shuffle_questions"`
	IsPublic         bool           `json:"is_public"`
	Creator          string         `json:"creator"`
	Questions        []SeedQuestion `json:"questions"`
}

// SeedData is the root of the seed file.
type SeedData struct {
	Users   []SeedUser `json:"users"`
	Quizzes []SeedQuiz `json:"quizzes"`
}
