package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quiz represents a quiz authored by a professor. Students locate it
// through its 6-character join code.
type Quiz struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Code            string    `json:"code"`
	DurationMinutes int       `json:"duration_minutes"`
	ProfessorID     int       `json:"professor_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// QuizSummary is the catalog projection of a quiz.
type QuizSummary struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Code            string `json:"code"`
	DurationMinutes int    `json:"duration_minutes"`
	QuestionCount   int    `json:"question_count"`
	ProfessorName   string `json:"professor_name"`
	Difficulty      string `json:"difficulty"`
}

// SubmitQuizRequest carries the score of a completed attempt.
// The score is a percentage in [0,100] computed by the client from the
// sanitized question set; the server records it as-is.
// A zero score is valid, so the field carries no required tag.
type SubmitQuizRequest struct {
	Score decimal.Decimal `json:"score"`
}

// CreateQuizRequest is the professor payload for authoring a new quiz.
type CreateQuizRequest struct {
	Title           string                  `json:"title" binding:"required,min=3,max=255"`
	Description     string                  `json:"description" binding:"max=2000"`
	DurationMinutes int                     `json:"duration_minutes" binding:"required,min=1,max=480"`
	Questions       []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}
