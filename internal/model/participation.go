package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participation is one student's completed attempt at one quiz.
// At most one participation exists per (user, quiz) pair; the service
// layer enforces the rule and the unique constraint backstops it.
type Participation struct {
	ID        int             `json:"id"`
	QuizID    int             `json:"quiz_id"`
	UserID    int             `json:"user_id"`
	Score     decimal.Decimal `json:"score"`
	CreatedAt time.Time       `json:"created_at"`
}

// ParticipationDetail is the per-attempt projection with derived counts.
type ParticipationDetail struct {
	ID              int             `json:"id"`
	QuizID          int             `json:"quiz_id"`
	QuizTitle       string          `json:"quiz_title"`
	Score           decimal.Decimal `json:"score"`
	CompletedAt     time.Time       `json:"completed_at"`
	DurationMinutes int             `json:"duration_minutes"`
	QuestionCount   int             `json:"question_count"`
	CorrectAnswers  int             `json:"correct_answers"`
}

// QuizHistoryEntry is one row of a student's attempt history, annotated
// with the student's rank among all participants of that quiz.
type QuizHistoryEntry struct {
	ParticipationID   int             `json:"participation_id"`
	QuizID            int             `json:"quiz_id"`
	QuizTitle         string          `json:"quiz_title"`
	QuizDescription   string          `json:"quiz_description"`
	ProfessorName     string          `json:"professor_name"`
	Score             decimal.Decimal `json:"score"`
	CompletedAt       time.Time       `json:"completed_at"`
	Rank              int             `json:"rank"`
	TotalParticipants int             `json:"total_participants"`
}

// StudentStats aggregates a student's participation history.
type StudentStats struct {
	StudentName    string          `json:"student_name"`
	Username       string          `json:"username"`
	TotalQuizzes   int             `json:"total_quizzes"`
	AverageScore   decimal.Decimal `json:"average_score"`
	CurrentStreak  int             `json:"current_streak"`
	BestScore      decimal.Decimal `json:"best_score"`
	PerfectQuizzes int             `json:"perfect_quizzes"`
	SuccessRate    decimal.Decimal `json:"success_rate"`
}

// LeaderboardEntry is the per-student projection used by the global
// leaderboard and the most-active ranking.
type LeaderboardEntry struct {
	StudentName  string          `json:"student_name"`
	Username     string          `json:"username"`
	TotalQuizzes int             `json:"total_quizzes"`
	AverageScore decimal.Decimal `json:"average_score"`
}
