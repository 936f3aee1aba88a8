package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmind/flashmind-backend/internal/model"
)

// ParticipationRepository handles participation data access.
type ParticipationRepository struct {
	pool *pgxpool.Pool
}

// NewParticipationRepository creates a new ParticipationRepository.
func NewParticipationRepository(pool *pgxpool.Pool) *ParticipationRepository {
	return &ParticipationRepository{pool: pool}
}

// GetByID retrieves a participation by ID.
func (r *ParticipationRepository) GetByID(ctx context.Context, id int) (*model.Participation, error) {
	p := &model.Participation{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, quiz_id, user_id, score, created_at
		 FROM participations WHERE id = $1`, id,
	).Scan(&p.ID, &p.QuizID, &p.UserID, &p.Score, &p.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return p, nil
}

// ListByUser retrieves every participation of one user.
func (r *ParticipationRepository) ListByUser(ctx context.Context, userID int) ([]model.Participation, error) {
	return r.list(ctx,
		`SELECT id, quiz_id, user_id, score, created_at
		 FROM participations WHERE user_id = $1`, userID)
}

// ListByQuiz retrieves every participation recorded for one quiz.
func (r *ParticipationRepository) ListByQuiz(ctx context.Context, quizID int) ([]model.Participation, error) {
	return r.list(ctx,
		`SELECT id, quiz_id, user_id, score, created_at
		 FROM participations WHERE quiz_id = $1`, quizID)
}

// ListAll retrieves every participation. The leaderboard groups these
// by user in memory instead of issuing one query per student.
func (r *ParticipationRepository) ListAll(ctx context.Context) ([]model.Participation, error) {
	return r.list(ctx,
		`SELECT id, quiz_id, user_id, score, created_at FROM participations`)
}

func (r *ParticipationRepository) list(ctx context.Context, query string, args ...any) ([]model.Participation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participations []model.Participation
	for rows.Next() {
		var p model.Participation
		if err := rows.Scan(&p.ID, &p.QuizID, &p.UserID, &p.Score, &p.CreatedAt); err != nil {
			return nil, err
		}
		participations = append(participations, p)
	}
	return participations, rows.Err()
}

// ExistsByUserAndQuiz reports whether the user already participated in
// the quiz.
func (r *ParticipationRepository) ExistsByUserAndQuiz(ctx context.Context, userID, quizID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM participations WHERE user_id = $1 AND quiz_id = $2)`,
		userID, quizID).Scan(&exists)
	return exists, err
}

// Create inserts a new participation. A unique violation on
// (user_id, quiz_id) surfaces as ErrDuplicateAttempt.
func (r *ParticipationRepository) Create(ctx context.Context, p *model.Participation) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO participations (quiz_id, user_id, score)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.QuizID, p.UserID, p.Score,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}
