package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmind/flashmind-backend/internal/model"
)

// QuizRepository handles quiz data access.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func scanQuiz(row interface{ Scan(dest ...any) error }) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := row.Scan(&q.ID, &q.Title, &q.Description, &q.Code,
		&q.DurationMinutes, &q.ProfessorID, &q.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return q, nil
}

// GetByID retrieves a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id int) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT id, title, description, code, duration_minutes, professor_id, created_at
		 FROM quizzes WHERE id = $1`, id))
}

// GetByCode retrieves a quiz by its unique join code.
func (r *QuizRepository) GetByCode(ctx context.Context, code string) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT id, title, description, code, duration_minutes, professor_id, created_at
		 FROM quizzes WHERE code = $1`, code))
}

// ExistsByCode reports whether any quiz holds the given join code.
func (r *QuizRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM quizzes WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// ListAll retrieves every quiz, newest first.
func (r *QuizRepository) ListAll(ctx context.Context) ([]model.Quiz, error) {
	return r.list(ctx,
		`SELECT id, title, description, code, duration_minutes, professor_id, created_at
		 FROM quizzes ORDER BY created_at DESC`)
}

// ListByProfessor retrieves a professor's quizzes, newest first.
func (r *QuizRepository) ListByProfessor(ctx context.Context, professorID int) ([]model.Quiz, error) {
	return r.list(ctx,
		`SELECT id, title, description, code, duration_minutes, professor_id, created_at
		 FROM quizzes WHERE professor_id = $1 ORDER BY created_at DESC`, professorID)
}

func (r *QuizRepository) list(ctx context.Context, query string, args ...any) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quizzes []model.Quiz
	for rows.Next() {
		var q model.Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.Description, &q.Code,
			&q.DurationMinutes, &q.ProfessorID, &q.CreatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// CreateWithQuestions inserts a quiz together with its questions and
// responses in one transaction.
func (r *QuizRepository) CreateWithQuestions(ctx context.Context, q *model.Quiz, questions []model.CreateQuestionRequest) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (title, description, code, duration_minutes, professor_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		q.Title, q.Description, q.Code, q.DurationMinutes, q.ProfessorID,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return translateUnique(err)
	}

	for i, question := range questions {
		var questionID int
		err = tx.QueryRow(ctx,
			`INSERT INTO questions (quiz_id, question_text, position)
			 VALUES ($1, $2, $3) RETURNING id`,
			q.ID, question.QuestionText, i+1,
		).Scan(&questionID)
		if err != nil {
			return err
		}
		for _, resp := range question.Responses {
			if _, err := tx.Exec(ctx,
				`INSERT INTO responses (question_id, response_text, is_correct)
				 VALUES ($1, $2, $3)`,
				questionID, resp.ResponseText, resp.IsCorrect); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

// Delete removes a quiz by ID. Questions, responses and participations
// follow through ON DELETE CASCADE, so the removal is atomic.
func (r *QuizRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	return err
}
