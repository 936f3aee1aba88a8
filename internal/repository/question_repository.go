package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmind/flashmind-backend/internal/model"
)

// QuestionRepository handles question and response data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListViewsByQuiz retrieves a quiz's questions with their responses in
// two batched queries (one for questions, one for all responses).
func (r *QuestionRepository) ListViewsByQuiz(ctx context.Context, quizID int) ([]model.QuestionView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_text FROM questions
		 WHERE quiz_id = $1 ORDER BY position, id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []model.QuestionView
	index := make(map[int]int)
	for rows.Next() {
		var v model.QuestionView
		if err := rows.Scan(&v.ID, &v.QuestionText); err != nil {
			return nil, err
		}
		index[v.ID] = len(views)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return views, nil
	}

	respRows, err := r.pool.Query(ctx,
		`SELECT r.id, r.question_id, r.response_text, r.is_correct
		 FROM responses r
		 JOIN questions q ON q.id = r.question_id
		 WHERE q.quiz_id = $1
		 ORDER BY r.id`, quizID)
	if err != nil {
		return nil, err
	}
	defer respRows.Close()

	for respRows.Next() {
		var resp model.Response
		if err := respRows.Scan(&resp.ID, &resp.QuestionID, &resp.ResponseText, &resp.IsCorrect); err != nil {
			return nil, err
		}
		if i, ok := index[resp.QuestionID]; ok {
			views[i].Responses = append(views[i].Responses, resp)
		}
	}
	return views, respRows.Err()
}

// CountByQuiz returns the number of questions in one quiz.
func (r *QuestionRepository) CountByQuiz(ctx context.Context, quizID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE quiz_id = $1`, quizID).Scan(&count)
	return count, err
}

// CountsByQuiz returns question counts for every quiz in one grouped
// query, keyed by quiz ID. Quizzes without questions are absent.
func (r *QuestionRepository) CountsByQuiz(ctx context.Context) (map[int]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT quiz_id, COUNT(*) FROM questions GROUP BY quiz_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var quizID, count int
		if err := rows.Scan(&quizID, &count); err != nil {
			return nil, err
		}
		counts[quizID] = count
	}
	return counts, rows.Err()
}
