package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmind/flashmind-backend/internal/model"
)

// ProfessorRepository handles professor profile data access.
type ProfessorRepository struct {
	pool *pgxpool.Pool
}

// NewProfessorRepository creates a new ProfessorRepository.
func NewProfessorRepository(pool *pgxpool.Pool) *ProfessorRepository {
	return &ProfessorRepository{pool: pool}
}

// GetByID retrieves a professor by ID.
func (r *ProfessorRepository) GetByID(ctx context.Context, id int) (*model.Professor, error) {
	p := &model.Professor{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, first_name, last_name, created_at
		 FROM professors WHERE id = $1`, id,
	).Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return p, nil
}

// GetByUserID retrieves the professor profile attached to a user account.
func (r *ProfessorRepository) GetByUserID(ctx context.Context, userID int) (*model.Professor, error) {
	p := &model.Professor{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, first_name, last_name, created_at
		 FROM professors WHERE user_id = $1`, userID,
	).Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return p, nil
}

// Create inserts a new professor profile.
func (r *ProfessorRepository) Create(ctx context.Context, p *model.Professor) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO professors (user_id, first_name, last_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		p.UserID, p.FirstName, p.LastName,
	).Scan(&p.ID, &p.CreatedAt)
}

// NamesByID retrieves every professor's display name keyed by professor ID.
// Used to label quiz summaries without a per-quiz lookup.
func (r *ProfessorRepository) NamesByID(ctx context.Context) (map[int]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name || ' ' || last_name FROM professors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int]string)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
