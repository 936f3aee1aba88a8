package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmind/flashmind-backend/internal/model"
)

// StudentRepository handles student profile data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, first_name, last_name, created_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return s, nil
}

// GetByUserID retrieves the student profile attached to a user account.
func (r *StudentRepository) GetByUserID(ctx context.Context, userID int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, first_name, last_name, created_at
		 FROM students WHERE user_id = $1`, userID,
	).Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return s, nil
}

// Create inserts a new student profile.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (user_id, first_name, last_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.UserID, s.FirstName, s.LastName,
	).Scan(&s.ID, &s.CreatedAt)
}

// UpdateNames modifies a student's first and last name.
func (r *StudentRepository) UpdateNames(ctx context.Context, id int, firstName, lastName string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE students SET first_name = $1, last_name = $2 WHERE id = $3`,
		firstName, lastName, id)
	return err
}

// Delete removes a student profile by ID.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

// StudentWithUser is a student profile joined with its account identity,
// used by the leaderboard projections.
type StudentWithUser struct {
	model.Student
	Username string
	Email    string
}

// ListWithUsers retrieves every student together with their account
// username and email in a single query.
func (r *StudentRepository) ListWithUsers(ctx context.Context) ([]StudentWithUser, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.user_id, s.first_name, s.last_name, s.created_at,
		        u.username, u.email
		 FROM students s
		 JOIN users u ON u.id = s.user_id
		 ORDER BY s.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []StudentWithUser
	for rows.Next() {
		var s StudentWithUser
		if err := rows.Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.CreatedAt,
			&s.Username, &s.Email); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
