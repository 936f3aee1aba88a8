package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flashmind/flashmind-backend/internal/model"
)

const userColumns = `id, email, username, password_hash, role, enabled, email_verified,
	 verification_token, verification_token_expiry,
	 password_reset_token, password_reset_token_expiry,
	 refresh_token, created_at`

// UserRepository handles account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role,
		&u.Enabled, &u.EmailVerified,
		&u.VerificationToken, &u.VerificationTokenExpiry,
		&u.PasswordResetToken, &u.PasswordResetTokenExpiry,
		&u.RefreshToken, &u.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByVerificationToken retrieves the user holding the given email
// verification token.
func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
}

// GetByPasswordResetToken retrieves the user holding the given password
// reset token.
func (r *UserRepository) GetByPasswordResetToken(ctx context.Context, token string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE password_reset_token = $1`, token))
}

// ExistsByEmail reports whether any user holds the given email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// ExistsByUsername reports whether any user holds the given username.
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, role, enabled, email_verified,
		                    verification_token, verification_token_expiry)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		u.Email, u.Username, u.PasswordHash, u.Role, u.Enabled, u.EmailVerified,
		u.VerificationToken, u.VerificationTokenExpiry,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return translateUnique(err)
	}
	return nil
}

// Delete removes a user by ID. Profile rows and participations follow
// through foreign key cascades.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// MarkVerified flags the email as verified, enables the account and
// clears the verification token.
func (r *UserRepository) MarkVerified(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET email_verified = TRUE, enabled = TRUE,
		        verification_token = NULL, verification_token_expiry = NULL
		 WHERE id = $1`, id)
	return err
}

// SetVerificationToken stores a fresh verification token and its expiry.
func (r *UserRepository) SetVerificationToken(ctx context.Context, id int, token string, expiry time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET verification_token = $1, verification_token_expiry = $2 WHERE id = $3`,
		token, expiry, id)
	return err
}

// SetRefreshToken stores the current refresh token; pass nil to revoke.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id int, token *string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $1 WHERE id = $2`, token, id)
	return err
}

// SetPasswordResetToken stores a fresh password reset token and its expiry.
func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id int, token string, expiry time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_reset_token = $1, password_reset_token_expiry = $2 WHERE id = $3`,
		token, expiry, id)
	return err
}

// ResetPassword replaces the password hash, clears the reset token and
// revokes the refresh token so every device must log in again.
func (r *UserRepository) ResetPassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1,
		        password_reset_token = NULL, password_reset_token_expiry = NULL,
		        refresh_token = NULL
		 WHERE id = $2`, passwordHash, id)
	return err
}
