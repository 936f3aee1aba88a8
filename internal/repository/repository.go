package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors shared by all repositories. Services translate these
// into their own business errors.
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrDuplicateUsername  = errors.New("user with this username already exists")
	ErrDuplicateQuizCode  = errors.New("quiz with this code already exists")
	ErrDuplicateAttempt   = errors.New("participation for this user and quiz already exists")
	errUnknownConstraint  = errors.New("unique constraint violated")
)

// translateNotFound maps pgx.ErrNoRows onto ErrNotFound and passes
// every other error through.
func translateNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// translateUnique maps a 23505 unique violation onto the sentinel for
// the violated constraint.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrDuplicateEmail
	case "users_username_key":
		return ErrDuplicateUsername
	case "quizzes_code_key":
		return ErrDuplicateQuizCode
	case "participations_user_id_quiz_id_key":
		return ErrDuplicateAttempt
	default:
		return errUnknownConstraint
	}
}
