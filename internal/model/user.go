package model

import "time"

// Role distinguishes student accounts from professor accounts.
type Role string

const (
	RoleStudent   Role = "student"
	RoleProfessor Role = "professor"
)

// User represents an account. Students and professors share this table;
// the role-specific profile lives in students/professors.
type User struct {
	ID                       int        `json:"id"`
	Email                    string     `json:"email"`
	Username                 string     `json:"username"`
	PasswordHash             string     `json:"-"`
	Role                     Role       `json:"role"`
	Enabled                  bool       `json:"enabled"`
	EmailVerified            bool       `json:"email_verified"`
	VerificationToken        *string    `json:"-"`
	VerificationTokenExpiry  *time.Time `json:"-"`
	PasswordResetToken       *string    `json:"-"`
	PasswordResetTokenExpiry *time.Time `json:"-"`
	RefreshToken             *string    `json:"-"`
	CreatedAt                time.Time  `json:"created_at"`
}

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Username  string `json:"username" binding:"required,min=3,max=50"`
	Email     string `json:"email" binding:"required,email,max=255"`
	Password  string `json:"password" binding:"required,min=8,max=128"`
	Role      string `json:"role" binding:"required,oneof=student professor"`
	FirstName string `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string `json:"last_name" binding:"required,min=1,max=100"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// LoginResponse is returned after a successful login or token refresh.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
}

// RefreshTokenRequest carries the refresh token to rotate.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ResendVerificationRequest asks for a new verification email.
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordRequest starts the password reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes the password reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}
