package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/repository"
)

// Account business errors.
var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailTaken               = errors.New("email is already in use")
	ErrUsernameTaken            = errors.New("username is already taken")
	ErrAccountDisabled          = errors.New("account is disabled")
	ErrEmailNotVerified         = errors.New("email is not verified")
	ErrEmailAlreadyVerified     = errors.New("email is already verified")
	ErrVerificationTokenInvalid = errors.New("verification token is invalid")
	ErrVerificationTokenExpired = errors.New("verification token has expired")
	ErrResetTokenInvalid        = errors.New("password reset token is invalid")
	ErrResetTokenExpired        = errors.New("password reset token has expired")
	ErrRefreshTokenInvalid      = errors.New("refresh token is invalid")
	ErrMailDelivery             = errors.New("mail delivery failed")
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
)

// AccountService handles signup, login, email verification, token
// refresh and password reset.
type AccountService struct {
	userRepo      UserRepository
	studentRepo   StudentRepository
	professorRepo ProfessorRepository
	auth          *AuthService
	mailer        Mailer
	log           zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	userRepo UserRepository,
	studentRepo StudentRepository,
	professorRepo ProfessorRepository,
	auth *AuthService,
	mailer Mailer,
	log zerolog.Logger,
) *AccountService {
	return &AccountService{
		userRepo:      userRepo,
		studentRepo:   studentRepo,
		professorRepo: professorRepo,
		auth:          auth,
		mailer:        mailer,
		log:           log,
	}
}

// Signup creates the user row, its role-specific profile and sends the
// verification email. The account starts disabled and unverified.
// If the verification email cannot be delivered, the freshly created
// account is removed again so no orphaned, never-notified user remains.
func (s *AccountService) Signup(ctx context.Context, req model.SignupRequest) error {
	if taken, err := s.userRepo.ExistsByEmail(ctx, req.Email); err != nil {
		return fmt.Errorf("check email: %w", err)
	} else if taken {
		return ErrEmailTaken
	}
	if taken, err := s.userRepo.ExistsByUsername(ctx, req.Username); err != nil {
		return fmt.Errorf("check username: %w", err)
	} else if taken {
		return ErrUsernameTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	token := uuid.New().String()
	expiry := time.Now().Add(verificationTokenTTL)

	user := &model.User{
		Email:                   req.Email,
		Username:                req.Username,
		PasswordHash:            hash,
		Role:                    model.Role(req.Role),
		Enabled:                 false,
		EmailVerified:           false,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateUsername):
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	if err := s.createProfile(ctx, user, req.FirstName, req.LastName); err != nil {
		s.compensate(ctx, user.ID)
		return fmt.Errorf("create profile: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Username, token); err != nil {
		s.log.Error().Err(err).Str("email", user.Email).Msg("verification email failed, removing account")
		s.compensate(ctx, user.ID)
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	s.log.Info().Str("email", user.Email).Str("role", req.Role).Msg("account created")
	return nil
}

func (s *AccountService) createProfile(ctx context.Context, user *model.User, firstName, lastName string) error {
	switch user.Role {
	case model.RoleStudent:
		return s.studentRepo.Create(ctx, &model.Student{
			UserID:    user.ID,
			FirstName: firstName,
			LastName:  lastName,
		})
	case model.RoleProfessor:
		return s.professorRepo.Create(ctx, &model.Professor{
			UserID:    user.ID,
			FirstName: firstName,
			LastName:  lastName,
		})
	default:
		return fmt.Errorf("unknown role %q", user.Role)
	}
}

// compensate deletes a half-created account; the profile row follows
// through the FK cascade.
func (s *AccountService) compensate(ctx context.Context, userID int) {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		s.log.Error().Err(err).Int("user_id", userID).Msg("signup compensation failed")
	}
}

// VerifyEmail validates the verification token, marks the email as
// verified and enables the account.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrVerificationTokenInvalid
	}

	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVerificationTokenInvalid
		}
		return err
	}

	if user.VerificationTokenExpiry != nil && user.VerificationTokenExpiry.Before(time.Now()) {
		return ErrVerificationTokenExpired
	}
	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	s.log.Info().Str("email", user.Email).Msg("email verified")
	return nil
}

// ResendVerificationEmail issues a fresh verification token and mails it.
func (s *AccountService) ResendVerificationEmail(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	token := uuid.New().String()
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, token, time.Now().Add(verificationTokenTTL)); err != nil {
		return fmt.Errorf("store verification token: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Username, token); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}
	return nil
}

// IsEmailVerified reports the verification status of an account.
func (s *AccountService) IsEmailVerified(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	return user.EmailVerified, nil
}

// Login verifies the credentials and account state, then issues an
// access and a refresh token. The refresh token is persisted so it can
// be matched and revoked later.
func (s *AccountService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		s.log.Warn().Str("email", req.Email).Msg("failed login attempt")
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the stored refresh token.
func (s *AccountService) Logout(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.userRepo.SetRefreshToken(ctx, user.ID, nil)
}

// Refresh validates a refresh token against the stored copy and rotates
// both tokens.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.auth.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, ErrRefreshTokenInvalid
	}

	return s.issueTokens(ctx, user)
}

func (s *AccountService) issueTokens(ctx context.Context, user *model.User) (*model.LoginResponse, error) {
	access, err := s.auth.GenerateAccessToken(user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("access token: %w", err)
	}
	refresh, err := s.auth.GenerateRefreshToken(user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	firstName, lastName := s.profileNames(ctx, user)

	return &model.LoginResponse{
		Token:        access,
		RefreshToken: refresh,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
		FirstName:    firstName,
		LastName:     lastName,
	}, nil
}

func (s *AccountService) profileNames(ctx context.Context, user *model.User) (string, string) {
	switch user.Role {
	case model.RoleStudent:
		if st, err := s.studentRepo.GetByUserID(ctx, user.ID); err == nil {
			return st.FirstName, st.LastName
		}
	case model.RoleProfessor:
		if p, err := s.professorRepo.GetByUserID(ctx, user.ID); err == nil {
			return p.FirstName, p.LastName
		}
	}
	return "", ""
}

// RequestPasswordReset issues a reset token and mails the reset link.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	token := uuid.New().String()
	if err := s.userRepo.SetPasswordResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Username, token); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	s.log.Info().Str("email", email).Msg("password reset requested")
	return nil
}

// ValidateResetToken checks that a reset token exists and has not expired.
func (s *AccountService) ValidateResetToken(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrResetTokenInvalid
	}

	user, err := s.userRepo.GetByPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if user.PasswordResetTokenExpiry != nil && user.PasswordResetTokenExpiry.Before(time.Now()) {
		return ErrResetTokenExpired
	}
	return nil
}

// ResetPassword replaces the password for the account holding the reset
// token. Every stored refresh token is revoked so all devices must log
// in again.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrResetTokenInvalid
	}

	user, err := s.userRepo.GetByPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return err
	}
	if user.PasswordResetTokenExpiry != nil && user.PasswordResetTokenExpiry.Before(time.Now()) {
		return ErrResetTokenExpired
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.ResetPassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Str("email", user.Email).Msg("password reset")
	return nil
}
