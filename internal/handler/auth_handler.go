package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flashmind/flashmind-backend/internal/middleware"
	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/response"
	"github.com/flashmind/flashmind-backend/internal/service"
	"github.com/flashmind/flashmind-backend/internal/validator"
)

// AuthHandler handles signup, login, email verification and password
// reset endpoints.
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Signup godoc
// POST /api/auth/signup
// Registers a new student or professor account and sends the
// verification email.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accounts.Signup(c.Request.Context(), req); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
		case errors.Is(err, service.ErrUsernameTaken):
			response.Fail(c, http.StatusConflict, response.ErrUsernameTaken)
		case errors.Is(err, service.ErrMailDelivery):
			response.Fail(c, http.StatusBadGateway, response.ErrMailDelivery)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Compte créé. Un email de vérification vous a été envoyé.",
	})
}

// Login godoc
// POST /api/auth/login
// Authenticates an account and issues the token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		case errors.Is(err, service.ErrAccountDisabled):
			response.Fail(c, http.StatusForbidden, response.ErrAccountDisabled)
		case errors.Is(err, service.ErrEmailNotVerified):
			response.Fail(c, http.StatusForbidden, response.ErrEmailNotVerified)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// VerifyEmail godoc
// GET /api/auth/verify-email?token=...
// Confirms an email address from the link in the verification email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	err := h.accounts.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVerificationTokenInvalid):
			response.Fail(c, http.StatusBadRequest, response.ErrVerifyTokenBad)
		case errors.Is(err, service.ErrVerificationTokenExpired):
			response.Fail(c, http.StatusBadRequest, response.ErrVerifyTokenStale)
		case errors.Is(err, service.ErrEmailAlreadyVerified):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyVerified)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Email vérifié. Vous pouvez maintenant vous connecter.",
	})
}

// ResendVerification godoc
// POST /api/auth/resend-verification
// Issues a fresh verification token and re-sends the email.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req model.ResendVerificationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accounts.ResendVerificationEmail(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrEmailAlreadyVerified):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyVerified)
		case errors.Is(err, service.ErrMailDelivery):
			response.Fail(c, http.StatusBadGateway, response.ErrMailDelivery)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Un nouvel email de vérification vous a été envoyé.",
	})
}

// CheckEmailVerified godoc
// GET /api/auth/check-email-verified?email=...
// Reports whether an account's email has been verified.
func (h *AuthHandler) CheckEmailVerified(c *gin.Context) {
	verified, err := h.accounts.IsEmailVerified(c.Request.Context(), c.Query("email"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"verified": verified})
}

// Logout godoc
// POST /api/auth/logout
// Revokes the stored refresh token of the authenticated account.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), claims.Subject); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Déconnexion réussie."})
}

// RefreshToken godoc
// POST /api/auth/refresh-token
// Exchanges a valid refresh token for a new token pair.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			response.Fail(c, http.StatusUnauthorized, response.ErrRefreshInvalid)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusUnauthorized, response.ErrRefreshInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ForgotPassword godoc
// POST /api/auth/forgot-password
// Sends the password reset email.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrMailDelivery):
			response.Fail(c, http.StatusBadGateway, response.ErrMailDelivery)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Un email de réinitialisation vous a été envoyé.",
	})
}

// ValidateResetToken godoc
// GET /api/auth/validate-reset-token?token=...
// Checks a password reset token before showing the reset form.
func (h *AuthHandler) ValidateResetToken(c *gin.Context) {
	err := h.accounts.ValidateResetToken(c.Request.Context(), c.Query("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			response.Fail(c, http.StatusBadRequest, response.ErrResetTokenBad)
		case errors.Is(err, service.ErrResetTokenExpired):
			response.Fail(c, http.StatusBadRequest, response.ErrResetTokenStale)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

// ResetPassword godoc
// POST /api/auth/reset-password
// Replaces the password for the account holding the reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrResetTokenInvalid):
			response.Fail(c, http.StatusBadRequest, response.ErrResetTokenBad)
		case errors.Is(err, service.ErrResetTokenExpired):
			response.Fail(c, http.StatusBadRequest, response.ErrResetTokenStale)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Mot de passe réinitialisé. Vous pouvez vous connecter.",
	})
}
