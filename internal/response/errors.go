package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrAccountDisabled    ErrCode = "ACCOUNT_DISABLED"
	ErrEmailNotVerified   ErrCode = "EMAIL_NOT_VERIFIED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrRefreshInvalid     ErrCode = "REFRESH_TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly   ErrCode = "STUDENT_ACCESS_ONLY"
	ErrProfessorAccessOnly ErrCode = "PROFESSOR_ACCESS_ONLY"
	ErrNotQuizAuthor       ErrCode = "NOT_QUIZ_AUTHOR"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrEmailTaken        ErrCode = "EMAIL_TAKEN"
	ErrUsernameTaken     ErrCode = "USERNAME_TAKEN"
	ErrCodesExhausted    ErrCode = "QUIZ_CODES_EXHAUSTED"
	ErrAlreadyAttempted  ErrCode = "ALREADY_PARTICIPATED"
	ErrAlreadyVerified   ErrCode = "EMAIL_ALREADY_VERIFIED"
	ErrVerifyTokenBad    ErrCode = "VERIFICATION_TOKEN_INVALID"
	ErrVerifyTokenStale  ErrCode = "VERIFICATION_TOKEN_EXPIRED"
	ErrResetTokenBad     ErrCode = "RESET_TOKEN_INVALID"
	ErrResetTokenStale   ErrCode = "RESET_TOKEN_EXPIRED"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrMailDelivery ErrCode = "MAIL_DELIVERY_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email ou mot de passe incorrect."
	case ErrAccountDisabled:
		return "Votre compte est désactivé. Veuillez contacter l'administrateur."
	case ErrEmailNotVerified:
		return "Votre email n'a pas encore été vérifié. Veuillez vérifier votre boîte de réception."
	case ErrTokenRequired:
		return "Un token d'authentification est requis."
	case ErrTokenInvalid:
		return "Token d'authentification invalide ou expiré."
	case ErrRefreshInvalid:
		return "Refresh token invalide."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Vous n'avez pas accès à cette ressource."
	case ErrStudentAccessOnly:
		return "Cette ressource est réservée aux étudiants."
	case ErrProfessorAccessOnly:
		return "Cette ressource est réservée aux professeurs."
	case ErrNotQuizAuthor:
		return "Vous n'êtes pas l'auteur de ce quiz."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validation a échoué. Veuillez vérifier votre saisie."
	case ErrInvalidID:
		return "Format d'identifiant invalide."
	case ErrInvalidPayload:
		return "Le corps de la requête est invalide."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Ressource non trouvée."
	case ErrEmailTaken:
		return "Cet email est déjà utilisé."
	case ErrUsernameTaken:
		return "Ce nom d'utilisateur est déjà pris."
	case ErrCodesExhausted:
		return "Impossible de générer un code de quiz unique. Veuillez réessayer."
	case ErrAlreadyAttempted:
		return "Vous avez déjà participé à ce quiz."
	case ErrAlreadyVerified:
		return "Cet email est déjà vérifié. Vous pouvez vous connecter."
	case ErrVerifyTokenBad:
		return "Token de vérification invalide."
	case ErrVerifyTokenStale:
		return "Le token de vérification a expiré. Veuillez demander un nouveau lien."
	case ErrResetTokenBad:
		return "Token de réinitialisation invalide."
	case ErrResetTokenStale:
		return "Le token de réinitialisation a expiré. Veuillez refaire une demande."

	// ─── Upstream ──────────────────────────────────────────────────────
	case ErrMailDelivery:
		return "Erreur lors de l'envoi de l'email. Veuillez réessayer."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Trop de requêtes. Veuillez réessayer plus tard."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Une erreur interne est survenue."
	default:
		return "Une erreur inattendue est survenue."
	}
}
