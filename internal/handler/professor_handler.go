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

// ProfessorHandler handles quiz authoring and result inspection.
type ProfessorHandler struct {
	quizzes *service.QuizService
}

// NewProfessorHandler creates a new ProfessorHandler.
func NewProfessorHandler(quizzes *service.QuizService) *ProfessorHandler {
	return &ProfessorHandler{quizzes: quizzes}
}

func (h *ProfessorHandler) email(c *gin.Context) (string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", false
	}
	return claims.Subject, true
}

func (h *ProfessorHandler) failFrom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfessorNotFound):
		response.Fail(c, http.StatusForbidden, response.ErrProfessorAccessOnly)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizAuthor):
		response.Fail(c, http.StatusForbidden, response.ErrNotQuizAuthor)
	case errors.Is(err, service.ErrCodesExhausted):
		response.Fail(c, http.StatusConflict, response.ErrCodesExhausted)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// CreateQuiz godoc
// POST /api/professor/quizzes
// Stores a new quiz with its questions and allocates a join code.
func (h *ProfessorHandler) CreateQuiz(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizzes.CreateQuiz(c.Request.Context(), email, req)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// ListQuizzes godoc
// GET /api/professor/quizzes
// Returns the calling professor's quizzes.
func (h *ProfessorHandler) ListQuizzes(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	quizzes, err := h.quizzes.ListProfessorQuizzes(c.Request.Context(), email)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// ListParticipations godoc
// GET /api/professor/quizzes/:id/participations
// Returns every attempt at one of the professor's quizzes.
func (h *ProfessorHandler) ListParticipations(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	participations, err := h.quizzes.GetQuizParticipations(c.Request.Context(), email, id)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"participations": participations})
}

// DeleteQuiz godoc
// DELETE /api/professor/quizzes/:id
// Deletes one of the professor's quizzes with all attached data.
func (h *ProfessorHandler) DeleteQuiz(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.quizzes.DeleteQuiz(c.Request.Context(), email, id); err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Quiz supprimé."})
}
