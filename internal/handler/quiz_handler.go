package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/flashmind/flashmind-backend/internal/middleware"
	"github.com/flashmind/flashmind-backend/internal/model"
	"github.com/flashmind/flashmind-backend/internal/response"
	"github.com/flashmind/flashmind-backend/internal/service"
	"github.com/flashmind/flashmind-backend/internal/validator"
)

// QuizHandler handles the public quiz catalog and attempt submission.
type QuizHandler struct {
	quizzes *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizzes *service.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// ListPublic godoc
// GET /api/quizzes/public
// Returns the full quiz catalog, newest first.
func (h *QuizHandler) ListPublic(c *gin.Context) {
	quizzes, err := h.quizzes.ListPublicQuizzes(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetByCode godoc
// GET /api/quizzes/code/:code
// Resolves a join code to a quiz.
func (h *QuizHandler) GetByCode(c *gin.Context) {
	quiz, err := h.quizzes.GetQuizByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// GetByID godoc
// GET /api/quizzes/:id
// Returns one quiz summary.
func (h *QuizHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	quiz, err := h.quizzes.GetQuizByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// GetQuestions godoc
// GET /api/quizzes/:id/questions
// Returns the quiz questions with the correct answers stripped.
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	questions, err := h.quizzes.GetQuizQuestions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}

// Submit godoc
// POST /api/quizzes/:id/submit
// Records the authenticated student's completed attempt.
func (h *QuizHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.SubmitQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	participation, err := h.quizzes.SubmitQuiz(c.Request.Context(), claims.Subject, id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrAlreadyParticipated):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
		case errors.Is(err, service.ErrScoreOutOfRange):
			response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		case errors.Is(err, service.ErrStudentNotFound):
			response.Fail(c, http.StatusForbidden, response.ErrStudentAccessOnly)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"participation": participation})
}
