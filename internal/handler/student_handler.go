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

const defaultLeaderboardLimit = 10

// StudentHandler handles the student portal endpoints.
type StudentHandler struct {
	students *service.StudentService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{students: students}
}

func (h *StudentHandler) email(c *gin.Context) (string, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return "", false
	}
	return claims.Subject, true
}

func (h *StudentHandler) failFrom(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrParticipationNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotParticipationOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// GetProfile godoc
// GET /api/student/profile
func (h *StudentHandler) GetProfile(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	profile, err := h.students.GetProfile(c.Request.Context(), email)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile godoc
// PUT /api/student/profile
// Updates the name fields; blank fields keep the stored value.
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	var req model.UpdateProfileRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	profile, err := h.students.UpdateProfile(c.Request.Context(), email, req)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// GetStats godoc
// GET /api/student/stats
// Returns the aggregated dashboard statistics.
func (h *StudentHandler) GetStats(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	stats, err := h.students.GetStats(c.Request.Context(), email)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// GetHistory godoc
// GET /api/student/history
// Returns the attempt history, newest first, with per-quiz ranks.
func (h *StudentHandler) GetHistory(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	history, err := h.students.GetHistory(c.Request.Context(), email)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}

// GetParticipation godoc
// GET /api/student/participation/:id
// Returns one attempt with the derived correct-answer count.
func (h *StudentHandler) GetParticipation(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.students.GetParticipationDetails(c.Request.Context(), email, id)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"participation": detail})
}

func limitQuery(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLeaderboardLimit)))
	if err != nil || limit <= 0 {
		return defaultLeaderboardLimit
	}
	return limit
}

// GetLeaderboard godoc
// GET /api/student/leaderboard?limit=10
// Ranks students by average score.
func (h *StudentHandler) GetLeaderboard(c *gin.Context) {
	entries, err := h.students.GetGlobalLeaderboard(c.Request.Context(), limitQuery(c))
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leaderboard": entries})
}

// GetMostActive godoc
// GET /api/student/most-active?limit=10
// Ranks students by attempt count.
func (h *StudentHandler) GetMostActive(c *gin.Context) {
	entries, err := h.students.GetMostActiveStudents(c.Request.Context(), limitQuery(c))
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"students": entries})
}

// GetRecommended godoc
// GET /api/student/recommended-quizzes?limit=10
// Returns the newest quizzes the student has not attempted.
func (h *StudentHandler) GetRecommended(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}

	quizzes, err := h.students.GetRecommendedQuizzes(c.Request.Context(), email, limitQuery(c))
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// CanParticipate godoc
// GET /api/student/quiz/:id/can-participate
// Reports whether the student may still attempt the quiz.
func (h *StudentHandler) CanParticipate(c *gin.Context) {
	email, ok := h.email(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	can, err := h.students.CanParticipate(c.Request.Context(), email, id)
	if err != nil {
		h.failFrom(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"can_participate": can})
}
