package model

// Question belongs to exactly one quiz.
type Question struct {
	ID           int    `json:"id"`
	QuizID       int    `json:"quiz_id"`
	QuestionText string `json:"question_text"`
	Position     int    `json:"position"`
}

// Response is one answer option of a question.
type Response struct {
	ID           int    `json:"id"`
	QuestionID   int    `json:"question_id"`
	ResponseText string `json:"response_text"`
	IsCorrect    bool   `json:"is_correct"`
}

// QuestionView is a question with its responses, correctness included.
// Serve QuestionForStudent instead on pre-attempt routes.
type QuestionView struct {
	ID           int        `json:"id"`
	QuestionText string     `json:"question_text"`
	Responses    []Response `json:"responses"`
}

// ResponseForStudent is an answer option with the correctness flag removed.
type ResponseForStudent struct {
	ID           int    `json:"id"`
	ResponseText string `json:"response_text"`
}

// QuestionForStudent is the sanitized projection served to students
// before they submit an attempt.
type QuestionForStudent struct {
	ID           int                  `json:"id"`
	QuestionText string               `json:"question_text"`
	Responses    []ResponseForStudent `json:"responses"`
}

// Sanitize strips the correctness flags from a question view.
func (q QuestionView) Sanitize() QuestionForStudent {
	out := QuestionForStudent{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Responses:    make([]ResponseForStudent, 0, len(q.Responses)),
	}
	for _, r := range q.Responses {
		out.Responses = append(out.Responses, ResponseForStudent{
			ID:           r.ID,
			ResponseText: r.ResponseText,
		})
	}
	return out
}

// CreateQuestionRequest is one question in a quiz authoring payload.
type CreateQuestionRequest struct {
	QuestionText string                  `json:"question_text" binding:"required,min=1,max=2000"`
	Responses    []CreateResponseRequest `json:"responses" binding:"required,min=1,dive"`
}

// CreateResponseRequest is one answer option in a quiz authoring payload.
type CreateResponseRequest struct {
	ResponseText string `json:"response_text" binding:"required,min=1,max=1000"`
	IsCorrect    bool   `json:"is_correct"`
}
