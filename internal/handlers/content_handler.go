package handlers

import (
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/service"
	"studyquest/internal/validation"
)

// ContentHandler serves generated questions and study programs
type ContentHandler struct {
	contentService *service.ContentService
	log            *logger.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *service.ContentService, log *logger.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		log:            log,
	}
}

type generateQuestionRequest struct {
	Topic      string  `json:"topic"`
	Difficulty float64 `json:"difficulty"`
}

// GenerateQuestion asks the generator for a multiple choice question
func (h *ContentHandler) GenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req generateQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	question, err := h.contentService.GenerateQuestion(r.Context(), req.Topic, req.Difficulty)
	if err != nil {
		respondServiceError(w, h.log, "generate question", err)
		return
	}
	writeJSON(w, http.StatusCreated, newQuestionView(question))
}

type answerQuestionRequest struct {
	AnswerIndex *int `json:"answer_index"`
	DaysLeft    *int `json:"days_left"`
}

// AnswerQuestion grades an answer and credits the ledger
func (h *ContentHandler) AnswerQuestion(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req answerQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AnswerIndex == nil {
		respondServiceError(w, h.log, "answer question",
			validation.ValidationError{Field: "answer_index", Message: "answer_index is required"})
		return
	}

	result, err := h.contentService.AnswerQuestion(r.Context(), user.ID, r.PathValue("id"), *req.AnswerIndex, req.DaysLeft)
	if err != nil {
		respondServiceError(w, h.log, "answer question", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GenerateProgram builds a task sequence towards an exam
func (h *ContentHandler) GenerateProgram(w http.ResponseWriter, r *http.Request) {
	var req validation.ProgramRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	program, err := h.contentService.GenerateProgram(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.log, "generate program", err)
		return
	}

	h.log.Info("program generated", "program_id", program.ID, "tasks", len(program.Tasks))
	writeJSON(w, http.StatusCreated, program)
}
