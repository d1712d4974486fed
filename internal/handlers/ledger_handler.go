package handlers

import (
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/service"
	"studyquest/internal/validation"
)

// LedgerHandler serves task completion and progress for students
type LedgerHandler struct {
	ledgerService  *service.LedgerService
	contentService *service.ContentService
	log            *logger.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService, contentService *service.ContentService, log *logger.Logger) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:  ledgerService,
		contentService: contentService,
		log:            log,
	}
}

// CompleteTask records a finished task and awards points
func (h *LedgerHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req validation.CompleteTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cmd, err := validation.ParseCompleteTask(user.ID, r.PathValue("id"), req)
	if err != nil {
		respondServiceError(w, h.log, "complete task", err)
		return
	}

	result, err := h.ledgerService.CompleteTask(r.Context(), cmd)
	if err != nil {
		respondServiceError(w, h.log, "complete task", err)
		return
	}

	if result.LeveledUp {
		h.log.Info("student leveled up", "user_id", user.ID, "level", result.NewLevel)
	}
	writeJSON(w, http.StatusOK, result)
}

// ListTasks returns the task catalog, optionally filtered by ?program_id
func (h *LedgerHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.contentService.ListTasks(r.Context(), r.URL.Query().Get("program_id"))
	if err != nil {
		respondServiceError(w, h.log, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// MyProgress returns the authenticated student's report
func (h *LedgerHandler) MyProgress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	report, err := h.ledgerService.Progress(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.log, "load progress", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type weakTopicsResponse struct {
	WeakTopics []string `json:"weak_topics"`
}

// MyWeakTopics returns topics whose accuracy is below the threshold
func (h *LedgerHandler) MyWeakTopics(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	topics, err := h.ledgerService.WeakTopics(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.log, "analyze weak topics", err)
		return
	}
	if topics == nil {
		topics = []string{}
	}
	writeJSON(w, http.StatusOK, weakTopicsResponse{WeakTopics: topics})
}

type motivationResponse struct {
	Message string `json:"message"`
}

// Motivation returns a short encouragement. Generation failures fall back to
// a fixed message, so this never answers 503.
func (h *LedgerHandler) Motivation(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	report, err := h.ledgerService.Progress(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, h.log, "load progress", err)
		return
	}
	writeJSON(w, http.StatusOK, motivationResponse{Message: h.contentService.Motivation(r.Context(), report)})
}
