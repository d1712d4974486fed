package handlers

import (
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/service"
)

// StudentHandler lets guardians manage their students
type StudentHandler struct {
	authService   *service.AuthService
	ledgerService *service.LedgerService
	log           *logger.Logger
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(authService *service.AuthService, ledgerService *service.LedgerService, log *logger.Logger) *StudentHandler {
	return &StudentHandler{
		authService:   authService,
		ledgerService: ledgerService,
		log:           log,
	}
}

type createStudentRequest struct {
	Name string `json:"name"`
}

// Create adds a student under the authenticated guardian and returns the
// generated credentials once
func (h *StudentHandler) Create(w http.ResponseWriter, r *http.Request) {
	guardian := GetUserFromContext(r.Context())

	var req createStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.authService.CreateStudent(r.Context(), guardian.ID, req.Name)
	if err != nil {
		respondServiceError(w, h.log, "create student", err)
		return
	}

	h.log.Info("student created", "student_id", created.User.ID, "guardian_id", guardian.ID)
	writeJSON(w, http.StatusCreated, NewStudentView{
		User:     newUserView(created.User),
		Username: created.Username,
		Password: created.Password,
	})
}

// List returns the guardian's students. Admins may pass ?guardian_id.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	guardianID := actor.ID
	if actor.Role == models.RoleAdmin {
		if id := r.URL.Query().Get("guardian_id"); id != "" {
			guardianID = id
		}
	}

	students, err := h.authService.ListStudents(r.Context(), guardianID)
	if err != nil {
		respondServiceError(w, h.log, "list students", err)
		return
	}
	writeJSON(w, http.StatusOK, newUserViews(students))
}

// Progress returns one student's report to a guardian who manages them
func (h *StudentHandler) Progress(w http.ResponseWriter, r *http.Request) {
	actor := GetUserFromContext(r.Context())

	student, ok := h.loadManagedStudent(w, r, actor, r.PathValue("id"))
	if !ok {
		return
	}

	report, err := h.ledgerService.Progress(r.Context(), student.ID)
	if err != nil {
		respondServiceError(w, h.log, "load progress", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// loadManagedStudent resolves studentID and checks actor may see it. Students
// outside the actor's reach are reported as missing.
func (h *StudentHandler) loadManagedStudent(w http.ResponseWriter, r *http.Request, actor *models.User, studentID string) (*models.User, bool) {
	student, err := h.authService.GetUser(r.Context(), studentID)
	if err != nil {
		respondServiceError(w, h.log, "load student", err)
		return nil, false
	}
	if !student.IsStudent() || !h.authService.CanManage(actor, student) {
		respondServiceError(w, h.log, "load student", service.ErrUserNotFound)
		return nil, false
	}
	return student, true
}
