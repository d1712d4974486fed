package handlers

import (
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/models"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth    *AuthHandler
	Student *StudentHandler
	Ledger  *LedgerHandler
	Reward  *RewardHandler
	Content *ContentHandler
}

// NewRouter registers all API routes and wraps them in request logging
func NewRouter(h Handlers, mw *Middleware, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	student := []models.Role{models.RoleStudent}
	manager := []models.Role{models.RoleGuardian, models.RoleAdmin}

	mux.HandleFunc("GET /healthz", Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/me", mw.RequireAuth(h.Auth.Me))

	// Students
	mux.HandleFunc("POST /api/students", mw.RequireRole(h.Student.Create, manager...))
	mux.HandleFunc("GET /api/students", mw.RequireRole(h.Student.List, manager...))
	mux.HandleFunc("GET /api/students/{id}/progress", mw.RequireRole(h.Student.Progress, manager...))

	// Ledger
	mux.HandleFunc("GET /api/tasks", mw.RequireAuth(h.Ledger.ListTasks))
	mux.HandleFunc("POST /api/tasks/{id}/complete", mw.RequireRole(h.Ledger.CompleteTask, student...))
	mux.HandleFunc("GET /api/me/progress", mw.RequireRole(h.Ledger.MyProgress, student...))
	mux.HandleFunc("GET /api/me/weak-topics", mw.RequireRole(h.Ledger.MyWeakTopics, student...))
	mux.HandleFunc("GET /api/me/motivation", mw.RequireRole(h.Ledger.Motivation, student...))

	// Rewards and claims
	mux.HandleFunc("GET /api/rewards", mw.RequireAuth(h.Reward.ListRewards))
	mux.HandleFunc("POST /api/rewards", mw.RequireRole(h.Reward.CreateReward, manager...))
	mux.HandleFunc("PUT /api/rewards/{id}", mw.RequireRole(h.Reward.UpdateReward, manager...))
	mux.HandleFunc("POST /api/rewards/{id}/claim", mw.RequireRole(h.Reward.RequestClaim, student...))
	mux.HandleFunc("GET /api/claims", mw.RequireAuth(h.Reward.ListClaims))
	mux.HandleFunc("POST /api/claims/{id}/process", mw.RequireRole(h.Reward.ProcessClaim, manager...))

	// Generated content
	mux.HandleFunc("POST /api/questions/generate", mw.RequireAuth(h.Content.GenerateQuestion))
	mux.HandleFunc("POST /api/questions/{id}/answer", mw.RequireRole(h.Content.AnswerQuestion, student...))
	mux.HandleFunc("POST /api/programs/generate", mw.RequireAuth(h.Content.GenerateProgram))

	return Logging(log, mux)
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
