package handlers

import (
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/security"
	"studyquest/internal/service"
	"studyquest/internal/validation"
)

// AuthHandler handles registration and sessions
type AuthHandler struct {
	authService *service.AuthService
	log         *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// Register creates a guardian account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req validation.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cmd, err := validation.ParseRegister(req)
	if err != nil {
		respondServiceError(w, h.log, "register", err)
		return
	}

	user, err := h.authService.RegisterGuardian(r.Context(), cmd)
	if err != nil {
		respondServiceError(w, h.log, "register", err)
		return
	}

	h.log.Info("guardian registered", "user_id", user.ID, "role", user.Role)
	writeJSON(w, http.StatusCreated, newUserView(user))
}

// Login exchanges credentials for a session token. The token is returned in
// the body and also set as a cookie for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}

	session, err := h.authService.Login(r.Context(), identifier, req.Password)
	if err != nil {
		respondServiceError(w, h.log, "login", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, session.Token, session.ExpiresAt))
	writeJSON(w, http.StatusOK, newSessionView(session))
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newUserView(GetUserFromContext(r.Context())))
}
