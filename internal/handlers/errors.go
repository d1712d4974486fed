package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"studyquest/internal/logger"
	"studyquest/internal/service"
	"studyquest/internal/validation"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Error(logMsg, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: userMsg})
}

// respondServiceError maps a service failure onto a status code
func respondServiceError(w http.ResponseWriter, log *logger.Logger, action string, err error) {
	var verr validation.ValidationError
	switch {
	case errors.Is(err, service.ErrGenerationUnavailable):
		log.Warn(action+" failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Content generation is unavailable, please try again later"})
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, service.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, service.ErrInsufficientBalance):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: "Not enough points for this reward"})
	case errors.Is(err, service.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Claim has already been processed"})
	case errors.Is(err, service.ErrAlreadyAnswered):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Question has already been answered"})
	case errors.Is(err, service.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid username or password"})
	case errors.Is(err, service.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: ErrForbidden})
	default:
		respondWithError(w, log, http.StatusInternalServerError, ErrInternalServerError, action+" failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidJSON})
		return false
	}
	return true
}
