package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"studyquest/internal/logger"
	"studyquest/internal/service"
	"studyquest/internal/validation"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	log, logs := observedLogger()
	recorder := httptest.NewRecorder()

	respondWithError(recorder, log, 418, "Teapot", "", nil)

	assert.Equal(t, 418, recorder.Code)
	assert.JSONEq(t, `{"error":"Teapot"}`, recorder.Body.String())
	assert.Zero(t, logs.Len())
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	log, logs := observedLogger()
	recorder := httptest.NewRecorder()

	respondWithError(recorder, log, 500, "Internal server error", "", errors.New("boom"))

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "Internal server error", entries[0].Message)
		assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	}
}

func TestRespondServiceErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", validation.ValidationError{Field: "cost", Message: "bad"}, http.StatusBadRequest},
		{"not found", service.ErrRewardNotFound, http.StatusNotFound},
		{"insufficient", service.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{"transition", fmt.Errorf("claim c1: %w", service.ErrInvalidTransition), http.StatusConflict},
		{"email", service.ErrEmailTaken, http.StatusConflict},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"generation", fmt.Errorf("%w: timeout", service.ErrGenerationUnavailable), http.StatusServiceUnavailable},
		{"persistence", fmt.Errorf("failed to save: %w", service.ErrPersistence), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondServiceError(recorder, logger.Nop(), "test", tt.err)
			assert.Equal(t, tt.want, recorder.Code)
		})
	}
}
