package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInsufficientBalance   = errors.New("insufficient points for reward")
	ErrInvalidTransition     = errors.New("claim has already been processed")
	ErrPersistence           = errors.New("persistence failure")
	ErrGenerationUnavailable = errors.New("content generation unavailable")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrForbidden             = errors.New("forbidden")
	ErrEmailTaken            = errors.New("email already taken")
	ErrAlreadyAnswered       = errors.New("question already answered")
)

// Not-found variants; all match ErrNotFound with errors.Is
var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrRewardNotFound   = fmt.Errorf("reward %w", ErrNotFound)
	ErrClaimNotFound    = fmt.Errorf("claim %w", ErrNotFound)
	ErrTaskNotFound     = fmt.Errorf("task %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
)

func persistenceError(action string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", action, ErrPersistence, err)
}
