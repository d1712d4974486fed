package validation

import (
	"strings"

	"studyquest/internal/models"
)

const (
	maxTopicLength    = 100
	maxDuration       = 24 * 60
	maxNetCount       = 1000
	maxDaysLeft       = 3650
	maxRewardCost     = 1_000_000
	maxDifficulty     = 5.0
	maxDailyMinutes   = 8 * 60
	defaultDifficulty = 1.0
)

// CompleteTaskRequest is the JSON payload of a task completion
type CompleteTaskRequest struct {
	Duration *int   `json:"duration"`
	NetCount *int   `json:"net_count"`
	Correct  *bool  `json:"correct"`
	Topic    string `json:"topic"`
	DaysLeft *int   `json:"days_left"`
}

// CompleteTaskCommand is a validated task completion. Nil pointers mean the
// hint was not supplied.
type CompleteTaskCommand struct {
	UserID   string
	TaskID   string
	Duration *int
	NetCount *int
	Correct  bool
	Topic    string
	DaysLeft *int

	// SingleAttempt refuses the completion when TaskID is already in the
	// user's history.
	SingleAttempt bool
}

// ParseCompleteTask validates a completion payload for userID and taskID
func ParseCompleteTask(userID, taskID string, req CompleteTaskRequest) (CompleteTaskCommand, error) {
	cmd := CompleteTaskCommand{
		UserID: userID,
		TaskID: strings.TrimSpace(taskID),
		Topic:  strings.TrimSpace(req.Topic),
	}
	if cmd.UserID == "" {
		return cmd, ValidationError{Field: "user_id", Message: "user is required"}
	}
	if cmd.TaskID == "" {
		return cmd, ValidationError{Field: "task_id", Message: "task is required"}
	}
	if err := checkRange("duration", req.Duration, 0, maxDuration); err != nil {
		return cmd, err
	}
	if err := checkRange("net_count", req.NetCount, 0, maxNetCount); err != nil {
		return cmd, err
	}
	if err := checkRange("days_left", req.DaysLeft, 0, maxDaysLeft); err != nil {
		return cmd, err
	}
	if len(cmd.Topic) > maxTopicLength {
		return cmd, ValidationError{Field: "topic", Message: "topic is too long"}
	}

	cmd.Duration = req.Duration
	cmd.NetCount = req.NetCount
	cmd.DaysLeft = req.DaysLeft
	if req.Correct != nil {
		cmd.Correct = *req.Correct
	}
	return cmd, nil
}

// ParseDecision accepts "approved"/"approve" and "rejected"/"reject"
func ParseDecision(decision string) (models.ClaimStatus, error) {
	switch strings.ToLower(strings.TrimSpace(decision)) {
	case "approved", "approve":
		return models.ClaimApproved, nil
	case "rejected", "reject":
		return models.ClaimRejected, nil
	}
	return "", ValidationError{Field: "decision", Message: "decision must be approved or rejected"}
}

// RewardRequest is the JSON payload for creating or editing a reward
type RewardRequest struct {
	Name        string `json:"name"`
	Cost        *int   `json:"cost"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// RewardCommand is a validated catalog entry
type RewardCommand struct {
	Name        string
	Cost        int
	Description string
	Icon        string
}

// ParseReward validates a reward payload
func ParseReward(req RewardRequest) (RewardCommand, error) {
	cmd := RewardCommand{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
	}
	if cmd.Name == "" {
		return cmd, ValidationError{Field: "name", Message: "name is required"}
	}
	if req.Cost == nil {
		return cmd, ValidationError{Field: "cost", Message: "cost is required"}
	}
	if err := checkRange("cost", req.Cost, 0, maxRewardCost); err != nil {
		return cmd, err
	}
	cmd.Cost = *req.Cost
	if cmd.Icon == "" {
		cmd.Icon = "🎁"
	}
	return cmd, nil
}

// ValidateTopic checks a free-text study topic
func ValidateTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", ValidationError{Field: "topic", Message: "topic is required"}
	}
	if len(topic) > maxTopicLength {
		return "", ValidationError{Field: "topic", Message: "topic is too long"}
	}
	return topic, nil
}

// NormalizeDifficulty defaults an absent difficulty to 1 and bounds it
func NormalizeDifficulty(d float64) (float64, error) {
	if d == 0 {
		return defaultDifficulty, nil
	}
	if d < 0 || d > maxDifficulty {
		return 0, ValidationError{Field: "difficulty", Message: "difficulty must be between 0 and 5"}
	}
	return d, nil
}

// ProgramRequest is the JSON payload for generating a study program
type ProgramRequest struct {
	Subject      string `json:"subject"`
	DaysLeft     int    `json:"days_left"`
	DailyMinutes int    `json:"daily_minutes"`
}

// ValidateProgram checks a program request and fills defaults
func ValidateProgram(req ProgramRequest) (ProgramRequest, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if req.Subject == "" {
		return req, ValidationError{Field: "subject", Message: "subject is required"}
	}
	if len(req.Subject) > maxTopicLength {
		return req, ValidationError{Field: "subject", Message: "subject is too long"}
	}
	if req.DaysLeft < 1 || req.DaysLeft > maxDaysLeft {
		return req, ValidationError{Field: "days_left", Message: "days_left must be at least 1"}
	}
	if req.DailyMinutes == 0 {
		req.DailyMinutes = 60
	}
	if req.DailyMinutes < 10 || req.DailyMinutes > maxDailyMinutes {
		return req, ValidationError{Field: "daily_minutes", Message: "daily_minutes must be between 10 and 480"}
	}
	return req, nil
}

// ValidateTask checks a generated task and fills defaults
func ValidateTask(t *models.Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if !t.Type.Valid() {
		return ValidationError{Field: "type", Message: "type must be video, question or theory"}
	}
	if t.Duration <= 0 || t.Duration > maxDuration {
		return ValidationError{Field: "duration", Message: "duration must be positive"}
	}
	if t.BasePoints < 0 {
		return ValidationError{Field: "base_points", Message: "base_points must not be negative"}
	}
	d, err := NormalizeDifficulty(t.Difficulty)
	if err != nil {
		return err
	}
	t.Difficulty = d
	return nil
}

func checkRange(field string, v *int, min, max int) error {
	if v == nil {
		return nil
	}
	if *v < min || *v > max {
		return ValidationError{Field: field, Message: "value out of range"}
	}
	return nil
}
