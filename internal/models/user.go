package models

import "time"

// PointsPerLevel is the number of points that separates two levels
const PointsPerLevel = 500

// Role identifies what an account is allowed to do
type Role string

const (
	RoleStudent  Role = "student"
	RoleGuardian Role = "guardian"
	RoleAdmin    Role = "admin"
)

// User is the aggregate root for a learner's points, streak and history.
// Guardians and admins share the shape but never accrue points.
type User struct {
	ID           string `json:"id"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Username     string `json:"username,omitempty"`
	PasswordHash string `json:"password_hash"`
	GuardianID   string `json:"guardian_id,omitempty"`

	Points         int                   `json:"points"`
	Level          int                   `json:"level"`
	TotalStudyTime int                   `json:"total_study_time"`
	Streak         int                   `json:"streak"`
	LastStudyDate  *time.Time            `json:"last_study_date,omitempty"`
	CompletedTasks []CompletedTaskRecord `json:"completed_tasks"`
	PendingRewards []string              `json:"pending_rewards"`
	WeakTopics     []string              `json:"weak_topics"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletedTaskRecord is an append-only entry in a user's study history
type CompletedTaskRecord struct {
	TaskID      string    `json:"task_id"`
	Topic       string    `json:"topic,omitempty"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points"`
	Duration    int       `json:"duration"`
	CompletedAt time.Time `json:"completed_at"`
}

// LevelForPoints returns floor(points / PointsPerLevel) + 1, flooring toward
// negative infinity so a negative balance never rounds up a level.
func LevelForPoints(points int) int {
	q := points / PointsPerLevel
	if points%PointsPerLevel != 0 && points < 0 {
		q--
	}
	return q + 1
}

// IsStudent reports whether the user accrues points
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// HasPendingReward reports whether claimID is awaiting a decision
func (u *User) HasPendingReward(claimID string) bool {
	return containsString(u.PendingRewards, claimID)
}

// AddPendingReward inserts claimID if not already present
func (u *User) AddPendingReward(claimID string) {
	if !containsString(u.PendingRewards, claimID) {
		u.PendingRewards = append(u.PendingRewards, claimID)
	}
}

// RemovePendingReward drops claimID from the pending set
func (u *User) RemovePendingReward(claimID string) {
	u.PendingRewards = removeString(u.PendingRewards, claimID)
}

// HasCompleted reports whether taskID appears in the study history
func (u *User) HasCompleted(taskID string) bool {
	for _, rec := range u.CompletedTasks {
		if rec.TaskID == taskID {
			return true
		}
	}
	return false
}

// AddWeakTopic inserts topic if not already present
func (u *User) AddWeakTopic(topic string) {
	if !containsString(u.WeakTopics, topic) {
		u.WeakTopics = append(u.WeakTopics, topic)
	}
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

func removeString(items []string, s string) []string {
	out := items[:0]
	for _, item := range items {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
