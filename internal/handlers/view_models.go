package handlers

import (
	"time"

	"studyquest/internal/models"
	"studyquest/internal/service"
)

// UserView is the public shape of an account; it never carries the hash
type UserView struct {
	ID             string      `json:"id"`
	Role           models.Role `json:"role"`
	Name           string      `json:"name"`
	Email          string      `json:"email,omitempty"`
	Username       string      `json:"username,omitempty"`
	GuardianID     string      `json:"guardian_id,omitempty"`
	Points         int         `json:"points"`
	Level          int         `json:"level"`
	Streak         int         `json:"streak"`
	TotalStudyTime int         `json:"total_study_time"`
	LastStudyDate  *time.Time  `json:"last_study_date,omitempty"`
	PendingRewards []string    `json:"pending_rewards"`
	WeakTopics     []string    `json:"weak_topics"`
}

func newUserView(u *models.User) UserView {
	v := UserView{
		ID:             u.ID,
		Role:           u.Role,
		Name:           u.Name,
		Email:          u.Email,
		Username:       u.Username,
		GuardianID:     u.GuardianID,
		Points:         u.Points,
		Level:          models.LevelForPoints(u.Points),
		Streak:         u.Streak,
		TotalStudyTime: u.TotalStudyTime,
		LastStudyDate:  u.LastStudyDate,
		PendingRewards: u.PendingRewards,
		WeakTopics:     u.WeakTopics,
	}
	if v.PendingRewards == nil {
		v.PendingRewards = []string{}
	}
	if v.WeakTopics == nil {
		v.WeakTopics = []string{}
	}
	return v
}

func newUserViews(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	return views
}

// SessionView is returned by login
type SessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserView  `json:"user"`
}

func newSessionView(s *service.Session) SessionView {
	return SessionView{Token: s.Token, ExpiresAt: s.ExpiresAt, User: newUserView(s.User)}
}

// NewStudentView is returned once when a student is created
type NewStudentView struct {
	User     UserView `json:"user"`
	Username string   `json:"username"`
	Password string   `json:"password"`
}

// QuestionView hides the answer until the student responds
type QuestionView struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Difficulty float64   `json:"difficulty"`
	Prompt     string    `json:"prompt"`
	Options    []string  `json:"options"`
	CreatedAt  time.Time `json:"created_at"`
}

func newQuestionView(q *models.Question) QuestionView {
	return QuestionView{
		ID:         q.ID,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
		Prompt:     q.Prompt,
		Options:    q.Options,
		CreatedAt:  q.CreatedAt,
	}
}
