package models

import "time"

// TaskType is the kind of study unit a task represents
type TaskType string

const (
	TaskTypeVideo    TaskType = "video"
	TaskTypeQuestion TaskType = "question"
	TaskTypeTheory   TaskType = "theory"
)

// Valid reports whether t is one of the known task types
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeVideo, TaskTypeQuestion, TaskTypeTheory:
		return true
	}
	return false
}

// Task is an immutable template describing a unit of study
type Task struct {
	ID         string   `json:"id"`
	ProgramID  string   `json:"program_id,omitempty"`
	Title      string   `json:"title"`
	Type       TaskType `json:"type"`
	Duration   int      `json:"duration"`
	BasePoints int      `json:"base_points"`
	Difficulty float64  `json:"difficulty"`
	Topic      string   `json:"topic"`
}

// Program is a generated sequence of tasks towards an exam date
type Program struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	Tasks     []Task    `json:"tasks"`
	CreatedAt time.Time `json:"created_at"`
}

// Question is a generated multiple-choice question
type Question struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Difficulty  float64   `json:"difficulty"`
	Prompt      string    `json:"prompt"`
	Options     []string  `json:"options"`
	AnswerIndex int       `json:"answer_index"`
	Explanation string    `json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
