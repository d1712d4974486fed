package repository

import (
	"context"

	"studyquest/internal/models"
	"studyquest/internal/store"
)

// TaskRepository stores task templates
type TaskRepository struct {
	tasks *collection[models.Task]
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(s store.RecordStore) *TaskRepository {
	return &TaskRepository{
		tasks: newCollection(s, store.Tasks, func(t *models.Task) string { return t.ID }),
	}
}

// GetTaskByID retrieves a task, returning nil when absent
func (r *TaskRepository) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	return r.tasks.find(ctx, id)
}

// ListTasks returns every task, optionally limited to one program
func (r *TaskRepository) ListTasks(ctx context.Context, programID string) ([]models.Task, error) {
	if programID == "" {
		return r.tasks.all(ctx)
	}
	return r.tasks.filter(ctx, func(t *models.Task) bool { return t.ProgramID == programID })
}

// SaveTasks inserts or replaces tasks in one collection write
func (r *TaskRepository) SaveTasks(ctx context.Context, tasks ...*models.Task) error {
	return r.tasks.put(ctx, tasks...)
}

// ReplaceAll overwrites every stored task
func (r *TaskRepository) ReplaceAll(ctx context.Context, tasks []models.Task) error {
	return r.tasks.replaceAll(ctx, tasks)
}

// Merge inserts or replaces each of tasks in one collection write
func (r *TaskRepository) Merge(ctx context.Context, tasks []models.Task) error {
	items := make([]*models.Task, len(tasks))
	for i := range tasks {
		items[i] = &tasks[i]
	}
	return r.tasks.put(ctx, items...)
}

// QuestionRepository stores generated questions
type QuestionRepository struct {
	questions *collection[models.Question]
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(s store.RecordStore) *QuestionRepository {
	return &QuestionRepository{
		questions: newCollection(s, store.Questions, func(q *models.Question) string { return q.ID }),
	}
}

// GetQuestionByID retrieves a question, returning nil when absent
func (r *QuestionRepository) GetQuestionByID(ctx context.Context, id string) (*models.Question, error) {
	return r.questions.find(ctx, id)
}

// ListQuestions returns every stored question
func (r *QuestionRepository) ListQuestions(ctx context.Context) ([]models.Question, error) {
	return r.questions.all(ctx)
}

// SaveQuestion inserts or replaces a question
func (r *QuestionRepository) SaveQuestion(ctx context.Context, q *models.Question) error {
	return r.questions.put(ctx, q)
}

// ReplaceAll overwrites every stored question
func (r *QuestionRepository) ReplaceAll(ctx context.Context, questions []models.Question) error {
	return r.questions.replaceAll(ctx, questions)
}

// Merge inserts or replaces each of questions in one collection write
func (r *QuestionRepository) Merge(ctx context.Context, questions []models.Question) error {
	items := make([]*models.Question, len(questions))
	for i := range questions {
		items[i] = &questions[i]
	}
	return r.questions.put(ctx, items...)
}
