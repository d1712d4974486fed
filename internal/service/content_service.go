package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyquest/internal/ai"
	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/validation"
)

// FallbackMotivation is shown when no encouragement could be generated
const FallbackMotivation = "Every task you finish brings you closer to your goal. Keep going!"

// AnswerResult is the outcome of answering a generated question
type AnswerResult struct {
	Correct      bool          `json:"correct"`
	AnswerIndex  int           `json:"answer_index"`
	Explanation  string        `json:"explanation,omitempty"`
	LedgerResult *LedgerResult `json:"ledger"`
}

// ContentService turns generated text into questions and programs
type ContentService struct {
	generator    ai.Generator
	questionRepo *repository.QuestionRepository
	taskRepo     *repository.TaskRepository
	ledger       *LedgerService
	log          *logger.Logger
	now          func() time.Time
}

// NewContentService creates a new content service
func NewContentService(
	generator ai.Generator,
	questionRepo *repository.QuestionRepository,
	taskRepo *repository.TaskRepository,
	ledger *LedgerService,
	log *logger.Logger,
) *ContentService {
	return &ContentService{
		generator:    generator,
		questionRepo: questionRepo,
		taskRepo:     taskRepo,
		ledger:       ledger,
		log:          log,
		now:          time.Now,
	}
}

type generatedQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation"`
}

// GenerateQuestion asks the generator for a multiple-choice question
func (s *ContentService) GenerateQuestion(ctx context.Context, topic string, difficulty float64) (*models.Question, error) {
	topic, err := validation.ValidateTopic(topic)
	if err != nil {
		return nil, err
	}
	difficulty, err = validation.NormalizeDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Write one multiple-choice exam question about "%s" at difficulty %.1f on a scale of 1 to 5.
Reply with JSON only, no prose, in this shape:
{"question": "...", "options": ["...", "...", "...", "..."], "answer_index": 0, "explanation": "..."}`, topic, difficulty)

	var gq generatedQuestion
	if err := s.generateJSON(ctx, prompt, &gq); err != nil {
		return nil, err
	}

	gq.Question = strings.TrimSpace(gq.Question)
	if gq.Question == "" || len(gq.Options) < 2 || gq.AnswerIndex < 0 || gq.AnswerIndex >= len(gq.Options) {
		return nil, fmt.Errorf("%w: malformed question", ErrGenerationUnavailable)
	}

	q := &models.Question{
		ID:          uuid.NewString(),
		Topic:       topic,
		Difficulty:  difficulty,
		Prompt:      gq.Question,
		Options:     gq.Options,
		AnswerIndex: gq.AnswerIndex,
		Explanation: gq.Explanation,
		CreatedAt:   s.now(),
	}
	if err := s.questionRepo.SaveQuestion(ctx, q); err != nil {
		return nil, persistenceError("save question", err)
	}
	return q, nil
}

// AnswerQuestion grades an answer and records it as a task completion.
// Each user gets one attempt per question.
func (s *ContentService) AnswerQuestion(ctx context.Context, userID, questionID string, answerIndex int, daysLeft *int) (*AnswerResult, error) {
	q, err := s.questionRepo.GetQuestionByID(ctx, questionID)
	if err != nil {
		return nil, persistenceError("load question", err)
	}
	if q == nil {
		return nil, ErrQuestionNotFound
	}
	if answerIndex < 0 || answerIndex >= len(q.Options) {
		return nil, validation.ValidationError{Field: "answer_index", Message: "answer is not one of the options"}
	}

	correct := answerIndex == q.AnswerIndex
	netCount := 0
	if correct {
		netCount = 1
	}

	result, err := s.ledger.CompleteTask(ctx, validation.CompleteTaskCommand{
		UserID:   userID,
		TaskID:   q.ID,
		NetCount: &netCount,
		Correct:  correct,
		Topic:    q.Topic,
		DaysLeft: daysLeft,

		SingleAttempt: true,
	})
	if err != nil {
		return nil, err
	}

	return &AnswerResult{
		Correct:      correct,
		AnswerIndex:  q.AnswerIndex,
		Explanation:  q.Explanation,
		LedgerResult: result,
	}, nil
}

type generatedProgram struct {
	Title string        `json:"title"`
	Tasks []models.Task `json:"tasks"`
}

// GenerateProgram asks the generator for a study plan and stores its tasks
func (s *ContentService) GenerateProgram(ctx context.Context, req validation.ProgramRequest) (*models.Program, error) {
	req, err := validation.ValidateProgram(req)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Create a study program for "%s" with %d days left before the exam and %d minutes of study per day.
Reply with JSON only, no prose, in this shape:
{"title": "...", "tasks": [{"title": "...", "type": "video|question|theory", "duration": 20, "base_points": 10, "difficulty": 1.0, "topic": "..."}]}`,
		req.Subject, req.DaysLeft, req.DailyMinutes)

	var gp generatedProgram
	if err := s.generateJSON(ctx, prompt, &gp); err != nil {
		return nil, err
	}
	if len(gp.Tasks) == 0 {
		return nil, fmt.Errorf("%w: program has no tasks", ErrGenerationUnavailable)
	}

	program := &models.Program{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(gp.Title),
		Subject:   req.Subject,
		CreatedAt: s.now(),
	}
	if program.Title == "" {
		program.Title = req.Subject + " study plan"
	}

	program.Tasks = gp.Tasks
	tasks := make([]*models.Task, len(program.Tasks))
	for i := range program.Tasks {
		t := &program.Tasks[i]
		if err := validation.ValidateTask(t); err != nil {
			return nil, fmt.Errorf("%w: task %d: %w", ErrGenerationUnavailable, i, err)
		}
		t.ID = uuid.NewString()
		t.ProgramID = program.ID
		if t.Topic == "" {
			t.Topic = req.Subject
		}
		tasks[i] = t
	}

	if err := s.taskRepo.SaveTasks(ctx, tasks...); err != nil {
		return nil, persistenceError("save tasks", err)
	}
	return program, nil
}

// ListTasks returns stored tasks, optionally for one program
func (s *ContentService) ListTasks(ctx context.Context, programID string) ([]models.Task, error) {
	tasks, err := s.taskRepo.ListTasks(ctx, programID)
	if err != nil {
		return nil, persistenceError("list tasks", err)
	}
	return tasks, nil
}

// Motivation returns a short encouragement for the student. Any failure
// degrades to FallbackMotivation.
func (s *ContentService) Motivation(ctx context.Context, report *ProgressReport) string {
	weak := "none"
	if len(report.WeakTopics) > 0 {
		weak = strings.Join(report.WeakTopics, ", ")
	}
	prompt := fmt.Sprintf(
		"Write two encouraging sentences for %s, a student at level %d with %d points and a %d day study streak. Weak topics: %s.",
		report.Name, report.Level, report.Points, report.Streak, weak,
	)

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn("motivation generation failed, using fallback", "user_id", report.UserID, "error", err)
		return FallbackMotivation
	}
	return strings.TrimSpace(text)
}

func (s *ContentService) generateJSON(ctx context.Context, prompt string, v any) error {
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}
	if err := json.Unmarshal([]byte(ai.StripFences(text)), v); err != nil {
		s.log.Debug("unparseable generator output", "error", err, "output", text)
		return fmt.Errorf("%w: unparseable output: %w", ErrGenerationUnavailable, err)
	}
	return nil
}
