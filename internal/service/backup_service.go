package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1"

// BackupData is the complete export of every collection
type BackupData struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Backend    string            `json:"backend"`
	Users      []models.User     `json:"users"`
	Rewards    []models.Reward   `json:"rewards"`
	Claims     []models.Claim    `json:"claims"`
	Tasks      []models.Task     `json:"tasks"`
	Questions  []models.Question `json:"questions"`
}

// BackupService exports and imports all collections through the record store
type BackupService struct {
	users     *repository.UserRepository
	rewards   *repository.RewardRepository
	claims    *repository.ClaimRepository
	tasks     *repository.TaskRepository
	questions *repository.QuestionRepository
	backend   string
	log       *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(
	users *repository.UserRepository,
	rewards *repository.RewardRepository,
	claims *repository.ClaimRepository,
	tasks *repository.TaskRepository,
	questions *repository.QuestionRepository,
	backend string,
	log *logger.Logger,
) *BackupService {
	return &BackupService{
		users:     users,
		rewards:   rewards,
		claims:    claims,
		tasks:     tasks,
		questions: questions,
		backend:   backend,
		log:       log,
	}
}

// Export writes a backup to outputPath
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	return file.Sync()
}

// ExportToWriter writes a backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup := BackupData{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Backend:    s.backend,
	}

	var err error
	if backup.Users, err = s.users.ListUsers(ctx); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if backup.Rewards, err = s.rewards.ListRewards(ctx); err != nil {
		return fmt.Errorf("failed to export rewards: %w", err)
	}
	if backup.Claims, err = s.claims.ListClaims(ctx); err != nil {
		return fmt.Errorf("failed to export claims: %w", err)
	}
	if backup.Tasks, err = s.tasks.ListTasks(ctx, ""); err != nil {
		return fmt.Errorf("failed to export tasks: %w", err)
	}
	if backup.Questions, err = s.questions.ListQuestions(ctx); err != nil {
		return fmt.Errorf("failed to export questions: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info("export complete",
		"users", len(backup.Users),
		"rewards", len(backup.Rewards),
		"claims", len(backup.Claims),
		"tasks", len(backup.Tasks),
		"questions", len(backup.Questions),
	)
	return nil
}

// Import reads a backup from inputPath
func (s *BackupService) Import(ctx context.Context, inputPath string, replace bool) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file, replace)
}

// ImportFromReader loads a backup. With replace every collection is
// overwritten; otherwise records are merged by id.
func (s *BackupService) ImportFromReader(ctx context.Context, r io.Reader, replace bool) error {
	backup, err := ReadBackup(r)
	if err != nil {
		return err
	}

	s.log.Info("importing backup", "exported_at", backup.ExportedAt, "backend", backup.Backend, "replace", replace)

	steps := []struct {
		name    string
		replace func() error
		merge   func() error
	}{
		{"users", func() error { return s.users.ReplaceAll(ctx, backup.Users) }, func() error { return s.users.Merge(ctx, backup.Users) }},
		{"rewards", func() error { return s.rewards.ReplaceAll(ctx, backup.Rewards) }, func() error { return s.rewards.Merge(ctx, backup.Rewards) }},
		{"claims", func() error { return s.claims.ReplaceAll(ctx, backup.Claims) }, func() error { return s.claims.Merge(ctx, backup.Claims) }},
		{"tasks", func() error { return s.tasks.ReplaceAll(ctx, backup.Tasks) }, func() error { return s.tasks.Merge(ctx, backup.Tasks) }},
		{"questions", func() error { return s.questions.ReplaceAll(ctx, backup.Questions) }, func() error { return s.questions.Merge(ctx, backup.Questions) }},
	}

	for _, step := range steps {
		run := step.merge
		if replace {
			run = step.replace
		}
		if err := run(); err != nil {
			return fmt.Errorf("failed to import %s: %w", step.name, err)
		}
	}
	return nil
}

// ReadBackup decodes a backup and checks its version
func ReadBackup(r io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	return &backup, nil
}

// BackupSummary describes a backup file without its records
type BackupSummary struct {
	Version       string         `yaml:"version"`
	ExportedAt    time.Time      `yaml:"exported_at"`
	Backend       string         `yaml:"backend"`
	Records       map[string]int `yaml:"records"`
	Students      int            `yaml:"students"`
	PendingClaims int            `yaml:"pending_claims"`
}

// Summarize counts the records of each collection in a backup
func (b *BackupData) Summarize() BackupSummary {
	summary := BackupSummary{
		Version:    b.Version,
		ExportedAt: b.ExportedAt,
		Backend:    b.Backend,
		Records: map[string]int{
			"users":     len(b.Users),
			"rewards":   len(b.Rewards),
			"claims":    len(b.Claims),
			"tasks":     len(b.Tasks),
			"questions": len(b.Questions),
		},
	}
	for _, u := range b.Users {
		if u.IsStudent() {
			summary.Students++
		}
	}
	for _, c := range b.Claims {
		if c.Status == models.ClaimPending {
			summary.PendingClaims++
		}
	}
	return summary
}
