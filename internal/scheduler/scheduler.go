// Package scheduler runs the daily pending-claim reminder.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/service"
)

const runTimeout = 5 * time.Minute

// GuardianLister lists accounts that may receive reminders
type GuardianLister interface {
	ListGuardians(ctx context.Context) ([]models.User, error)
}

// DigestSource groups a guardian's pending claims
type DigestSource interface {
	PendingDigests(ctx context.Context, guardianID string) ([]service.PendingDigest, error)
}

// ReminderSender delivers one guardian's digest
type ReminderSender interface {
	SendPendingClaimsReminder(ctx context.Context, guardian *models.User, digests []service.PendingDigest) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	at        string
	guardians GuardianLister
	digests   DigestSource
	sender    ReminderSender
	log       *logger.Logger
}

// New creates a scheduler that fires daily at "HH:MM" in loc
func New(loc *time.Location, at string, guardians GuardianLister, digests DigestSource, sender ReminderSender, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		at:        at,
		guardians: guardians,
		digests:   digests,
		sender:    sender,
		log:       log,
	}
}

// Start registers the jobs and runs them in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.at).Do(s.runReminders); err != nil {
		return fmt.Errorf("failed to schedule reminders at %q: %w", s.at, err)
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "reminder_time", s.at)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	sent, err := s.SendReminders(ctx)
	if err != nil {
		s.log.Error("reminder run failed", "sent", sent, "error", err)
		return
	}
	s.log.Info("reminder run complete", "sent", sent)
}

// SendReminders e-mails each guardian with pending claims and returns how
// many reminders went out. A failure for one guardian does not stop the run.
func (s *Scheduler) SendReminders(ctx context.Context) (int, error) {
	guardians, err := s.guardians.ListGuardians(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range guardians {
		g := &guardians[i]
		digests, err := s.digests.PendingDigests(ctx, g.ID)
		if err != nil {
			s.log.Warn("failed to collect pending claims", "guardian_id", g.ID, "error", err)
			continue
		}
		if len(digests) == 0 {
			continue
		}
		if err := s.sender.SendPendingClaimsReminder(ctx, g, digests); err != nil {
			s.log.Warn("failed to send reminder", "guardian_id", g.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
