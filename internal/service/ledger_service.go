package service

import (
	"context"
	"math"
	"sort"
	"time"

	"studyquest/internal/keylock"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/validation"
)

// WeakTopicThreshold is the accuracy below which a topic counts as weak
const WeakTopicThreshold = 0.6

const recentActivityLimit = 10

// LedgerResult is the outcome of a task completion
type LedgerResult struct {
	PointsEarned int  `json:"points_earned"`
	TotalPoints  int  `json:"total_points"`
	NewLevel     int  `json:"new_level"`
	LeveledUp    bool `json:"leveled_up"`
	Streak       int  `json:"streak"`
}

// ProgressReport summarises a student's ledger
type ProgressReport struct {
	UserID            string                       `json:"user_id"`
	Name              string                       `json:"name"`
	Points            int                          `json:"points"`
	Level             int                          `json:"level"`
	PointsToNextLevel int                          `json:"points_to_next_level"`
	Streak            int                          `json:"streak"`
	TotalStudyTime    int                          `json:"total_study_time"`
	CompletedCount    int                          `json:"completed_count"`
	Accuracy          float64                      `json:"accuracy"`
	WeakTopics        []string                     `json:"weak_topics"`
	FlaggedTopics     []string                     `json:"flagged_topics"`
	PendingRewards    int                          `json:"pending_rewards"`
	Recent            []models.CompletedTaskRecord `json:"recent"`
}

// LedgerService owns point accrual, levels, streaks and weak topics
type LedgerService struct {
	userRepo *repository.UserRepository
	taskRepo *repository.TaskRepository
	locks    *keylock.Map
	loc      *time.Location
	now      func() time.Time
}

// NewLedgerService creates a new ledger service. locks must be shared with
// every other service that rewrites user records.
func NewLedgerService(userRepo *repository.UserRepository, taskRepo *repository.TaskRepository, locks *keylock.Map, loc *time.Location) *LedgerService {
	if loc == nil {
		loc = time.UTC
	}
	return &LedgerService{
		userRepo: userRepo,
		taskRepo: taskRepo,
		locks:    locks,
		loc:      loc,
		now:      time.Now,
	}
}

// CompleteTask credits a finished study task to the user's ledger
func (s *LedgerService) CompleteTask(ctx context.Context, cmd validation.CompleteTaskCommand) (*LedgerResult, error) {
	unlock := s.locks.Lock(cmd.UserID)
	defer unlock()

	user, err := s.userRepo.GetUserByID(ctx, cmd.UserID)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if cmd.SingleAttempt && user.HasCompleted(cmd.TaskID) {
		return nil, ErrAlreadyAnswered
	}

	var task *models.Task
	if cmd.TaskID != "" {
		task, err = s.taskRepo.GetTaskByID(ctx, cmd.TaskID)
		if err != nil {
			return nil, persistenceError("load task", err)
		}
	}

	earned := CalculatePoints(cmd, task)
	now := s.now()
	previousLevel := models.LevelForPoints(user.Points)

	user.Points += earned
	user.Level = models.LevelForPoints(user.Points)
	if cmd.Duration != nil {
		user.TotalStudyTime += *cmd.Duration
	}

	duration := 0
	if cmd.Duration != nil {
		duration = *cmd.Duration
	}
	user.CompletedTasks = append(user.CompletedTasks, models.CompletedTaskRecord{
		TaskID:      cmd.TaskID,
		Topic:       cmd.Topic,
		Correct:     cmd.Correct,
		Points:      earned,
		Duration:    duration,
		CompletedAt: now,
	})

	if user.LastStudyDate == nil || !sameDay(*user.LastStudyDate, now, s.loc) {
		user.Streak++
		user.LastStudyDate = &now
	}

	if cmd.Topic != "" && !cmd.Correct {
		user.AddWeakTopic(cmd.Topic)
	}
	user.UpdatedAt = now

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, persistenceError("save user", err)
	}

	return &LedgerResult{
		PointsEarned: earned,
		TotalPoints:  user.Points,
		NewLevel:     user.Level,
		LeveledUp:    user.Level > previousLevel,
		Streak:       user.Streak,
	}, nil
}

// CalculatePoints scores a completion. The urgency multiplier
// 1 + 0.1*(7-min(daysLeft,7)) is applied in integer tenths so that floor
// never loses a point to float rounding.
func CalculatePoints(cmd validation.CompleteTaskCommand, task *models.Task) int {
	total := 0
	if cmd.NetCount != nil {
		total += 3 * *cmd.NetCount
	}
	if cmd.Duration != nil {
		total += *cmd.Duration / 10
	}
	if cmd.Correct {
		total += 5
	}

	if task != nil && task.Difficulty > 0 {
		total = int(math.Floor(float64(total) * task.Difficulty))
	}

	if cmd.DaysLeft != nil {
		days := min(*cmd.DaysLeft, 7)
		total = total * (10 + 7 - days) / 10
	}
	return total
}

// CheckStreakOnLogin resets a student's streak when more than one calendar
// day has passed since they last studied
func (s *LedgerService) CheckStreakOnLogin(ctx context.Context, userID string) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return persistenceError("load user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.IsStudent() || user.LastStudyDate == nil || user.Streak == 0 {
		return nil
	}

	now := s.now()
	if calendarDaysBetween(*user.LastStudyDate, now, s.loc) <= 1 {
		return nil
	}

	user.Streak = 0
	user.UpdatedAt = now
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return persistenceError("save user", err)
	}
	return nil
}

// WeakTopics recomputes weak topics from the user's full history
func (s *LedgerService) WeakTopics(ctx context.Context, userID string) ([]string, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return AnalyzeWeakTopics(user.CompletedTasks), nil
}

// AnalyzeWeakTopics returns, sorted, every topic whose accuracy is below
// WeakTopicThreshold. Records without a topic are ignored.
func AnalyzeWeakTopics(records []models.CompletedTaskRecord) []string {
	type tally struct{ correct, total int }
	byTopic := make(map[string]*tally)
	for _, r := range records {
		if r.Topic == "" {
			continue
		}
		t, ok := byTopic[r.Topic]
		if !ok {
			t = &tally{}
			byTopic[r.Topic] = t
		}
		t.total++
		if r.Correct {
			t.correct++
		}
	}

	weak := []string{}
	for topic, t := range byTopic {
		if t.total > 0 && float64(t.correct)/float64(t.total) < WeakTopicThreshold {
			weak = append(weak, topic)
		}
	}
	sort.Strings(weak)
	return weak
}

// Progress builds a progress report for a user
func (s *LedgerService) Progress(ctx context.Context, userID string) (*ProgressReport, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	level := models.LevelForPoints(user.Points)
	report := &ProgressReport{
		UserID:            user.ID,
		Name:              user.Name,
		Points:            user.Points,
		Level:             level,
		PointsToNextLevel: level*models.PointsPerLevel - user.Points,
		Streak:            user.Streak,
		TotalStudyTime:    user.TotalStudyTime,
		CompletedCount:    len(user.CompletedTasks),
		WeakTopics:        AnalyzeWeakTopics(user.CompletedTasks),
		FlaggedTopics:     append([]string{}, user.WeakTopics...),
		PendingRewards:    len(user.PendingRewards),
		Recent:            []models.CompletedTaskRecord{},
	}

	correct := 0
	for _, r := range user.CompletedTasks {
		if r.Correct {
			correct++
		}
	}
	if n := len(user.CompletedTasks); n > 0 {
		report.Accuracy = float64(correct) / float64(n)
	}

	for i := len(user.CompletedTasks) - 1; i >= 0 && len(report.Recent) < recentActivityLimit; i-- {
		report.Recent = append(report.Recent, user.CompletedTasks[i])
	}
	return report, nil
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	return calendarDaysBetween(a, b, loc) == 0
}

// calendarDaysBetween counts calendar dates from a to b in loc, ignoring
// time of day and DST shifts
func calendarDaysBetween(a, b time.Time, loc *time.Location) int {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
