package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"studyquest/internal/keylock"
	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/security"
	"studyquest/internal/store"
)

var errDiskFull = errors.New("disk full")

// flakyStore fails SaveAll for the listed collections
type flakyStore struct {
	store.RecordStore
	mu     sync.Mutex
	failOn map[string]bool
}

func (s *flakyStore) SaveAll(ctx context.Context, collection string, records []store.Record) error {
	s.mu.Lock()
	fail := s.failOn[collection]
	s.mu.Unlock()
	if fail {
		return errDiskFull
	}
	return s.RecordStore.SaveAll(ctx, collection, records)
}

func (s *flakyStore) failSaves(collection string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[collection] = fail
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	store     *flakyStore
	clock     *clock
	users     *repository.UserRepository
	rewards   *repository.RewardRepository
	claims    *repository.ClaimRepository
	tasks     *repository.TaskRepository
	questions *repository.QuestionRepository
	ledger    *LedgerService
	rewardSvc *RewardService
	auth      *AuthService
}

func newTestEnv(t *testing.T, loc *time.Location) *testEnv {
	t.Helper()

	fs := &flakyStore{RecordStore: store.NewMemoryStore(), failOn: map[string]bool{}}
	clk := &clock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	locks := keylock.New()
	log := logger.Nop()

	env := &testEnv{
		store:     fs,
		clock:     clk,
		users:     repository.NewUserRepository(fs),
		rewards:   repository.NewRewardRepository(fs),
		claims:    repository.NewClaimRepository(fs),
		tasks:     repository.NewTaskRepository(fs),
		questions: repository.NewQuestionRepository(fs),
	}

	env.ledger = NewLedgerService(env.users, env.tasks, locks, loc)
	env.ledger.now = clk.Now

	env.rewardSvc = NewRewardService(env.users, env.rewards, env.claims, locks, nil, log)
	env.rewardSvc.now = clk.Now

	env.auth = NewAuthService(env.users, env.ledger, security.NewTokenIssuer("test-secret", time.Hour))
	env.auth.now = clk.Now
	return env
}

func (e *testEnv) addStudent(t *testing.T, id string, points int) *models.User {
	t.Helper()
	u := &models.User{
		ID:     id,
		Role:   models.RoleStudent,
		Name:   "Student " + id,
		Points: points,
		Level:  models.LevelForPoints(points),
	}
	require.NoError(t, e.users.SaveUser(context.Background(), u))
	return u
}

func (e *testEnv) addReward(t *testing.T, id string, cost int) *models.Reward {
	t.Helper()
	r := &models.Reward{ID: id, Name: "Reward " + id, Cost: cost}
	require.NoError(t, e.rewards.SaveReward(context.Background(), r))
	return r
}

func (e *testEnv) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.users.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

func intPtr(v int) *int { return &v }
