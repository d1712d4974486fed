package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyquest/internal/models"
	"studyquest/internal/store"
	"studyquest/internal/validation"
)

type recordingNotifier struct {
	mu     sync.Mutex
	sentTo []string
}

func (n *recordingNotifier) NotifyClaimRequested(_ context.Context, guardian, _ *models.User, _ *models.Claim) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sentTo = append(n.sentTo, guardian.ID)
	return nil
}

func TestRequestClaimCreatesPendingClaim(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(context.Background(), "s1", "r1")
	require.NoError(t, err)

	assert.Equal(t, models.ClaimPending, claim.Status)
	assert.Equal(t, "Reward r1", claim.RewardName)
	assert.Equal(t, 100, claim.Cost)
	assert.Nil(t, claim.ProcessedAt)

	u := env.user(t, "s1")
	assert.Equal(t, 300, u.Points, "request must not debit")
	assert.True(t, u.HasPendingReward(claim.ID))

	stored, err := env.claims.GetClaimByID(context.Background(), claim.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestRequestClaimInsufficientBalance(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	env.addStudent(t, "s1", 100)
	env.addReward(t, "r1", 150)

	_, err := env.rewardSvc.RequestClaim(context.Background(), "s1", "r1")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	claims, err := env.claims.ListClaims(context.Background())
	require.NoError(t, err)
	assert.Empty(t, claims)
	assert.Empty(t, env.user(t, "s1").PendingRewards)
}

func TestRequestClaimNotFound(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	env.addStudent(t, "s1", 100)
	env.addReward(t, "r1", 10)

	_, err := env.rewardSvc.RequestClaim(context.Background(), "ghost", "r1")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.rewardSvc.RequestClaim(context.Background(), "s1", "missing")
	assert.ErrorIs(t, err, ErrRewardNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestClaimRemovesClaimWhenUserSaveFails(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)
	env.store.failSaves(store.Users, true)

	_, err := env.rewardSvc.RequestClaim(context.Background(), "s1", "r1")
	assert.ErrorIs(t, err, ErrPersistence)

	env.store.failSaves(store.Users, false)
	claims, err := env.claims.ListClaims(context.Background())
	require.NoError(t, err)
	assert.Empty(t, claims)
	assert.Empty(t, env.user(t, "s1").PendingRewards)
}

func TestRequestClaimNotifiesGuardian(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	notifier := &recordingNotifier{}
	env.rewardSvc.notifier = notifier

	require.NoError(t, env.users.SaveUser(context.Background(), &models.User{ID: "g1", Role: models.RoleGuardian, Email: "g@example.com"}))
	s := env.addStudent(t, "s1", 300)
	s.GuardianID = "g1"
	require.NoError(t, env.users.SaveUser(context.Background(), s))
	env.addReward(t, "r1", 100)

	_, err := env.rewardSvc.RequestClaim(context.Background(), "s1", "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"g1"}, notifier.sentTo)
}

func TestProcessClaimApproveDebitsSnapshotCost(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	_, err = env.rewardSvc.UpdateReward(ctx, "r1", validation.RewardCommand{Name: "Pricier", Cost: 200})
	require.NoError(t, err)

	env.clock.Set(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC))
	processed, err := env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", models.ClaimApproved)
	require.NoError(t, err)

	assert.Equal(t, models.ClaimApproved, processed.Status)
	require.NotNil(t, processed.ProcessedAt)
	assert.True(t, processed.ProcessedAt.Equal(env.clock.Now()))
	assert.Equal(t, "Reward r1", processed.RewardName)

	u := env.user(t, "s1")
	assert.Equal(t, 200, u.Points)
	assert.False(t, u.HasPendingReward(claim.ID))
}

func TestProcessClaimRejectKeepsPoints(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	processed, err := env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", models.ClaimRejected)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimRejected, processed.Status)

	u := env.user(t, "s1")
	assert.Equal(t, 300, u.Points)
	assert.Empty(t, u.PendingRewards)
}

func TestProcessClaimRejectsTerminalClaims(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)
	_, err = env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", models.ClaimApproved)
	require.NoError(t, err)

	for _, decision := range []models.ClaimStatus{models.ClaimApproved, models.ClaimRejected} {
		_, err = env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", decision)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
	assert.Equal(t, 200, env.user(t, "s1").Points, "no double debit")
}

func TestProcessClaimUnknownDecision(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	for _, decision := range []models.ClaimStatus{models.ClaimPending, "", "maybe"} {
		t.Run(string(decision), func(t *testing.T) {
			_, err := env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", decision)
			var verr validation.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "decision", verr.Field)
			assert.NotErrorIs(t, err, ErrInvalidTransition)
		})
	}

	stored, err := env.rewardSvc.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, stored.Status)
	assert.Equal(t, 300, env.user(t, "s1").Points)
}

func TestProcessClaimConcurrentApprovalsDebitOnce(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", models.ClaimApproved); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 200, env.user(t, "s1").Points)
}

func TestProcessClaimNotFound(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addStudent(t, "s2", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	_, err = env.rewardSvc.ProcessClaim(ctx, "missing", "s1", models.ClaimApproved)
	assert.ErrorIs(t, err, ErrClaimNotFound)

	_, err = env.rewardSvc.ProcessClaim(ctx, claim.ID, "s2", models.ClaimApproved)
	assert.ErrorIs(t, err, ErrNotFound, "claim owned by another user")
	assert.Equal(t, 300, env.user(t, "s2").Points)
}

func TestProcessClaimRestoresClaimWhenUserSaveFails(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 300)
	env.addReward(t, "r1", 100)

	claim, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	env.store.failSaves(store.Users, true)
	_, err = env.rewardSvc.ProcessClaim(ctx, claim.ID, "s1", models.ClaimApproved)
	assert.ErrorIs(t, err, ErrPersistence)
	env.store.failSaves(store.Users, false)

	stored, err := env.claims.GetClaimByID(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimPending, stored.Status)
	assert.Nil(t, stored.ProcessedAt)

	u := env.user(t, "s1")
	assert.Equal(t, 300, u.Points)
	assert.True(t, u.HasPendingReward(claim.ID))
}

func TestPendingRewardsMirrorPendingClaims(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 1000)
	env.addReward(t, "r1", 100)

	var ids []string
	for i := 0; i < 4; i++ {
		c, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}
	_, err := env.rewardSvc.ProcessClaim(ctx, ids[0], "s1", models.ClaimApproved)
	require.NoError(t, err)
	_, err = env.rewardSvc.ProcessClaim(ctx, ids[1], "s1", models.ClaimRejected)
	require.NoError(t, err)

	claims, err := env.rewardSvc.ListClaims(ctx, "s1")
	require.NoError(t, err)
	var pending []string
	for _, c := range claims {
		if c.Status == models.ClaimPending {
			pending = append(pending, c.ID)
		}
	}
	assert.ElementsMatch(t, pending, env.user(t, "s1").PendingRewards)
	assert.Equal(t, 900, env.user(t, "s1").Points)
}

func TestApprovalCanDriveBalanceNegative(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()
	env.addStudent(t, "s1", 150)
	env.addReward(t, "r1", 100)

	c1, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)
	c2, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	_, err = env.rewardSvc.ProcessClaim(ctx, c1.ID, "s1", models.ClaimApproved)
	require.NoError(t, err)
	_, err = env.rewardSvc.ProcessClaim(ctx, c2.ID, "s1", models.ClaimApproved)
	require.NoError(t, err)

	u := env.user(t, "s1")
	assert.Equal(t, -50, u.Points)
	assert.Equal(t, models.LevelForPoints(-50), u.Level)
}

func TestListPendingClaimsForGuardian(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()

	for _, id := range []string{"s1", "s2", "s3"} {
		s := env.addStudent(t, id, 500)
		if id != "s3" {
			s.GuardianID = "g1"
		}
		require.NoError(t, env.users.SaveUser(ctx, s))
	}
	env.addReward(t, "r1", 100)
	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := env.rewardSvc.RequestClaim(ctx, id, "r1")
		require.NoError(t, err)
	}

	claims, err := env.rewardSvc.ListPendingClaimsForGuardian(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, claims, 2)

	digests, err := env.rewardSvc.PendingDigests(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, digests, 2)
}

func TestRewardCatalog(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	ctx := context.Background()

	r, err := env.rewardSvc.CreateReward(ctx, validation.RewardCommand{Name: "Game time", Cost: 50, Icon: "🎮"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)

	list, err := env.rewardSvc.ListRewards(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = env.rewardSvc.UpdateReward(ctx, "missing", validation.RewardCommand{Name: "x"})
	assert.ErrorIs(t, err, ErrRewardNotFound)

	got, err := env.rewardSvc.GetReward(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Game time", got.Name)
}
