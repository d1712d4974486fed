package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyquest/internal/logger"
	"studyquest/internal/models"
)

func newBackupService(env *testEnv) *BackupService {
	return NewBackupService(env.users, env.rewards, env.claims, env.tasks, env.questions, "memory", logger.Nop())
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestEnv(t, time.UTC)
	src.addStudent(t, "s1", 300)
	src.addReward(t, "r1", 100)
	_, err := src.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)
	require.NoError(t, src.tasks.SaveTasks(ctx, &models.Task{ID: "t1", Title: "Read", Type: models.TaskTypeTheory, Duration: 10, Difficulty: 1}))

	var buf bytes.Buffer
	require.NoError(t, newBackupService(src).ExportToWriter(ctx, &buf))

	dst := newTestEnv(t, time.UTC)
	dst.addStudent(t, "stale", 1)
	require.NoError(t, newBackupService(dst).ImportFromReader(ctx, &buf, true))

	users, err := dst.users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "s1", users[0].ID)
	assert.Len(t, users[0].PendingRewards, 1)

	claims, err := dst.claims.ListClaims(ctx)
	require.NoError(t, err)
	assert.Len(t, claims, 1)

	tasks, err := dst.tasks.ListTasks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestBackupMergeKeepsExisting(t *testing.T) {
	ctx := context.Background()
	src := newTestEnv(t, time.UTC)
	src.addStudent(t, "s1", 300)

	var buf bytes.Buffer
	require.NoError(t, newBackupService(src).ExportToWriter(ctx, &buf))

	dst := newTestEnv(t, time.UTC)
	dst.addStudent(t, "s2", 5)
	require.NoError(t, newBackupService(dst).ImportFromReader(ctx, &buf, false))

	users, err := dst.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestBackupRejectsUnknownVersion(t *testing.T) {
	env := newTestEnv(t, time.UTC)
	err := newBackupService(env).ImportFromReader(context.Background(), strings.NewReader(`{"version":"99"}`), true)
	assert.Error(t, err)
}

func TestBackupSummarize(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.UTC)
	env.addStudent(t, "s1", 300)
	env.addStudent(t, "s2", 0)
	env.addReward(t, "r1", 100)
	_, err := env.rewardSvc.RequestClaim(ctx, "s1", "r1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, newBackupService(env).ExportToWriter(ctx, &buf))

	backup, err := ReadBackup(&buf)
	require.NoError(t, err)

	summary := backup.Summarize()
	assert.Equal(t, BackupVersion, summary.Version)
	assert.Equal(t, "memory", summary.Backend)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 1, summary.PendingClaims)
	assert.Equal(t, 2, summary.Records["users"])
	assert.Equal(t, 0, summary.Records["tasks"])
}
