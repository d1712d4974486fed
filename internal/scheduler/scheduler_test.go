package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyquest/internal/logger"
	"studyquest/internal/models"
	"studyquest/internal/service"
)

type fakeGuardians []models.User

func (f fakeGuardians) ListGuardians(context.Context) ([]models.User, error) { return f, nil }

type fakeDigests map[string][]service.PendingDigest

func (f fakeDigests) PendingDigests(_ context.Context, guardianID string) ([]service.PendingDigest, error) {
	if guardianID == "broken" {
		return nil, errors.New("store down")
	}
	return f[guardianID], nil
}

type fakeSender struct {
	sentTo []string
}

func (f *fakeSender) SendPendingClaimsReminder(_ context.Context, g *models.User, _ []service.PendingDigest) error {
	f.sentTo = append(f.sentTo, g.ID)
	return nil
}

func TestSendReminders(t *testing.T) {
	guardians := fakeGuardians{{ID: "g1"}, {ID: "g2"}, {ID: "broken"}}
	digests := fakeDigests{
		"g1": {{Student: models.User{Name: "Maya"}, Claims: []models.Claim{{ID: "c1"}}}},
	}
	sender := &fakeSender{}

	s := New(time.UTC, "18:00", guardians, digests, sender, logger.Nop())
	sent, err := s.SendReminders(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{"g1"}, sender.sentTo)
}

func TestStartRejectsBadTime(t *testing.T) {
	s := New(time.UTC, "25:99", fakeGuardians{}, fakeDigests{}, &fakeSender{}, logger.Nop())
	assert.Error(t, s.Start())
	s.Stop()
}
