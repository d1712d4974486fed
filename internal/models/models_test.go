package models

import (
	"testing"
)

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   int
	}{
		{name: "zero points", points: 0, want: 1},
		{name: "just below first threshold", points: 499, want: 1},
		{name: "exactly first threshold", points: 500, want: 2},
		{name: "mid level three", points: 1250, want: 3},
		{name: "small negative balance", points: -10, want: 0},
		{name: "exactly minus one level", points: -500, want: 0},
		{name: "below minus one level", points: -501, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LevelForPoints(tt.points); got != tt.want {
				t.Errorf("LevelForPoints(%d) = %d, want %d", tt.points, got, tt.want)
			}
		})
	}
}

func TestUserPendingRewards(t *testing.T) {
	u := &User{}

	u.AddPendingReward("c1")
	u.AddPendingReward("c2")
	u.AddPendingReward("c1")

	if len(u.PendingRewards) != 2 {
		t.Fatalf("expected 2 pending rewards, got %v", u.PendingRewards)
	}
	if !u.HasPendingReward("c2") {
		t.Error("expected c2 to be pending")
	}

	u.RemovePendingReward("c1")
	if u.HasPendingReward("c1") {
		t.Error("expected c1 to be removed")
	}
	if len(u.PendingRewards) != 1 {
		t.Errorf("expected 1 pending reward, got %v", u.PendingRewards)
	}
}

func TestUserAddWeakTopicIsIdempotent(t *testing.T) {
	u := &User{}
	u.AddWeakTopic("fractions")
	u.AddWeakTopic("fractions")
	u.AddWeakTopic("geometry")

	if len(u.WeakTopics) != 2 {
		t.Errorf("WeakTopics = %v, want 2 unique entries", u.WeakTopics)
	}
}

func TestClaimStatusIsTerminal(t *testing.T) {
	tests := []struct {
		status ClaimStatus
		want   bool
	}{
		{ClaimPending, false},
		{ClaimApproved, true},
		{ClaimRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTaskTypeValid(t *testing.T) {
	for _, tt := range []TaskType{TaskTypeVideo, TaskTypeQuestion, TaskTypeTheory} {
		if !tt.Valid() {
			t.Errorf("%q should be valid", tt)
		}
	}
	if TaskType("quiz").Valid() {
		t.Error(`"quiz" should not be valid`)
	}
}
