package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyquest/internal/models"
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestParseCompleteTask(t *testing.T) {
	tests := []struct {
		name      string
		taskID    string
		req       CompleteTaskRequest
		wantField string
	}{
		{name: "all hints", taskID: "t1", req: CompleteTaskRequest{Duration: intPtr(30), NetCount: intPtr(4), Correct: boolPtr(true), Topic: " algebra ", DaysLeft: intPtr(3)}},
		{name: "no hints", taskID: "t1"},
		{name: "missing task", taskID: "  ", wantField: "task_id"},
		{name: "negative duration", taskID: "t1", req: CompleteTaskRequest{Duration: intPtr(-1)}, wantField: "duration"},
		{name: "negative net count", taskID: "t1", req: CompleteTaskRequest{NetCount: intPtr(-2)}, wantField: "net_count"},
		{name: "negative days left", taskID: "t1", req: CompleteTaskRequest{DaysLeft: intPtr(-1)}, wantField: "days_left"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompleteTask("u1", tt.taskID, tt.req)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var verr ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestParseCompleteTaskNormalizes(t *testing.T) {
	cmd, err := ParseCompleteTask("u1", "t1", CompleteTaskRequest{Topic: " algebra ", Duration: intPtr(25)})
	require.NoError(t, err)

	assert.Equal(t, "algebra", cmd.Topic)
	assert.False(t, cmd.Correct, "absent correct counts as incorrect")
	assert.Nil(t, cmd.NetCount)
	require.NotNil(t, cmd.Duration)
	assert.Equal(t, 25, *cmd.Duration)
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input   string
		want    models.ClaimStatus
		wantErr bool
	}{
		{input: "approved", want: models.ClaimApproved},
		{input: "Approve", want: models.ClaimApproved},
		{input: "rejected", want: models.ClaimRejected},
		{input: " reject ", want: models.ClaimRejected},
		{input: "pending", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecision(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecision(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDecision(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseReward(t *testing.T) {
	cmd, err := ParseReward(RewardRequest{Name: " Movie night ", Cost: intPtr(100)})
	require.NoError(t, err)
	assert.Equal(t, "Movie night", cmd.Name)
	assert.Equal(t, 100, cmd.Cost)
	assert.NotEmpty(t, cmd.Icon)

	_, err = ParseReward(RewardRequest{Name: "Free", Cost: intPtr(0)})
	assert.NoError(t, err)

	_, err = ParseReward(RewardRequest{Name: "x"})
	assert.Error(t, err)

	_, err = ParseReward(RewardRequest{Name: "x", Cost: intPtr(-5)})
	assert.Error(t, err)

	_, err = ParseReward(RewardRequest{Cost: intPtr(5)})
	assert.Error(t, err)
}

func TestValidateTask(t *testing.T) {
	task := &models.Task{Title: "Watch intro", Type: models.TaskTypeVideo, Duration: 15}
	require.NoError(t, ValidateTask(task))
	assert.Equal(t, 1.0, task.Difficulty)

	bad := []models.Task{
		{Title: "", Type: models.TaskTypeVideo, Duration: 10},
		{Title: "Quiz", Type: "quiz", Duration: 10},
		{Title: "Read", Type: models.TaskTypeTheory, Duration: 0},
		{Title: "Read", Type: models.TaskTypeTheory, Duration: 10, Difficulty: -1},
	}
	for i := range bad {
		assert.Error(t, ValidateTask(&bad[i]), "task %d", i)
	}
}

func TestValidateProgram(t *testing.T) {
	req, err := ValidateProgram(ProgramRequest{Subject: " Chemistry ", DaysLeft: 14})
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", req.Subject)
	assert.Equal(t, 60, req.DailyMinutes)

	_, err = ValidateProgram(ProgramRequest{Subject: "Chemistry"})
	assert.Error(t, err)

	_, err = ValidateProgram(ProgramRequest{DaysLeft: 3})
	assert.Error(t, err)
}
