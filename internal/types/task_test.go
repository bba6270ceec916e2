package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_Validate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{
			name: "valid task",
			task: Task{Title: "write report", Priority: 5, Status: TaskStatusActive},
		},
		{
			name:    "missing title",
			task:    Task{Priority: 5},
			wantErr: true,
		},
		{
			name:    "priority too high",
			task:    Task{Title: "x", Priority: 11},
			wantErr: true,
		},
		{
			name:    "priority too low",
			task:    Task{Title: "x", Priority: 0},
			wantErr: true,
		},
		{
			name:    "unknown status",
			task:    Task{Title: "x", Priority: 5, Status: "bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, NewError(TASK_INVALID, ""))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("")
	assert.Error(t, err)

	_, err = ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestTaskStatus_IsValid(t *testing.T) {
	assert.True(t, TaskStatusPending.IsValid())
	assert.True(t, TaskStatusDone.IsValid())
	assert.False(t, TaskStatus("cancelled").IsValid())
}
