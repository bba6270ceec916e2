package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
	"github.com/cloudtask/cloudtask/internal/executor"
	"github.com/cloudtask/cloudtask/internal/types"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name       string
		order      string
		field      string
		descending bool
	}{
		{"default descending", "priority-", "priority", true},
		{"ascending", "created", "created", false},
		{"explicit ascending", "created+", "created", false},
		{"alias resolved", "due-", "due_date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, descending, err := parseOrder(tt.order)
			require.NoError(t, err)
			assert.Equal(t, tt.field, field)
			assert.Equal(t, tt.descending, descending)
		})
	}
}

func TestParseOrder_Invalid(t *testing.T) {
	_, _, err := parseOrder("-")
	assert.Error(t, err)

	_, _, err = parseOrder("bogus_field-")
	assert.Error(t, err)
}

func TestParseDueDate(t *testing.T) {
	due, err := parseDueDate("2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *due)

	due, err = parseDueDate("2026-09-01T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, due.Hour())

	_, err = parseDueDate("next tuesday")
	assert.Error(t, err)
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"work", "urgent"}, splitTags("work, urgent"))
	assert.Equal(t, []string{"solo"}, splitTags("solo"))
	assert.Empty(t, splitTags(" , ,"))
}

func TestReportUpdateOutcome(t *testing.T) {
	ids := []types.ID{types.NewID(), types.NewID(), types.NewID()}
	ok := &types.Task{ID: ids[0], Title: "x", Status: types.TaskStatusDone, Priority: 5}
	failure := executor.ItemError{Index: 1, Attempts: 3, Err: errors.New("rate limited")}

	t.Run("all succeed", func(t *testing.T) {
		var buf bytes.Buffer
		err := reportUpdateOutcome(internal.NewTextFormatter(&buf), ids, []*types.Task{ok}, nil)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Updated task "+ids[0].String())
	})

	t.Run("partial failure", func(t *testing.T) {
		var buf bytes.Buffer
		err := reportUpdateOutcome(internal.NewTextFormatter(&buf), ids, []*types.Task{ok},
			[]executor.ItemError{failure})

		var cliErr *internal.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, internal.ExitPartialFailure, cliErr.Code)
		assert.Contains(t, buf.String(), "Updated task "+ids[0].String())
		assert.Contains(t, buf.String(), ids[1].String())
		assert.Contains(t, buf.String(), "3 attempt(s)")
	})

	t.Run("all fail", func(t *testing.T) {
		var buf bytes.Buffer
		err := reportUpdateOutcome(internal.NewTextFormatter(&buf), ids, nil,
			[]executor.ItemError{failure})

		var cliErr *internal.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, internal.ExitError, cliErr.Code)
	})

	t.Run("write failure surfaces", func(t *testing.T) {
		err := reportUpdateOutcome(internal.NewTextFormatter(failingWriter{}), ids, []*types.Task{ok}, nil)
		assert.Error(t, err)
	})
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("closed pipe")
}
