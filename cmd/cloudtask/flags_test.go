package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
)

func TestGlobalFlags_GetOutputFormat(t *testing.T) {
	flags := &GlobalFlags{OutputFormat: "json"}
	assert.Equal(t, internal.FormatJSON, flags.GetOutputFormat())

	flags.OutputFormat = "text"
	assert.Equal(t, internal.FormatText, flags.GetOutputFormat())
}

func TestGlobalFlags_VerboseQuiet(t *testing.T) {
	flags := &GlobalFlags{Verbose: true}
	assert.True(t, flags.IsVerbose())
	assert.False(t, flags.IsQuiet())

	// Quiet wins over verbose.
	flags.Quiet = true
	assert.False(t, flags.IsVerbose())
	assert.True(t, flags.IsQuiet())
}

func TestParseGlobalFlags_RejectsBadCombinations(t *testing.T) {
	saved := *globalFlags
	defer func() { *globalFlags = saved }()

	cmd := &cobra.Command{Use: "test"}

	globalFlags.OutputFormat = "xml"
	_, err := ParseGlobalFlags(cmd)
	assert.ErrorContains(t, err, "invalid output format")

	globalFlags.OutputFormat = "text"
	globalFlags.Verbose = true
	globalFlags.Quiet = true
	_, err = ParseGlobalFlags(cmd)
	assert.ErrorContains(t, err, "cannot be used together")
}
