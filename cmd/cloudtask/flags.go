package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
)

// GlobalFlags holds global flags available to all commands
type GlobalFlags struct {
	Verbose      bool
	Quiet        bool
	OutputFormat string
	ConfigFile   string
	HomeDir      string
	APIKey       string
	BaseURL      string
	Explain      bool
	Local        bool
}

var globalFlags = &GlobalFlags{}

// RegisterGlobalFlags registers persistent flags on the root command
func RegisterGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVarP(&globalFlags.OutputFormat, "output", "o", "text", "Output format (text|json)")
	cmd.PersistentFlags().StringVar(&globalFlags.ConfigFile, "config", "", "Path to config file (default: $CLOUDTASK_HOME/config.yaml)")
	cmd.PersistentFlags().StringVar(&globalFlags.HomeDir, "home", "", "CloudTask home directory (default: ~/.cloudtask)")
	cmd.PersistentFlags().StringVar(&globalFlags.APIKey, "api-key", "", "API key (overrides saved key and CLOUDTASK_API_KEY)")
	cmd.PersistentFlags().StringVar(&globalFlags.BaseURL, "url", "", "API base URL (overrides config and CLOUDTASK_URL)")
	cmd.PersistentFlags().BoolVar(&globalFlags.Explain, "explain", false, "Print the request instead of executing it")
	cmd.PersistentFlags().BoolVar(&globalFlags.Local, "local", false, "Use the local sqlite store instead of the API")
}

// ParseGlobalFlags parses and validates global flags from the command
func ParseGlobalFlags(cmd *cobra.Command) (*GlobalFlags, error) {
	format := globalFlags.OutputFormat
	if format != string(internal.FormatText) && format != string(internal.FormatJSON) {
		return nil, internal.NewCLIError(internal.ExitError,
			fmt.Sprintf("invalid output format %q (must be text or json)", format))
	}

	if globalFlags.Verbose && globalFlags.Quiet {
		return nil, internal.NewCLIError(internal.ExitError,
			"--verbose and --quiet cannot be used together")
	}

	return globalFlags, nil
}

// GetOutputFormat returns the parsed OutputFormat enum
func (f *GlobalFlags) GetOutputFormat() internal.OutputFormat {
	if f.OutputFormat == string(internal.FormatJSON) {
		return internal.FormatJSON
	}
	return internal.FormatText
}

// IsVerbose returns true if verbose mode is enabled
func (f *GlobalFlags) IsVerbose() bool {
	return f.Verbose && !f.Quiet
}

// IsQuiet returns true if quiet mode is enabled
func (f *GlobalFlags) IsQuiet() bool {
	return f.Quiet
}
