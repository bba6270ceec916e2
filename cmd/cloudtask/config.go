package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
	"github.com/cloudtask/cloudtask/internal/config"
	"github.com/cloudtask/cloudtask/internal/types"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CloudTask configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	Long:  `Display the effective configuration after defaults, the config file and flag overrides`,
	RunE:  runConfigShow,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Save the API key",
	Long:  `Save the API key to the home directory so future commands pick it up automatically`,
	RunE:  runConfigSetKey,
}

var setKeyValue string

func init() {
	configSetKeyCmd.Flags().StringVar(&setKeyValue, "key", "", "API key to save - required")
	configSetKeyCmd.MarkFlagRequired("key")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetKeyCmd)
}

// runConfigShow executes the config show command
func runConfigShow(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	if flags.GetOutputFormat() == internal.FormatJSON {
		return internal.NewFormatter(internal.FormatJSON, cmd.OutOrStdout()).PrintJSON(appCfg)
	}

	data, err := yaml.Marshal(appCfg)
	if err != nil {
		return types.WrapError(types.CONFIG_PARSE_FAILED, "failed to render config", err)
	}
	cmd.Print(string(data))
	return nil
}

// runConfigSetKey executes the config set-key command
func runConfigSetKey(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(appHome, 0o700); err != nil {
		return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to create home directory", err)
	}

	path := config.APIKeyPath(appHome)
	// The key file is readable by the owner only.
	if err := os.WriteFile(path, []byte(setKeyValue+"\n"), 0o600); err != nil {
		return types.WrapError(types.CONFIG_LOAD_FAILED, "failed to write API key file", err)
	}

	formatter := internal.NewFormatter(flags.GetOutputFormat(), cmd.OutOrStdout())
	return formatter.PrintSuccess(fmt.Sprintf("API key saved to %s", path))
}
