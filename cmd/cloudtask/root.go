package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudtask/cloudtask/cmd/cloudtask/internal"
	"github.com/cloudtask/cloudtask/internal/api"
	"github.com/cloudtask/cloudtask/internal/config"
	"github.com/cloudtask/cloudtask/internal/store"
	"github.com/cloudtask/cloudtask/internal/types"
)

var rootCmd = &cobra.Command{
	Use:   "cloudtask",
	Short: "CloudTask - task management from the command line",
	Long: `CloudTask manages tasks against the CloudTask API or a local
sqlite database.

Searches use a small filter language:

  cloudtask task search "priority >= 7 status == active"
  cloudtask task search "tags in [work,urgent] assigned_to != null"`,
	PersistentPreRunE: loadConfig,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// appCfg holds the configuration resolved by loadConfig for the running
// command. appHome is the resolved home directory.
var (
	appCfg  *config.Config
	appHome string
)

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig is called before any command runs to resolve configuration
func loadConfig(cmd *cobra.Command, args []string) error {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return err
	}

	// version, help and completion work without configuration
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}

	homeDir := flags.HomeDir
	if homeDir == "" {
		homeDir = os.Getenv("CLOUDTASK_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}

	configFile := flags.ConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	cfg, err := config.NewLoader(config.NewValidator()).LoadOrDefault(configFile)
	if err != nil {
		return err
	}
	cfg.Core.HomeDir = homeDir

	if flags.BaseURL != "" {
		cfg.API.BaseURL = flags.BaseURL
	}

	internal.SetupLogging(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format, flags.IsVerbose())

	appCfg = cfg
	appHome = homeDir
	return nil
}

// resolveAPIKey returns the API key for this invocation: the --api-key flag,
// then CLOUDTASK_API_KEY, then the saved key file.
func resolveAPIKey(flags *GlobalFlags) (string, error) {
	if flags.APIKey != "" {
		return flags.APIKey, nil
	}
	if key := os.Getenv("CLOUDTASK_API_KEY"); key != "" {
		return key, nil
	}

	data, err := os.ReadFile(config.APIKeyPath(appHome))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read saved API key", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// openStore builds the record store selected by the global flags. The
// returned closer is a no-op for the remote store.
func openStore(flags *GlobalFlags) (store.Store, func() error, error) {
	if flags.Local {
		cfg := store.DefaultDBConfig(appCfg.Database.Path)
		cfg.BusyTimeout = appCfg.Database.BusyTimeout
		db, err := store.OpenWithConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.NewLocalStore(db), db.Close, nil
	}

	apiKey, err := resolveAPIKey(flags)
	if err != nil {
		return nil, nil, err
	}

	client := api.New(appCfg.API.BaseURL, apiKey,
		api.WithHTTPClient(&http.Client{Timeout: appCfg.API.Timeout}),
		api.WithRetryPolicy(appCfg.API.RetryPolicy()),
	)
	return store.NewRemoteStore(client), func() error { return nil }, nil
}

func init() {
	RegisterGlobalFlags(rootCmd)

	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for CloudTask.

To load completions in the current bash session:

  $ source <(cloudtask completion bash)
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}
