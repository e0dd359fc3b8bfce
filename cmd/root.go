package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/repository"
	"github.com/kamal-hamza/nfts-cli/pkg/config"
	"github.com/kamal-hamza/nfts-cli/pkg/logging"
	"github.com/kamal-hamza/nfts-cli/pkg/ui"
	"github.com/kamal-hamza/nfts-cli/pkg/workspace"
)

var (
	// Global workspace and configuration
	appWorkspace *workspace.Workspace
	appConfig    *config.Config
	appLogger    = zap.NewNop()

	// Flags and environment, resolved by viper
	appViper = viper.New()

	// Repositories
	historyRepo *repository.FileHistoryRepository
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nfts",
	Short: "nfts - upload images and NFT metadata to nft.storage",
	Long: ui.StyleTitle.Render("NFTS") + " - NFT Asset Uploader\n\n" +
		"Upload an image together with its metadata record to an nft.storage\n" +
		"compatible service and print the resulting ipfs:// URI.",
	PersistentPreRunE: initializeApp,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

// Execute runs the root command. Errors are printed to stderr and exit with status 1.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, ui.FormatMuted(hint))
		}
		_ = appLogger.Sync()
		os.Exit(1)
	}
	_ = appLogger.Sync()
}

func init() {
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("token", "", "API token (default $NFT_STORAGE_TOKEN)")
	flags.String("endpoint", "", "storage API endpoint (default $NFT_STORAGE_ENDPOINT or config)")
	flags.String("config", "", "config file (default is $XDG_CONFIG_HOME/nfts/config.yaml)")
	flags.Bool("verbose", false, "enable debug logging")

	_ = appViper.BindPFlag("token", flags.Lookup("token"))
	_ = appViper.BindPFlag("endpoint", flags.Lookup("endpoint"))
	_ = appViper.BindPFlag("config", flags.Lookup("config"))
	_ = appViper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = appViper.BindEnv("token", "NFT_STORAGE_TOKEN")
	_ = appViper.BindEnv("endpoint", "NFT_STORAGE_ENDPOINT")
	_ = appViper.BindEnv("config", "NFTS_CONFIG")
}

// initializeApp loads the workspace, configuration and logger
func initializeApp(cmd *cobra.Command, args []string) error {
	ws, err := workspace.New()
	if err != nil {
		return fmt.Errorf("failed to initialize workspace: %w", err)
	}
	appWorkspace = ws

	configPath := appViper.GetString("config")
	if configPath == "" {
		configPath = appWorkspace.ConfigPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	level := appConfig.LogLevel
	if appViper.GetBool("verbose") {
		level = "debug"
	}
	if cmd.Name() == "serve" {
		appLogger, err = logging.NewServer(level)
	} else {
		appLogger, err = logging.NewCLI(level)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	historyRepo = repository.NewFileHistoryRepository(appWorkspace.HistoryPath())
	return nil
}

// getContext returns a context cancelled on Ctrl-C or SIGTERM
func getContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
