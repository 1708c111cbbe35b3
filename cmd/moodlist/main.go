package main

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/brizzai/moodlist/internal/auth"
	"github.com/brizzai/moodlist/internal/config"
	"github.com/brizzai/moodlist/internal/logger"
	"github.com/brizzai/moodlist/internal/playlist"
	"github.com/brizzai/moodlist/internal/server"
	"github.com/brizzai/moodlist/internal/spotify"
	"github.com/brizzai/moodlist/internal/users"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "moodlist",
	Short: "Guess your mood from what you have been listening to",
	Long: `Moodlist logs you in with Spotify, scores the mood of your recently played
tracks and can build a playlist of happy tracks from the artists you listen to.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	RunE:  runServe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration with secrets redacted",
	RunE:  runConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	}
	rootCmd.AddCommand(serveCmd, configCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting moodlist",
		zap.String("version", config.GetVersionInfo()),
		zap.String("address", cfg.Server.Addr()),
		zap.String("storage", string(cfg.Storage.Driver)),
	)

	app := fx.New(
		fx.Supply(cfg),
		config.Module,
		users.Module,
		spotify.Module,
		auth.Module,
		playlist.Module,
		server.Module,
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.GetLogger()}
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	out, err := cfg.YAML()
	if err != nil {
		return err
	}
	pterm.DefaultSection.Println("Effective configuration")
	pterm.Println(string(out))
	return nil
}
