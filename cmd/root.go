// Package cmd provides the CLI commands for vcsprompt.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dvidx/vcsprompt/internal/config"
	"github.com/dvidx/vcsprompt/internal/domain"
	"github.com/dvidx/vcsprompt/internal/format"
	"github.com/dvidx/vcsprompt/internal/services"
)

// Version info (set at build time via ldflags)
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// Exit codes: 0 repository found, 1 not a repository, 2 operational
// error. Stdout only ever carries the prompt line; diagnostics go to
// stderr.
const (
	exitNotFound = 1
	exitError    = 2
)

var (
	// Global flags
	formatFlag   string
	colorFlag    bool
	logLevelFlag string

	// Global dependencies
	appConfig *config.Config
	promptSvc *services.PromptService
)

// rootCmd renders the prompt line for the given path (default: cwd).
var rootCmd = &cobra.Command{
	Use:   "vcsprompt [path]",
	Short: "Print a VCS status line for a shell prompt",
	Long: `vcsprompt inspects the given path (default: the current directory),
finds the version control repository governing it by walking parent
directories, and prints one formatted status line read directly from the
repository's on-disk metadata. No VCS executable is invoked.

Format placeholders: %n name, %b branch, %r revision, %p path,
%u upstream, %A ahead count, %B behind count, %m dirty marker,
%o operations, %% literal percent.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		start := "."
		if len(args) > 0 {
			start = args[0]
		}

		fmtStr := appConfig.Format.Default
		if cmd.Flags().Changed("format") {
			fmtStr = formatFlag
		}
		spec, err := format.Parse(fmtStr, appConfig.Format.Strict)
		if err != nil {
			return err
		}

		out, found, err := promptSvc.Run(context.Background(), start, spec)
		if err != nil {
			return err
		}
		if out != "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
		}
		if !found {
			return domain.ErrNotARepository
		}
		return nil
	},
}

// Execute runs the root command and maps errors to exit codes. A prompt
// renderer must never spill a stack trace onto stdout; not-a-repository
// exits silently.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, domain.ErrNotARepository) {
			os.Exit(exitNotFound)
		}
		log.Error().Err(err).Msg("vcsprompt failed")
		os.Exit(exitError)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Format string (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&colorFlag, "color", false, "Colorize output")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "warn", "Log level: trace, debug, info, warn, error")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("vcsprompt {{.Version}}\n")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(configCmd)
}

// initializeServices loads configuration, configures logging and builds
// the prompt service.
func initializeServices(cmd *cobra.Command) error {
	setupLogging()

	var err error
	appConfig, err = config.Load()
	if err != nil {
		// Degrade to defaults; a broken config file must not break the
		// host shell's prompt.
		log.Warn().Err(err).Msg("using default configuration")
		appConfig = config.DefaultConfig()
	}
	if cmd.Flags().Changed("color") {
		appConfig.Output.Color = colorFlag
	}
	if os.Getenv("NO_COLOR") != "" {
		appConfig.Output.Color = false
	}

	promptSvc = services.NewPromptService(appConfig)
	return nil
}

func setupLogging() {
	level, err := zerolog.ParseLevel(logLevelFlag)
	if err != nil {
		level = zerolog.WarnLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
