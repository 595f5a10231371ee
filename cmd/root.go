package cmd

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huanfeng/updategen/internal/config"
	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/internal/logger"
	"github.com/huanfeng/updategen/internal/menu"
	"github.com/huanfeng/updategen/internal/version"
	"github.com/huanfeng/updategen/pkg/models"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/huanfeng/updategen/pkg/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// skipConfigAnnotation marks commands that run on built-in defaults so a
// broken config file cannot lock them out.
const skipConfigAnnotation = "updategen/skip-config"

var (
	cfgFile      string
	sourceRoot   string
	templatesDir string
	recentLength int
	langFlag     string
	verbose      bool
	logFile      string
	noColor      bool

	appConfig *models.Config
	appLogger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "updategen",
	Short:         "Manage versioned update metadata for software products",
	Long:          `updategen maintains per-product folders of version records together with the index and latest files that client applications poll for updates.`,
	Version:       version.Short(),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLogger.Sync()
	},
	RunE: runInteractive,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := i18n.Init(langFromArgs(os.Args[1:])); err != nil {
		fmt.Fprintf(os.Stderr, "i18n init failed: %v\n", err)
	}
	applyCommandLocalization()

	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func init() {
	// setup reaches rootCmd through the localization pass
	rootCmd.PersistentPreRunE = setup
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./updategen.yaml or ~/.config/updategen/updategen.yaml)")
	rootCmd.PersistentFlags().StringVar(&sourceRoot, "source-root", "", "directory holding the products")
	rootCmd.PersistentFlags().StringVar(&templatesDir, "templates-dir", "", "directory holding version templates")
	rootCmd.PersistentFlags().IntVar(&recentLength, "recent-length", 0, "number of versions kept in the recent index")
	rootCmd.PersistentFlags().StringVar(&langFlag, "lang", "", "interface language (en, zh)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// setup loads configuration and the logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if cmd.Annotations[skipConfigAnnotation] != "true" {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	if langFlag == "" && cfg.Lang != "" {
		if err := i18n.Init(cfg.Lang); err == nil {
			applyCommandLocalization()
		}
	}

	log, err := logger.Setup(logger.Options{
		Config:  cfg.Log,
		Verbose: verbose,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return errors.NewConfigurationError(err, "LOGGER_SETUP_FAILED", "failed to set up logging")
	}

	appConfig = &cfg
	appLogger = log
	appLogger.Debug("Configuration loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("source_root", cfg.SourceRoot),
		zap.String("templates_dir", cfg.TemplatesDir),
		zap.Int("recent_index_length", cfg.RecentIndexLength))
	return nil
}

// runInteractive starts the menu session when no subcommand is given
func runInteractive(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	prompter := menu.NewConsolePrompter(cmd.InOrStdin(), out)
	styles := menu.NewStyles(out, !noColor)

	session := menu.NewSession(menu.New(prompter, out, styles), out, menu.Options{
		SourceRoot:        appConfig.SourceRoot,
		TemplatesDir:      appConfig.TemplatesDir,
		RecentIndexLength: appConfig.RecentIndexLength,
		Logger:            appLogger,
		ShowBanner:        true,
	})
	return session.Run()
}

// openService opens product under the configured source root
func openService(product string) (*service.Service, error) {
	return service.Open(appConfig.SourceRoot, product, repo.Options{
		RecentIndexLength: appConfig.RecentIndexLength,
		Logger:            appLogger,
	})
}

// printError writes err for a person; --verbose adds context and suggestions
func printError(w io.Writer, err error) {
	var ue *errors.UpdateError
	if verbose && stderrors.As(err, &ue) {
		fmt.Fprint(w, ue.FormatDetailed())
		return
	}
	fmt.Fprintln(w, i18n.T("error.prefix", map[string]interface{}{"Message": err.Error()}))
}

// langFromArgs finds --lang before cobra parses flags, so help text can
// be localized.
func langFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--lang="); ok {
			return v
		}
		if arg == "--lang" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
