// Package main provides the CLI entrypoint for wordtrack.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/wordtrack/internal/config"
	"github.com/verte-zerg/wordtrack/internal/listen"
	"github.com/verte-zerg/wordtrack/internal/model"
	"github.com/verte-zerg/wordtrack/internal/preview"
	"github.com/verte-zerg/wordtrack/internal/recognize"
	"github.com/verte-zerg/wordtrack/internal/registry"
	"github.com/verte-zerg/wordtrack/internal/stats"
	"github.com/verte-zerg/wordtrack/internal/store"
	"github.com/verte-zerg/wordtrack/internal/tracker"
	"github.com/verte-zerg/wordtrack/internal/tui"
	"github.com/verte-zerg/wordtrack/internal/wordlist"
)

const (
	defaultEngine       = engineDaemon
	defaultLogLevel     = "info"
	defaultDemoInterval = "1.5s"
	defaultDemoWords    = 8
	defaultTrendWindow  = 5
	sortInsertion       = "insertion"
	sortCount           = "count"
)

var (
	dbPath string

	listenEngine   string
	listenLocale   string
	listenPreview  int
	listenLogLevel string
	daemonSocket   string
	deepgramAudio  string

	listSort string

	historySince  string
	historyLast   int
	historyWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wordtrack",
		Short:         "Count tracked words in live speech",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runListenCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DefaultDBPath(), "path to the SQLite database")
	rootCmd.PersistentFlags().StringVar(&listenLogLevel, "log-level", defaultLogLevel, "log level (debug|info|warn|error)")

	rootCmd.Flags().StringVar(&listenEngine, "engine", defaultEngine, "recognition engine (daemon|deepgram|demo)")
	rootCmd.Flags().StringVar(&listenLocale, "locale", recognize.DefaultLocale, "recognition locale")
	rootCmd.Flags().IntVar(&listenPreview, "preview", preview.DefaultSize, "number of recent words shown")
	rootCmd.Flags().StringVar(&daemonSocket, "socket", "", "transcription daemon socket path")
	rootCmd.Flags().StringVar(&deepgramAudio, "audio", "", "raw 16-bit PCM source for deepgram (file, fifo or '-' for stdin)")

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "log-level", &listenLogLevel, fileCfg.Listen.LogLevel)
	return fileCfg, nil
}

func runListenCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "engine", &listenEngine, fileCfg.Listen.Engine)
	applyStringConfig(cmd, "locale", &listenLocale, fileCfg.Listen.Locale)
	applyIntConfig(cmd, "preview", &listenPreview, fileCfg.Listen.Preview)
	applyStringConfig(cmd, "socket", &daemonSocket, fileCfg.Daemon.Socket)
	applyStringConfig(cmd, "audio", &deepgramAudio, fileCfg.Deepgram.Audio)

	cfg, err := buildConfig(fileCfg)
	if err != nil {
		return err
	}

	logFile, err := openLogFile(config.DefaultLogPath())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logFile.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()
	logger, err := newLogger(logFile, cfg.LogLevel)
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	reg, err := registry.Load(ctx, store.NewWordStore(st, logger))
	if err != nil {
		logger.Warn("starting with no tracked words", "err", err)
		logErrf("warning: %v; starting with no tracked words\n", err)
	}
	tr := tracker.New(reg, preview.New(cfg.PreviewSize), tracker.WithRecorder(st), tracker.WithLogger(logger))

	engine, err := buildEngine(cfg, tr, logger)
	if err != nil {
		return err
	}
	notices := tui.NewNotices()
	ctrl := listen.New(engine, tr,
		listen.WithConfig(recognize.DefaultConfig(cfg.Locale)),
		listen.WithNotify(notices.Send),
		listen.WithLogger(logger),
	)
	logger.Info("wordtrack started", "engine", cfg.Engine, "locale", cfg.Locale, "available", ctrl.Available())

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.Engine == engineDeepgram && cfg.DeepgramAudio == "-" {
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(tui.NewModel(tr, ctrl, notices, cfg.Locale, logger), opts...)
	_, runErr := program.Run()
	if err := ctrl.Stop(ctx); err != nil {
		logger.Warn("stop on exit failed", "err", err)
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

func buildConfig(fileCfg config.FileConfig) (model.Config, error) {
	cfg := model.Config{
		Engine:         strings.ToLower(strings.TrimSpace(listenEngine)),
		Locale:         strings.TrimSpace(listenLocale),
		PreviewSize:    listenPreview,
		LogLevel:       listenLogLevel,
		DaemonSocket:   daemonSocket,
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramAudio:  deepgramAudio,
		DemoWords:      defaultDemoWords,
	}
	if v := fileCfg.Deepgram.APIKey; v != nil && *v != "" {
		cfg.DeepgramAPIKey = *v
	}
	if v := fileCfg.Deepgram.Model; v != nil {
		cfg.DeepgramModel = *v
	}
	if v := fileCfg.Deepgram.SampleRate; v != nil {
		cfg.DeepgramSampleRate = *v
	}
	if v := fileCfg.Demo.Words; v != nil {
		cfg.DemoWords = *v
	}
	if v := fileCfg.Demo.WordList; v != nil {
		cfg.DemoWordList = *v
	}
	interval := defaultDemoInterval
	if v := fileCfg.Demo.Interval; v != nil {
		interval = *v
	}
	d, err := time.ParseDuration(interval)
	if err != nil {
		return model.Config{}, fmt.Errorf("invalid demo interval %q: %w", interval, err)
	}
	cfg.DemoInterval = d

	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	switch cfg.Engine {
	case engineDaemon, engineDeepgram, engineDemo:
	default:
		return fmt.Errorf("--engine must be one of daemon, deepgram, demo")
	}
	if cfg.Locale == "" {
		return fmt.Errorf("--locale must not be empty")
	}
	if cfg.PreviewSize <= 0 {
		return fmt.Errorf("--preview must be > 0")
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.DemoInterval <= 0 {
		return fmt.Errorf("demo interval must be > 0")
	}
	if cfg.DemoWords <= 0 {
		return fmt.Errorf("demo words must be > 0")
	}
	if cfg.DeepgramSampleRate < 0 {
		return fmt.Errorf("deepgram sample-rate must be >= 0")
	}
	return nil
}

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add WORD...",
		Short: "Start tracking words",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAddCmd,
	}
}

func runAddCmd(cmd *cobra.Command, args []string) error {
	return withRegistry(cmd, func(ctx context.Context, reg *registry.Registry) error {
		for _, arg := range args {
			added, err := reg.Add(ctx, arg)
			if err != nil {
				return fmt.Errorf("failed to save tracked words: %w", err)
			}
			if !added {
				logErrf("skipped %q (empty or already tracked)\n", arg)
				continue
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "tracking %q\n", strings.TrimSpace(arg)); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove WORD...",
		Short: "Stop tracking words (exact spelling)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runRemoveCmd,
	}
}

func runRemoveCmd(cmd *cobra.Command, args []string) error {
	return withRegistry(cmd, func(ctx context.Context, reg *registry.Registry) error {
		var missing []string
		for _, arg := range args {
			removed, err := reg.Remove(ctx, arg)
			if err != nil {
				return fmt.Errorf("failed to save tracked words: %w", err)
			}
			if !removed {
				missing = append(missing, fmt.Sprintf("%q", arg))
				continue
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", arg); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("not tracking %s (spelling must match the list exactly)", strings.Join(missing, ", "))
		}
		return nil
	})
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show tracked words and lifetime counts",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().StringVar(&listSort, "sort", sortInsertion, "order (insertion|count)")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	if listSort != sortInsertion && listSort != sortCount {
		return fmt.Errorf("--sort must be %s or %s", sortInsertion, sortCount)
	}
	return withRegistry(cmd, func(_ context.Context, reg *registry.Registry) error {
		words := reg.List()
		if listSort == sortCount {
			words = stats.TopWords(words, 0)
		}
		out := cmd.OutOrStdout()
		if err := stats.RenderWordTable(out, words, false, stats.ShouldUseColor(out)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Track every word listed in a file (one per line, # comments)",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	words, err := wordlist.LoadWords(args[0])
	if err != nil {
		return fmt.Errorf("failed to load word list: %w", err)
	}
	return withRegistry(cmd, func(ctx context.Context, reg *registry.Registry) error {
		added := 0
		var saveErr error
		for _, w := range words {
			ok, err := reg.Add(ctx, w)
			if ok {
				added++
			}
			if err != nil {
				saveErr = err
			}
		}
		if saveErr != nil {
			return fmt.Errorf("failed to save tracked words: %w", saveErr)
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d words\n", added, len(words)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	})
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show listening sessions",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&historyWindow, "window", defaultTrendWindow, "moving average window for the trend")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	h, err := stats.BuildHistory(cmd.Context(), st, model.HistoryConfig{Since: sinceTime, Last: historyLast})
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := stats.RenderSummary(out, h, historyWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSessionTable(out, h.Sessions, stats.ShouldUseColor(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// withRegistry opens the store and loads tracked words for a one-shot command.
func withRegistry(cmd *cobra.Command, fn func(ctx context.Context, reg *registry.Registry) error) error {
	if _, err := loadFileConfig(cmd); err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, listenLogLevel)
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reg, err := registry.Load(ctx, store.NewWordStore(st, logger))
	if err != nil {
		return err
	}
	return fn(ctx, reg)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o600); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# wordtrack configuration
# Uncomment a value to enable it. CLI flags override config values.

[listen]
# engine = %q         # Recognition engine: daemon, deepgram or demo
# locale = %q          # Recognition locale
# preview = %d              # Number of recent words shown
# log-level = %q          # debug, info, warn or error

[daemon]
# socket = ""               # Defaults to $XDG_RUNTIME_DIR/wordtrack/transcribe.sock

[deepgram]
# api-key = ""              # Falls back to $DEEPGRAM_API_KEY
# model = "nova-3"
# sample-rate = 16000
# audio = "-"               # Raw 16-bit mono PCM: file, fifo or "-" for stdin

[demo]
# interval = %q           # Delay between generated sentences
# words = %d                # Words per sentence
# wordlist = ""             # Vocabulary file, one word per line
`,
		defaultEngine,
		recognize.DefaultLocale,
		preview.DefaultSize,
		defaultLogLevel,
		defaultDemoInterval,
		defaultDemoWords,
	)
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("--log-level must be one of debug, info, warn, error")
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
