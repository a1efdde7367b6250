package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/enrichr/config"
	"github.com/s0up4200/enrichr/enrich"
	"github.com/s0up4200/enrichr/filter"
	"github.com/s0up4200/enrichr/store"
	"github.com/s0up4200/enrichr/tmdb"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	filters *filter.Manager

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	storeDir   string
	dryRun     bool
	delay      time.Duration
	filterExpr string
	preset     string
	language   string
	logLevel   string
	noLock     bool
)

// UsageError reports a command line that cannot be run as given.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "enrichr [flags] <TMDB_BEARER_TOKEN>",
	Short: "Enrich local movie records with TMDB metadata",
	Long: `enrichr walks a directory of movie records (one JSON file per movie),
looks up every record that has no tmdb_id yet on The Movie Database and
writes the director, year, plot, poster, genres, ratings and runtime back
into the file. Records that were already enriched are left alone, so the
tool can be re-run safely.

The TMDB API read access token can be passed as the only argument, set as
tmdb.token in the config file, or exported as ENRICHR_TMDB_TOKEN.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: initializeApp,
	RunE:              runEnrich,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// SetVersion sets the version reported by --version.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "Error:", err)

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprint(os.Stderr, cmd.UsageString())
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "dir", "", "directory holding the movie records (default \"peliculas\")")
	rootCmd.PersistentFlags().StringVarP(&filterExpr, "filter", "f", "", "only process records matching this expression")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "use a filter preset from config")
	rootCmd.PersistentFlags().StringVar(&language, "language", "", "TMDB response language (default \"es-ES\")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "look records up without writing them")
	rootCmd.Flags().DurationVar(&delay, "delay", enrich.DefaultDelay, "pause after each record that queried TMDB")
	rootCmd.Flags().BoolVar(&noLock, "no-lock", false, "do not take the store lock")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(testCmd)
}

// initializeApp loads configuration, applies flag overrides and sets up logging
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	applyFlagOverrides(cmd)

	logger = setupLogger(cfg.Logging)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Enrich.Presets); err != nil {
		return fmt.Errorf("invalid filter presets: %w", err)
	}

	return nil
}

// applyFlagOverrides copies explicitly set flags over the loaded config
func applyFlagOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()

	if flags.Changed("dir") {
		cfg.Store.Dir = storeDir
	}
	if flags.Changed("language") {
		cfg.TMDB.Language = language
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}
	if flags.Changed("dry-run") {
		cfg.Safety.DryRun = dryRun
	}
	if flags.Changed("delay") {
		cfg.Enrich.Delay = delay
	}
	if flags.Changed("no-lock") && noLock {
		cfg.Store.Lock = false
	}
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	runID := uuid.NewString()

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Str("run_id", runID).Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !stderrIsTerminal(),
	}

	return zerolog.New(output).With().Timestamp().Str("run_id", runID).Logger()
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// resolveToken returns the bearer token from the argument, falling back to config
func resolveToken(args []string, configured string) (string, error) {
	if len(args) > 0 {
		if token := strings.TrimSpace(args[0]); token != "" {
			return token, nil
		}
	}
	if token := strings.TrimSpace(configured); token != "" {
		return token, nil
	}
	return "", &UsageError{Message: "missing TMDB bearer token"}
}

// newStore opens the configured record store
func newStore() (*store.Store, error) {
	return store.New(cfg.Store.Dir,
		store.WithIndexFile(cfg.Store.IndexFile),
		store.WithLogger(logger),
	)
}

// newTMDBClient creates a TMDB client from the configuration
func newTMDBClient(token string) (*tmdb.Client, error) {
	return tmdb.NewClient(token, logger,
		tmdb.WithBaseURL(cfg.TMDB.URL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithIncludeAdult(cfg.TMDB.IncludeAdult),
		tmdb.WithTimeout(cfg.TMDB.Timeout),
		tmdb.WithRateLimit(cfg.TMDB.RateLimit),
	)
}

// resolveFilter picks the record filter from flags and config
func resolveFilter() (filter.CompiledFilter, error) {
	f, err := filters.Resolve(filterExpr, preset, cfg.Enrich.Filter)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	if f != nil {
		logger.Info().Str("filter", f.Expression()).Msg("Filtering records")
	}
	return f, nil
}

func runEnrich(cmd *cobra.Command, args []string) error {
	token, err := resolveToken(args, cfg.TMDB.Token)
	if err != nil {
		return err
	}

	st, err := newStore()
	if err != nil {
		return err
	}

	if cfg.Store.Lock {
		unlock, err := st.Lock()
		if err != nil {
			return err
		}
		defer func() {
			if err := unlock(); err != nil {
				logger.Warn().Err(err).Msg("Failed to release store lock")
			}
		}()
	}

	client, err := newTMDBClient(token)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	recordFilter, err := resolveFilter()
	if err != nil {
		return err
	}

	opts := []enrich.Option{
		enrich.WithOutput(cmd.OutOrStdout()),
		enrich.WithDelay(cfg.Enrich.Delay),
		enrich.WithDryRun(cfg.Safety.DryRun),
		enrich.WithImageBaseURL(cfg.TMDB.ImageURL),
	}
	if recordFilter != nil {
		opts = append(opts, enrich.WithFilter(recordFilter))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := enrich.New(st, client, logger, opts...).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn().Msg("Interrupted, stopping early")
	}

	summary.Render(cmd.OutOrStdout(), st.Dir())
	return nil
}
