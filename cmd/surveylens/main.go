package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rebeliceyang/surveylens/internal/app"
	"github.com/rebeliceyang/surveylens/internal/assets"
	"github.com/rebeliceyang/surveylens/internal/config"
	"github.com/rebeliceyang/surveylens/internal/dashboard"
	"github.com/rebeliceyang/surveylens/internal/db/connection"
	"github.com/rebeliceyang/surveylens/internal/db/metadata"
	"github.com/rebeliceyang/surveylens/internal/db/query"
	"github.com/rebeliceyang/surveylens/internal/geo"
	"github.com/rebeliceyang/surveylens/internal/history"
	"github.com/rebeliceyang/surveylens/internal/logging"
	"github.com/rebeliceyang/surveylens/internal/presets"
	"github.com/rebeliceyang/surveylens/internal/registry"
	"github.com/rebeliceyang/surveylens/internal/survey"
	"github.com/rebeliceyang/surveylens/internal/urlstate"
)

// historyKeep bounds the persisted view history
const historyKeep = 1000

var (
	// Global flags
	configPath string
	verbose    bool
	fragment   string

	cfg    *config.Config
	logger *zap.Logger
	reg    = registry.Default()
)

// rootCmd launches the terminal dashboard
var rootCmd = &cobra.Command{
	Use:   "surveylens",
	Short: "surveylens - explore survey results from the terminal",
	Long: `surveylens filters a survey snapshot by respondent segment and shows
every chart for the matching respondents. Two segments can be compared side
by side, and any view can be shared as a link fragment.

Run without arguments to start the dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		// the dashboard owns the terminal; log only to a file there
		if cmd == cmd.Root() && cfg.Log.File == "" {
			logger, _ = logging.Discard()
			return nil
		}
		logger, _, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runDashboard,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVarP(&fragment, "fragment", "f", "", "Share link or fragment to open")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(breakdownCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// stack is everything a data command needs
type stack struct {
	engine   *connection.Engine
	executor *query.Executor
	service  *survey.Service
	fetcher  *assets.Fetcher
}

func (s *stack) Close() {
	if err := s.engine.Close(); err != nil {
		logger.Warn("failed to close engine", zap.Error(err))
	}
}

// newStack resolves the dataset and wires engine, executor and service.
// The engine is not initialized.
func newStack(ctx context.Context) (*stack, error) {
	cacheDir, err := cfg.GetCachePath()
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}
	fetcher := assets.NewFetcher(cfg.Assets.BaseURL, cacheDir, logger.Named("assets"))

	engineCfg := cfg.Engine
	if engineCfg.Driver != "pgx" {
		fctx, cancel := context.WithTimeout(ctx, cfg.Assets.FetchTimeout)
		path, err := fetcher.Resolve(fctx, assets.DatasetPath, engineCfg.DatasetPath)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("resolve dataset: %w", err)
		}
		engineCfg.DatasetPath = path
	}

	engine := connection.NewEngine(engineCfg, logger.Named("engine"))
	executor := query.NewExecutor(engine, engineCfg.CacheEntries, engineCfg.QueryTimeout, logger.Named("query"))
	return &stack{
		engine:   engine,
		executor: executor,
		service:  survey.NewService(reg, executor, logger.Named("survey")),
		fetcher:  fetcher,
	}, nil
}

// openStack is newStack with the engine initialized
func openStack(ctx context.Context) (*stack, error) {
	s, err := newStack(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Initialize(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func newPresets() (*presets.Manager, error) {
	dir, err := cfg.GetPresetsDir()
	if err != nil {
		logger.Warn("no config directory, user presets disabled", zap.Error(err))
		dir = ""
	}
	return presets.NewManager(dir, reg, logger.Named("presets"))
}

func newCodec() *urlstate.Codec {
	return urlstate.NewCodec(reg, logger.Named("urlstate"), cfg.Log.Development)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the dashboard needs a terminal; use a subcommand for scripted output")
	}

	ctx, cancel := signalContext()
	defer cancel()

	s, err := newStack(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	mgr, err := newPresets()
	if err != nil {
		return err
	}

	ctrl := dashboard.New(dashboard.Config{
		Registry: reg,
		Fetcher:  s.service,
		Engine:   s.engine,
		LoadOptions: func(ctx context.Context) (map[string][]string, error) {
			return metadata.LoadOptions(ctx, s.executor, s.service.Rewriter(), reg, logger.Named("metadata"))
		},
		Presets:    mgr,
		Codec:      newCodec(),
		Logger:     logger.Named("dashboard"),
		FetchLimit: cfg.UI.FetchLimit,
	})

	store := openHistory()
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	model := app.New(app.Options{
		Config:     cfg,
		Controller: ctrl,
		Service:    s.service,
		World:      loadWorld(ctx, s.fetcher),
		History:    store,
		Logger:     logger.Named("app"),
		Fragment:   fragment,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running program: %w", err)
	}
	hits, misses := s.executor.CacheStats()
	logger.Debug("session ended", zap.Uint64("cache_hits", hits), zap.Uint64("cache_misses", misses))
	if frag := model.Fragment(); frag != "" {
		fmt.Println(cfg.UI.ShareBaseURL + frag)
	}
	return nil
}

// loadWorld returns the geography for map labels, nil when unavailable
func loadWorld(ctx context.Context, fetcher *assets.Fetcher) *geo.World {
	fctx, cancel := context.WithTimeout(ctx, cfg.Assets.FetchTimeout)
	defer cancel()
	path, err := fetcher.Resolve(fctx, assets.GeographyPath, cfg.Assets.GeographyPath)
	if err != nil {
		logger.Warn("geography unavailable, map shows country codes", zap.Error(err))
		return nil
	}
	w, err := geo.Load(path)
	if err != nil {
		logger.Warn("geography unreadable, map shows country codes", zap.Error(err))
		return nil
	}
	return w
}

// openHistory opens the persisted view history, nil when unavailable
func openHistory() *history.Store {
	dir, err := config.GetConfigPath()
	if err == nil {
		err = os.MkdirAll(dir, 0755)
	}
	if err != nil {
		logger.Warn("view history disabled", zap.Error(err))
		return nil
	}
	store, err := history.NewStore(filepath.Join(dir, "history.db"))
	if err != nil {
		logger.Warn("view history disabled", zap.Error(err))
		return nil
	}
	if err := store.Prune(historyKeep); err != nil {
		logger.Warn("failed to prune view history", zap.Error(err))
	}
	return store
}
