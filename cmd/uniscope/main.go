// uniscope is a terminal client for the university discovery backend:
// browse the catalog, keep favorites, rate universities, and watch local
// click analytics. All local state lives under one state directory and
// synchronizes across concurrently running uniscope processes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"uniscope/internal/bus"
	"uniscope/internal/catalog"
	"uniscope/internal/config"
	"uniscope/internal/gateway"
	"uniscope/internal/prefs"
	"uniscope/internal/rating"
	"uniscope/internal/session"
)

var (
	// Global flags
	verbose  bool
	stateDir string
	locale   string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "uniscope",
	Short: "uniscope - university discovery from your terminal",
	Long: `uniscope is a terminal client for the university discovery backend.

Browse the catalog, keep a favorites list, rate universities, and track
which ones you keep coming back to. Favorites, analytics, and your login
session are stored locally and stay in sync across every running uniscope
process.

Run without arguments to start the interactive browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, args)
	},
}

// app bundles the wired collaborators every command needs.
type app struct {
	cfg      *config.Config
	gw       *gateway.Client
	bus      *bus.Combined
	prefs    *prefs.Preferences
	sessions *session.Manager
	catalog  *catalog.Service
	cache    *catalog.Cache
	ratings  *rating.Cache

	watching bool
}

// newApp loads config and wires the stack. With watch set, the filesystem
// watcher runs so changes made by other uniscope processes arrive live;
// one-shot commands skip it, they mutate and exit.
func newApp(ctx context.Context, watch bool) (*app, error) {
	cfg, err := config.Load(stateDir)
	if err != nil {
		return nil, err
	}
	if locale != "" {
		cfg.Locale = locale
	}

	store, err := prefs.NewFileStore(cfg.PrefsDir())
	if err != nil {
		return nil, err
	}
	b, err := bus.NewCombined(store.Dir(), logger)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		gw:       gateway.New(cfg.API.BaseURL, cfg.RequestTimeout(), logger),
		bus:      b,
		prefs:    prefs.New(store, b, logger),
		sessions: session.NewManager(store, b, logger),
	}

	cache, err := catalog.OpenCache(cfg.CatalogCachePath())
	if err != nil {
		// Browsing works without the offline snapshot.
		logger.Warn("catalog cache unavailable", zap.Error(err))
	} else {
		a.cache = cache
	}
	a.catalog = catalog.NewService(a.gw, a.cache, logger)
	a.ratings = rating.NewCache(a.gw, a.sessions, logger)

	if watch {
		if err := b.Start(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to start change watcher: %w", err)
		}
		a.watching = true
	}
	return a, nil
}

// Close releases everything newApp opened.
func (a *app) Close() {
	if a.ratings != nil {
		a.ratings.Close()
	}
	if a.watching {
		a.bus.Stop()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "State directory (default: ~/.uniscope, or UNISCOPE_HOME)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "Locale for multilingual fields: en, ru, tm")

	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(universitiesCmd)
	rootCmd.AddCommand(favoritesCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(ratingCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
