package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/marquee/internal/catalogapi"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/history"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/player"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const historyPullTimeout = 10 * time.Second

type flags struct {
	version  bool
	list     bool
	group    bool
	query    string
	genre    string
	sort     string
	admin    bool
	login    bool
	register bool
	logout   bool
}

func main() {
	var f flags
	flag.BoolVar(&f.version, "v", false, "print version")
	flag.BoolVar(&f.version, "version", false, "print version")
	flag.BoolVar(&f.list, "list", false, "print the catalog as a table and exit")
	flag.BoolVar(&f.group, "group", false, "group -list output by genre")
	flag.StringVar(&f.query, "q", "", "title search used with -list")
	flag.StringVar(&f.genre, "genre", "", "genre filter used with -list")
	flag.StringVar(&f.sort, "sort", "", "sort order: rating, year or title")
	flag.BoolVar(&f.admin, "admin", false, "open the admin screen")
	flag.BoolVar(&f.login, "login", false, "sign in and save the session")
	flag.BoolVar(&f.register, "register", false, "create an account and save the session")
	flag.BoolVar(&f.logout, "logout", false, "forget the saved session")
	flag.Parse()

	if f.version {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version, "server", cfg.Server.URL)

	sortName := cfg.UI.DefaultSort
	if f.sort != "" {
		sortName = f.sort
	}
	sortKey, err := domain.ParseSortKey(sortName)
	if err != nil {
		return err
	}

	client := catalogapi.NewClient(cfg.Server.URL, cfg.Server.CatalogPath, cfg.Server.Timeout, logger)
	ctx := context.Background()

	switch {
	case f.logout:
		return runLogout(cfg, logger)

	case f.login, f.register:
		return runSignIn(ctx, client, cfg, f.register)

	case f.list:
		return runList(ctx, os.Stdout, client, domain.Query{
			Text:   f.query,
			Genres: []string{f.genre},
			Sort:   sortKey,
		}, f.group)
	}

	if f.admin && !cfg.IsSignedIn() {
		if err := runSignIn(ctx, client, cfg, false); err != nil {
			return err
		}
	}
	if f.admin && !cfg.IsAdmin() {
		return errors.New("the admin screen requires an admin account")
	}

	return runTUI(ctx, cfg, client, sortKey, f.admin, logger)
}

// runLogout forgets the session and the local watch history
func runLogout(cfg *config.Config, logger *slog.Logger) error {
	if err := config.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	historyStore, err := store.NewHistoryStore(config.GetDataPath(), cfg.Server.URL, cfg.History.Limit, logger)
	if err != nil {
		logger.Warn("failed to open history store", "error", err)
	} else {
		if err := historyStore.Clear(); err != nil {
			logger.Warn("failed to clear watch history", "error", err)
		}
		historyStore.Close()
	}

	fmt.Println("Signed out.")
	return nil
}

func runTUI(ctx context.Context, cfg *config.Config, client *catalogapi.Client, sortKey domain.SortKey, startInAdmin bool, logger *slog.Logger) error {
	// Local watch history
	historyStore, err := store.NewHistoryStore(config.GetDataPath(), cfg.Server.URL, cfg.History.Limit, logger)
	if err != nil {
		logger.Warn("failed to open history store, using memory only", "error", err)
		historyStore, _ = store.NewHistoryStore("", cfg.Server.URL, cfg.History.Limit, logger)
	}
	defer historyStore.Close()

	historySvc := history.NewService(historyStore, client, cfg.Session.Token, cfg.History.Sync, logger)
	go func() {
		pullCtx, cancel := context.WithTimeout(ctx, historyPullTimeout)
		defer cancel()
		if err := historySvc.Pull(pullCtx); err != nil {
			logger.Warn("failed to pull watch history", "error", err)
		}
	}()

	// Create launcher (uses configured player or auto-detects)
	launcher := player.NewLauncher(cfg.Player.Command, cfg.Player.Args, logger)
	playbackSvc := player.NewPlaybackService(launcher, historySvc, logger)

	model := tui.NewModel(ctx, tui.Services{
		Catalog:  client,
		Playback: playbackSvc,
		History:  historySvc,
		Search:   search.NewService(logger),
		Logger:   logger,
	}, tui.Options{
		Token:            cfg.Session.Token,
		UserName:         cfg.Session.Name,
		IsAdmin:          cfg.IsAdmin(),
		StartInAdmin:     startInAdmin,
		BrowseInterval:   cfg.Catalog.BrowseInterval,
		AdminInterval:    cfg.Catalog.AdminInterval,
		KeepStaleOnError: cfg.Catalog.KeepStaleOnError,
		Optimistic:       cfg.Catalog.Optimistic,
		TrendingSize:     cfg.Catalog.TrendingSize,
		DefaultSort:      sortKey,
	})

	// Run the TUI
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	logger.Info("starting TUI")

	final, err := p.Run()
	if m, ok := final.(tui.Model); ok {
		m.Close()
	}
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}
