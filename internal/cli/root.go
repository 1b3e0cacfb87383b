// Package cli implements the fond-memory CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fondmemory/fond-memory/internal/album"
	"github.com/fondmemory/fond-memory/internal/config"
	"github.com/fondmemory/fond-memory/internal/logging"
	"github.com/fondmemory/fond-memory/internal/media"
	"github.com/fondmemory/fond-memory/internal/store"
)

var (
	dbPath     string
	configPath string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "fond-memory",
	Short: "A family album of photos, videos and voice notes",
	Long: "Keep memories (a title, a category and some photos, videos or recorded audio) " +
		"in a local SQLite-backed album. Export and import the whole album as JSON.",
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $FOND_MEMORY_DB or storage.db_path)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.config/fond-memory/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json, text or auto")
}

func loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		expanded, err := config.ExpandPath(dbPath)
		if err != nil {
			return nil, fmt.Errorf("resolve --db: %w", err)
		}
		cfg.Storage.DBPath = expanded
	}
	return cfg, nil
}

// app bundles everything a command needs to work on the album.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *store.SQLiteStore
	lock    *flock.Flock
	album   *album.Store
	library *media.Library
	items   *media.Factory
}

// openApp loads configuration, takes the instance lock and opens the album.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, logger)
}

// newApp opens the album described by cfg. A failed album read is logged
// and leaves an empty album that never releases payloads; the process keeps
// running.
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another fond-memory process is using %s", cfg.Storage.DBPath)
	}

	db, err := store.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}

	lib := media.NewLibrary(db)
	a := &app{
		cfg:     cfg,
		logger:  logger,
		db:      db,
		lock:    lock,
		library: lib,
		items:   media.NewFactory(db),
	}

	a.album, err = album.Open(ctx, album.NewSlotPersistence(db, cfg.Storage.SlotKey),
		album.WithSweeper(lib), album.WithLogger(logger))
	var rerr *album.StorageReadError
	if errors.As(err, &rerr) {
		logger.Warn("album could not be read; starting empty and keeping stored media", zap.Error(err))
	} else if err != nil {
		a.Close()
		return nil, err
	}
	logger.Debug("album opened", zap.String("db", cfg.Storage.DBPath), zap.Int("memories", a.album.Len()))
	return a, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
	if err := a.lock.Unlock(); err != nil {
		a.logger.Warn("release lock", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// textOutput reports whether results should be rendered for humans.
func textOutput() bool {
	switch formatFlag {
	case "text":
		return true
	case "auto":
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	default:
		return false
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
