package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/dmitrijs2005/offlinesync/internal/client/config"
	"github.com/dmitrijs2005/offlinesync/internal/client/future"
	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/client/netclient"
	"github.com/dmitrijs2005/offlinesync/internal/client/offline"
	"github.com/dmitrijs2005/offlinesync/internal/client/store"
	"github.com/dmitrijs2005/offlinesync/internal/filex"
	"github.com/dmitrijs2005/offlinesync/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// pinger reports whether the server is reachable.
type pinger interface {
	Ping(ctx context.Context, url string) error
}

// syncEngine is the part of *offline.Engine the CLI drives.
type syncEngine interface {
	FetchData(ctx context.Context, url string, off offline.OfflineCompletion, on offline.Completion) *future.Future[[]byte]
	FetchImage(ctx context.Context, url string, off offline.ImageOfflineCompletion, on offline.ImageCompletion) *future.Future[image.Image]
	Post(ctx context.Context, url string, payload []byte, done offline.Completion) *future.Future[[]byte]
	Synchronize(ctx context.Context) (offline.SyncReport, error)
	SynchronizeAtLaunch(ctx context.Context) (offline.SyncReport, error)
	Pending(ctx context.Context) ([]*models.PendingRequest, error)
	PendingCount(ctx context.Context) (int, error)
	FlushOfflineData(ctx context.Context) (int64, error)
	FlushOfflineImages(ctx context.Context) (int64, error)
	FlushUnsentData(ctx context.Context) (int64, error)
	FlushAll(ctx context.Context) (offline.FlushReport, error)
	Close() error
}

type App struct {
	config *config.Config
	db     *sql.DB
	engine syncEngine
	pinger pinger
	logger logging.Logger

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the store, builds the network router and the engine.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend, os.Stderr, c.Debug)
	if err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(c.DatabaseDSN); err != nil {
		return nil, err
	}
	db, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		logger.Error(ctx, "error initializing database", "dsn", c.DatabaseDSN, "error", err)
		return nil, err
	}

	httpClient := netclient.NewHTTPClient(c.RequestTimeout)
	router := netclient.NewRouter().
		Handle("http", httpClient).
		Handle("https", httpClient)

	if c.S3Enabled() {
		s3Client, err := netclient.NewS3Client(ctx, netclient.S3Options{
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		router.Handle("s3", s3Client)
	}

	eng, err := offline.Open(ctx, db, router,
		offline.WithWorkers(c.Workers),
		offline.WithRequestTimeout(c.RequestTimeout),
		offline.WithRefreshOnSync(c.RefreshOnSync),
		offline.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		db:     db,
		engine: eng,
		pinger: httpClient,
		logger: logger,
		mode:   ModeOffline,
	}, nil
}

// Close stops the engine and closes the store.
func (a *App) Close() error {
	var errs []error
	if a.engine != nil {
		errs = append(errs, a.engine.Close())
	}
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	return errors.Join(errs...)
}

// Run synchronizes once, starts the connectivity watcher and blocks in the
// REPL until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	printlnFn("Welcome to offlinesync (type 'help' for commands)")

	if report, err := a.engine.SynchronizeAtLaunch(ctx); err != nil {
		a.logger.Warn(ctx, "synchronize at launch failed", "error", err)
	} else if report.Total > 0 {
		printlnFn("launch sync:", report.String())
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode records mode and reports whether it changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	a.logger.Info(ctx, "mode switched", "mode", string(mode))
	return true
}

func (a *App) getStatus() string {
	s := string(a.Mode())
	if n, err := a.engine.PendingCount(context.Background()); err == nil && n > 0 {
		s = fmt.Sprintf("%s, %d pending", s, n)
	}
	return fmt.Sprintf("(%s)", s)
}
