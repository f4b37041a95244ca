package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"loom/internal/config"
	"loom/internal/deps"
	"loom/internal/docstore"
	"loom/internal/logging"
	"loom/internal/objstore"
)

// Daemon coordinates the intake API and the event processor, and enforces
// single-instance execution through a file lock in the data directory.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *docstore.Store
	bucket    *objstore.Bucket
	processor *Processor
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Events       map[docstore.EventStatus]int
	DBPath       string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *docstore.Store, bucket *objstore.Bucket, processor *Processor, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || bucket == nil || processor == nil {
		return nil, errors.New("daemon requires config, store, bucket, and processor")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		store:     store,
		bucket:    bucket,
		processor: processor,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, requeues events stranded by a previous
// crash, and launches the processor loop and the API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another loom daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)

	for _, status := range deps.Missing(deps.CheckBinaries(deps.ForConfig(d.cfg))) {
		d.logger.Warn("external binary unavailable",
			logging.String("name", status.Name),
			logging.String("detail", status.Detail))
	}

	reset, err := d.store.ResetStuckEvents(d.ctx)
	if err != nil {
		d.releaseStart()
		return fmt.Errorf("reset stuck events: %w", err)
	}
	if reset > 0 {
		d.logger.Info("requeued interrupted events", logging.Int64("count", reset))
	}

	d.processor.Start(d.ctx)

	if err := d.api.start(d.ctx); err != nil {
		d.processor.Stop()
		d.releaseStart()
		return err
	}

	d.running.Store(true)
	d.logger.Info("loom daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) releaseStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.ctx = nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.processor.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("loom daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or "" when the server is not listening.
func (d *Daemon) APIAddr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) (Status, error) {
	stats, err := d.store.EventStats(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("event stats: %w", err)
	}
	return Status{
		Running:      d.running.Load(),
		Events:       stats,
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
	}, nil
}
