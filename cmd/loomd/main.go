package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"loom/internal/config"
	"loom/internal/daemon"
	"loom/internal/docstore"
	"loom/internal/ingest"
	"loom/internal/logging"
	"loom/internal/media/frames"
	"loom/internal/objstore"
	"loom/internal/session"
	"loom/internal/transcoder"
)

func main() {
	configPath := flag.String("config", "", "path to the loom configuration file")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := docstore.Open(cfg)
	if err != nil {
		logger.Error("open document store", logging.Error(err))
		return
	}

	bucket, err := objstore.NewBucket(cfg.Storage.BucketDir, cfg.Storage.BaseURL)
	if err != nil {
		logger.Error("open media bucket", logging.Error(err))
		return
	}

	client, err := transcoder.NewHTTPClient(cfg.Transcoder.BaseURL, cfg.Transcoder.APIKey,
		transcoder.WithRequestTimeout(time.Duration(cfg.Transcoder.TimeoutSeconds)*time.Second))
	if err != nil {
		logger.Error("build transcoder client", logging.Error(err))
		return
	}
	merger, err := transcoder.NewMerger(client,
		transcoder.WithPollBudget(cfg.Transcoder.PollMaxAttempts, time.Duration(cfg.Transcoder.PollBaseDelayMS)*time.Millisecond),
		transcoder.WithLogger(logger))
	if err != nil {
		logger.Error("build transcoder merger", logging.Error(err))
		return
	}

	thumbs, err := session.NewThumbnailPipeline(bucket, frames.NewExtractor(frames.WithBinary(cfg.Tools.FFmpeg)), store,
		cfg.Paths.StagingDir, cfg.Storage.ThumbnailsDir,
		session.WithSaveRetries(cfg.Workflow.ThumbnailRetries, 500*time.Millisecond),
		session.WithThumbnailLogger(logger))
	if err != nil {
		logger.Error("build thumbnail pipeline", logging.Error(err))
		return
	}

	assembler, err := session.NewAssembler(store,
		daemon.MergeAdapter{Merger: merger},
		daemon.NewBucketProber(bucket, cfg.Tools.FFprobe),
		bucket, thumbs,
		session.AssemblerConfig{
			PublicBaseURL: cfg.Storage.BaseURL,
			SessionsDir:   cfg.Storage.SessionsDir,
		}, logger)
	if err != nil {
		logger.Error("build assembler", logging.Error(err))
		return
	}

	fetcher, err := ingest.NewFetcher(bucket,
		ingest.WithFetchTimeout(time.Duration(cfg.Ingest.FetchTimeoutSeconds)*time.Second),
		ingest.WithFetchLogger(logger))
	if err != nil {
		logger.Error("build media fetcher", logging.Error(err))
		return
	}

	processor, err := daemon.NewProcessor(cfg, store, fetcher, assembler, logger)
	if err != nil {
		logger.Error("build processor", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, store, bucket, processor, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("loomd shutting down")
	d.Stop()
}
