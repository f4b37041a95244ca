package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"loom/internal/config"
	"loom/internal/docstore"
	"loom/internal/ingest"
	"loom/internal/logging"
	"loom/internal/response"
	"loom/internal/services"
	"loom/internal/session"
)

// maxEventAttempts bounds delivery retries for transient failures.
const maxEventAttempts = 3

// SectionAssembler runs the full assembly flow for one section delivery.
type SectionAssembler interface {
	Assemble(ctx context.Context, clips []response.AnswerClip, meta session.SectionMetadata, key session.Key, mapping response.URLMapping) error
}

// MediaFetcher stores remote answer media in the object bucket.
type MediaFetcher interface {
	Fetch(ctx context.Context, mediaURL, objectDir, filename string) (string, error)
}

// Processor drains queued webhook events and assembles sessions from them.
type Processor struct {
	store     *docstore.Store
	fetcher   MediaFetcher
	assembler SectionAssembler
	logger    *slog.Logger

	baseURL         string
	responsesDir    string
	completedStatus string
	titlePolicy     ingest.TitlePolicy
	interval        time.Duration

	processed atomic.Int64
	failed    atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewProcessor constructs the event loop from configuration.
func NewProcessor(cfg *config.Config, store *docstore.Store, fetcher MediaFetcher, assembler SectionAssembler, logger *slog.Logger) (*Processor, error) {
	if cfg == nil || store == nil || fetcher == nil || assembler == nil {
		return nil, errors.New("processor requires config, store, fetcher, and assembler")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		store:           store,
		fetcher:         fetcher,
		assembler:       assembler,
		logger:          logging.NewComponentLogger(logger, "processor"),
		baseURL:         strings.TrimRight(cfg.Storage.BaseURL, "/"),
		responsesDir:    strings.Trim(cfg.Storage.ResponsesDir, "/"),
		completedStatus: cfg.Ingest.CompletedStatus,
		titlePolicy: ingest.TitlePolicy{
			StripWord: cfg.Ingest.LabelStripWord,
			MaxWords:  cfg.Ingest.TitleMaxWords,
		},
		interval: time.Duration(cfg.Workflow.EventPollInterval) * time.Second,
	}, nil
}

// Start launches the polling loop. It returns immediately.
func (p *Processor) Start(ctx context.Context) {
	if p.done != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.drain(loopCtx)
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				p.drain(loopCtx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight event to settle.
func (p *Processor) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.done != nil {
		<-p.done
		p.done = nil
	}
}

// Counts returns lifetime processed and failed event totals.
func (p *Processor) Counts() (processed, failed int64) {
	return p.processed.Load(), p.failed.Load()
}

// drain claims and handles pending events until the queue is empty. Events
// requeued during the pass are not reclaimed; their redelivery waits for the
// next tick so transient failures get paced retries instead of a tight loop.
func (p *Processor) drain(ctx context.Context) {
	var requeued []int64
	for ctx.Err() == nil {
		event, err := p.store.NextPendingEvent(ctx, requeued...)
		if err != nil {
			p.logger.Error("claim event", logging.Error(err))
			return
		}
		if event == nil {
			return
		}
		if p.handle(ctx, event) {
			requeued = append(requeued, event.ID)
		}
	}
}

// handle settles one claimed event and reports whether it was requeued.
func (p *Processor) handle(ctx context.Context, event *docstore.Event) bool {
	ctx = services.WithEventID(ctx, event.ID)
	ctx = services.WithTenantID(ctx, event.TenantID)
	log := logging.WithContext(ctx, p.logger)

	err := p.process(ctx, event)
	switch {
	case err == nil:
		p.processed.Add(1)
		if markErr := p.store.MarkEventCompleted(ctx, event.ID); markErr != nil {
			log.Error("mark event completed", logging.Error(markErr))
			return false
		}
		log.Info("event completed", logging.Int("attempts", event.Attempts))
	case services.Retryable(err) && event.Attempts < maxEventAttempts:
		if markErr := p.store.RequeueEvent(ctx, event.ID, err.Error()); markErr != nil {
			log.Error("requeue event", logging.Error(markErr))
			return false
		}
		log.Warn("event requeued",
			logging.Int("attempts", event.Attempts),
			logging.Error(err))
		return true
	default:
		p.failed.Add(1)
		if markErr := p.store.MarkEventFailed(ctx, event.ID, err.Error()); markErr != nil {
			log.Error("mark event failed", logging.Error(markErr))
			return false
		}
		log.Error("event failed", logging.Int("attempts", event.Attempts), logging.Error(err))
	}
	return false
}

func (p *Processor) process(ctx context.Context, event *docstore.Event) error {
	payload, err := ingest.ParsePayload([]byte(event.PayloadJSON))
	if err != nil {
		return err
	}
	if err := ingest.Validate(payload, p.completedStatus); err != nil {
		return err
	}

	vars := payload.Contact.Variables
	ctx = services.WithSectionID(ctx, vars.SectionID)

	clips := ingest.BuildClips(payload, p.titlePolicy)
	objectPrefix := fmt.Sprintf("%s/%s/%s/%s/", vars.TenantID, p.responsesDir, vars.SeriesID, vars.ContactUserID)

	for _, clip := range clips {
		if clip.MediaURL == "" {
			continue
		}
		if _, err := p.fetcher.Fetch(ctx, clip.MediaURL, objectPrefix, clip.MediaFilename); err != nil {
			return err
		}
	}

	mapping := response.URLMapping{
		URLPrefix:    p.baseURL + "/o/" + url.PathEscape(objectPrefix),
		ObjectPrefix: objectPrefix,
	}
	return p.assembler.Assemble(ctx, clips, ingest.SectionMetadata(payload), ingest.SessionKey(payload), mapping)
}
