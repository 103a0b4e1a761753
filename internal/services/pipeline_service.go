package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"github.com/nkhandel/go-call-digest-backend/internal/calls"
	"github.com/nkhandel/go-call-digest-backend/internal/domain"
	"github.com/nkhandel/go-call-digest-backend/internal/providers"
	"github.com/nkhandel/go-call-digest-backend/internal/repo"
	"github.com/nkhandel/go-call-digest-backend/internal/summary"
)

// missingRecordingNote is published in place of a transcript when the event
// carries no recording URL. The notification still goes out: the desk wants
// to know the call happened even when telephony kept no audio.
const missingRecordingNote = "No recording available for this call."

// Collaborator contracts. The concrete implementations live in
// internal/providers; the interfaces are declared here, on the consumer side,
// so tests can substitute fakes without touching HTTP.
type (
	// Downloader fetches recording audio.
	Downloader interface {
		Download(ctx context.Context, url string) ([]byte, error)
	}

	// Transcriber converts audio to text.
	Transcriber interface {
		Transcribe(ctx context.Context, audio []byte) (string, error)
	}

	// Summarizer produces the remote digest. Any error degrades to the local
	// fallback; it never fails the call.
	Summarizer interface {
		Summarize(ctx context.Context, transcript string) (providers.Summary, error)
	}

	// Notifier delivers the formatted message.
	Notifier interface {
		Publish(ctx context.Context, message string) error
	}

	// CustomerNamer resolves a customer number to a display name, best effort.
	CustomerNamer interface {
		DisplayName(rawNumber string) string
	}
)

// Coordinator owns the per-call processing pipeline. Submit claims the call
// in the ledger and, on a fresh claim, runs the expensive chain in a
// goroutine bounded by a weighted semaphore. Every accepted call terminates
// in exactly one of published or failed.
type Coordinator struct {
	DB        *gorm.DB
	Directory calls.AgentLookup

	Recordings  Downloader
	Transcriber Transcriber
	Summarizer  Summarizer
	Notifier    Notifier
	Customers   CustomerNamer

	// MaxRetries bounds retry attempts per transient-failing step.
	MaxRetries uint64
	// RetryInterval seeds the exponential backoff between attempts.
	RetryInterval time.Duration

	// Per-collaborator deadlines. A deadline overrun is a step failure.
	DownloadTimeout   time.Duration
	TranscribeTimeout time.Duration
	SummarizeTimeout  time.Duration
	PublishTimeout    time.Duration

	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	closed atomic.Bool
}

// CoordinatorOpts carries tunables from config into NewCoordinator. Zero
// values select defaults.
type CoordinatorOpts struct {
	MaxConcurrent     int64
	MaxRetries        uint64
	RetryInterval     time.Duration
	DownloadTimeout   time.Duration
	TranscribeTimeout time.Duration
	SummarizeTimeout  time.Duration
	PublishTimeout    time.Duration
}

// NewCoordinator wires the pipeline. All collaborator fields are required
// except Summarizer and Customers, which degrade gracefully when nil.
func NewCoordinator(db *gorm.DB, dir calls.AgentLookup, rec Downloader, tr Transcriber, sum Summarizer, not Notifier, cust CustomerNamer, opts CoordinatorOpts) *Coordinator {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 3
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 2 * time.Second
	}
	if opts.DownloadTimeout <= 0 {
		opts.DownloadTimeout = time.Minute
	}
	if opts.TranscribeTimeout <= 0 {
		opts.TranscribeTimeout = 2 * time.Minute
	}
	if opts.SummarizeTimeout <= 0 {
		opts.SummarizeTimeout = 45 * time.Second
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = 15 * time.Second
	}
	return &Coordinator{
		DB:                db,
		Directory:         dir,
		Recordings:        rec,
		Transcriber:       tr,
		Summarizer:        sum,
		Notifier:          not,
		Customers:         cust,
		MaxRetries:        opts.MaxRetries,
		RetryInterval:     opts.RetryInterval,
		DownloadTimeout:   opts.DownloadTimeout,
		TranscribeTimeout: opts.TranscribeTimeout,
		SummarizeTimeout:  opts.SummarizeTimeout,
		PublishTimeout:    opts.PublishTimeout,
		sem:               semaphore.NewWeighted(opts.MaxConcurrent),
	}
}

// Task is the handle for one accepted call. Wait blocks until the pipeline
// reaches a terminal status.
type Task struct {
	CallID string

	done   chan struct{}
	status string
	err    error
}

// Wait blocks until the pipeline terminates or ctx is done. It returns the
// terminal status (domain.StatusPublished or domain.StatusFailed) and, for
// failed calls, the error that stopped the pipeline.
func (t *Task) Wait(ctx context.Context) (string, error) {
	select {
	case <-t.done:
		return t.status, t.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Submit validates and claims the event, then starts the pipeline for fresh
// claims. It returns fast: the expensive work runs asynchronously behind the
// returned Task.
//
// Error contract: ErrMissingCallID and ErrNotCompleted reject the event with
// no ledger row; ErrDuplicateCall means an earlier delivery owns the call and
// this one should be acknowledged and dropped.
func (c *Coordinator) Submit(ctx context.Context, ev domain.CallEvent) (*Task, error) {
	if strings.TrimSpace(ev.CallID) == "" {
		pipelineOutcomes.WithLabelValues("rejected").Inc()
		return nil, ErrMissingCallID
	}
	if ev.Status != "" && !strings.EqualFold(ev.Status, "completed") {
		pipelineOutcomes.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: status %q", ErrNotCompleted, ev.Status)
	}
	if c.closed.Load() {
		return nil, ErrShuttingDown
	}

	if _, err := repo.TryClaim(ctx, c.DB, ev); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			pipelineOutcomes.WithLabelValues("duplicate").Inc()
			log.Info().Str("call_id", ev.CallID).Msg("duplicate delivery ignored")
			return nil, ErrDuplicateCall
		}
		return nil, fmt.Errorf("claim call: %w", err)
	}

	t := &Task{CallID: ev.CallID, done: make(chan struct{})}
	c.wg.Add(1)
	// The pipeline must outlive the webhook request: once a call is claimed
	// there is no user cancellation, only its own step deadlines.
	go c.run(context.WithoutCancel(ctx), ev, t)
	return t, nil
}

// Shutdown stops accepting new submissions and waits for in-flight pipelines
// to terminate or ctx to expire.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.closed.Store(true)
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run drives one claimed call to a terminal status.
func (c *Coordinator) run(ctx context.Context, ev domain.CallEvent, t *Task) {
	defer c.wg.Done()
	defer close(t.done)

	l := log.With().Str("call_id", ev.CallID).Logger()

	fail := func(stage string, err error) {
		t.status, t.err = domain.StatusFailed, err
		pipelineOutcomes.WithLabelValues("failed").Inc()
		l.Error().Err(err).Str("stage", stage).Msg("pipeline failed")
		if mErr := repo.MarkFailed(ctx, c.DB, ev.CallID, fmt.Errorf("%s: %w", stage, err)); mErr != nil {
			l.Error().Err(mErr).Msg("could not record failure")
		}
	}

	if err := repo.MarkProcessing(ctx, c.DB, ev.CallID); err != nil {
		fail("mark processing", err)
		return
	}

	r := calls.Resolve(ev, c.Directory)
	l.Info().
		Str("direction", r.Direction).
		Str("agent", r.Agent.Name).
		Bool("agent_known", r.AgentKnown).
		Msg("call resolved")

	if err := c.sem.Acquire(ctx, 1); err != nil {
		fail("acquire slot", err)
		return
	}
	pipelineInflight.Inc()
	defer func() {
		c.sem.Release(1)
		pipelineInflight.Dec()
	}()

	transcript, err := c.transcribeCall(ctx, ev, l)
	if err != nil {
		fail("transcribe", err)
		return
	}

	digestText := c.summarize(ctx, transcript, l)

	customerName := ""
	if c.Customers != nil {
		if name := c.Customers.DisplayName(r.CustomerNumber); name != providers.UnknownCustomer {
			customerName = name
		}
	}

	msg := FormatMessage(Digest{
		Event:        ev,
		Resolution:   r,
		Transcript:   transcript,
		Summary:      digestText,
		CustomerName: customerName,
	})

	start := time.Now()
	err = c.withRetries(ctx, "publish", c.PublishTimeout, func(stepCtx context.Context) error {
		return c.Notifier.Publish(stepCtx, msg)
	})
	observeStep("publish", start)
	if err != nil {
		fail("publish", err)
		return
	}

	outcome := repo.PublishedOutcome{
		Direction:  r.Direction,
		AgentName:  r.Agent.Name,
		Transcript: transcript,
		Summary:    digestText,
	}
	if err := repo.MarkPublished(ctx, c.DB, ev.CallID, outcome); err != nil {
		fail("mark published", err)
		return
	}

	t.status = domain.StatusPublished
	pipelineOutcomes.WithLabelValues("published").Inc()
	l.Info().Str("direction", r.Direction).Msg("call digest published")
}

// transcribeCall downloads the recording and transcribes it, both with
// bounded retries. Events without a recording URL skip the chain and publish
// a placeholder transcript.
func (c *Coordinator) transcribeCall(ctx context.Context, ev domain.CallEvent, l zerolog.Logger) (string, error) {
	if strings.TrimSpace(ev.RecordingURL) == "" {
		l.Warn().Msg("event has no recording url, publishing without transcript")
		return missingRecordingNote, nil
	}

	var audio []byte
	start := time.Now()
	err := c.withRetries(ctx, "download", c.DownloadTimeout, func(stepCtx context.Context) error {
		var dErr error
		audio, dErr = c.Recordings.Download(stepCtx, ev.RecordingURL)
		return dErr
	})
	observeStep("download", start)
	if err != nil {
		return "", fmt.Errorf("download recording: %w", err)
	}

	var transcript string
	start = time.Now()
	err = c.withRetries(ctx, "transcribe", c.TranscribeTimeout, func(stepCtx context.Context) error {
		var tErr error
		transcript, tErr = c.Transcriber.Transcribe(stepCtx, audio)
		return tErr
	})
	observeStep("transcribe", start)
	if err != nil {
		return "", fmt.Errorf("transcribe recording: %w", err)
	}
	return transcript, nil
}

// summarize asks the remote summarizer once and falls back to the local
// extractive digest on any error. It never fails the pipeline.
func (c *Coordinator) summarize(ctx context.Context, transcript string, l zerolog.Logger) string {
	if c.Summarizer != nil {
		stepCtx, cancel := context.WithTimeout(ctx, c.SummarizeTimeout)
		defer cancel()
		start := time.Now()
		s, err := c.Summarizer.Summarize(stepCtx, transcript)
		observeStep("summarize", start)
		if err == nil {
			return s.Text
		}
		l.Warn().Err(err).Msg("remote summarizer unavailable, using local fallback")
	}
	return summary.Fallback(transcript)
}

// withRetries runs step with a fresh deadline per attempt and exponential
// backoff between attempts. Permanent downstream errors short-circuit.
func (c *Coordinator) withRetries(ctx context.Context, name string, timeout time.Duration, step func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.RetryInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.MaxRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		stepCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := step(stepCtx)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		log.Warn().Err(err).Str("step", name).Int("attempt", attempt).Msg("transient step failure, will retry")
		return err
	}, policy)
}

// isPermanent reports downstream errors that retrying cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, providers.ErrNotFound) ||
		errors.Is(err, providers.ErrAuthFailed) ||
		errors.Is(err, providers.ErrRejected)
}
