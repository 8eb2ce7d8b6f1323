package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/dromus/packages/core/event"
	"github.com/abdul-hamid-achik/dromus/packages/core/parser"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Handler consumes events. It must be safe for concurrent use.
type Handler interface {
	Handle(ev event.Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev event.Event)

func (f HandlerFunc) Handle(ev event.Event) { f(ev) }

// Source is one worker's event stream.
type Source struct {
	Name   string
	Reader io.Reader
	Format parser.Format
}

type Config struct {
	// ReplayRate limits each source to this many events per second. Zero
	// delivers events as fast as they decode.
	ReplayRate float64
	// Strict makes the first malformed line fail the run.
	Strict bool
	Logger *zap.Logger
}

type Runner struct {
	config *Config
	logger *zap.Logger
}

func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{config: cfg, logger: logger}
}

type RunResult struct {
	Sources      int
	Events       int64
	SkippedLines int64
	Duration     time.Duration
}

// Run decodes every source concurrently and delivers the events to h.
// It returns when all sources are drained, ctx is cancelled, or, in strict
// mode, a line fails to decode.
func (r *Runner) Run(ctx context.Context, h Handler, sources ...Source) (*RunResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	start := time.Now()
	result := &RunResult{Sources: len(sources)}
	var events, skipped atomic.Int64

	h.Handle(event.SuiteStarted{IsRoot: true})

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			return r.drain(gctx, h, src, &events, &skipped)
		})
	}
	err := g.Wait()

	h.Handle(event.SuiteEnded{IsRoot: true})

	result.Events = events.Load()
	result.SkippedLines = skipped.Load()
	result.Duration = time.Since(start)

	r.logger.Debug("sources drained",
		zap.Int("sources", result.Sources),
		zap.Int64("events", result.Events),
		zap.Int64("skipped", result.SkippedLines),
		zap.Duration("duration", result.Duration))

	return result, err
}

func (r *Runner) drain(ctx context.Context, h Handler, src Source, events, skipped *atomic.Int64) error {
	if src.Reader == nil {
		return fmt.Errorf("%s: %w", src.Name, ErrNilReader)
	}
	dec, err := parser.NewDecoder(src.Format, src.Reader)
	if err != nil {
		return fmt.Errorf("%s: %w", src.Name, err)
	}

	var limiter *rate.Limiter
	if r.config.ReplayRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.ReplayRate), 1)
	}

	log := r.logger.With(zap.String("source", src.Name))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if r.config.Strict {
				return fmt.Errorf("%s: %w", src.Name, err)
			}
			skipped.Add(1)
			if !parser.IsLineError(err) {
				// The reader cannot resume, so only this source ends.
				log.Warn("abandoning source", zap.Error(err))
				return nil
			}
			log.Warn("skipping event", zap.Error(err))
			continue
		}

		// Root boundaries belong to the run, not to a single source.
		if isRootBoundary(ev) {
			continue
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		events.Add(1)
		h.Handle(ev)
	}
}

func isRootBoundary(ev event.Event) bool {
	switch e := ev.(type) {
	case event.SuiteStarted:
		return e.IsRoot
	case event.SuiteEnded:
		return e.IsRoot
	}
	return false
}
