package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/jobmatch-analyzer/internal/domain"
	"github.com/fairyhunter13/jobmatch-analyzer/internal/provider"
)

// progressChanBuffer bounds how many progress events the drain goroutine may
// queue behind a slow or blocked ProgressListener before Run starts dropping
// them; a drop never stalls the worker pool emitting them.
const progressChanBuffer = 64

// AttemptFunc performs one item's LLM call (prompt build + adapter call +
// parse) against the given adapter and returns the stage's result type.
type AttemptFunc[T any, R any] func(ctx context.Context, item T, adapter *provider.Adapter) (R, error)

// FailFunc builds a stage-appropriate failure result for an item that
// exhausted both the primary and fallback attempts.
type FailFunc[T any, R any] func(item T, err error) R

// Options configures one Run invocation.
type Options struct {
	RunID          string
	Stage          string
	WorkerCount    int
	PerItemTimeout time.Duration
	ProgressEvery  int
	Listener       domain.ProgressListener
}

// Run drives items through attempt with bounded concurrency, per-item
// timeouts, and a one-shot retry against fallback when attempt's error is
// domain.IsRetryable. It never aborts the batch: every item's slot in the
// returned slice is populated, either with attempt's result or with
// onFail's failure marker. Grounded on the asynq worker's retry loop,
// generalized from a single in-process task to a bounded concurrent pool.
func Run[T any, R any](ctx context.Context, opts Options, items []T, primary, fallback *provider.Adapter, attempt AttemptFunc[T, R], onFail FailFunc[T, R]) []R {
	listener := opts.Listener
	if listener == nil {
		listener = domain.NoopProgressListener{}
	}
	workerCount := opts.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
	}

	results := make([]R, len(items))
	var done int64
	var g errgroup.Group
	g.SetLimit(workerCount)
	tracer := otel.Tracer("executor")

	// Progress events are handed off to a dedicated drain goroutine over a
	// buffered channel rather than invoked inline, so a slow or blocking
	// ProgressListener (e.g. one the CLI host swaps in) can never stall a
	// worker; once the buffer is full, events are dropped rather than
	// backing up the pool.
	progressCh := make(chan domain.ProgressEvent, progressChanBuffer)
	var progressWG sync.WaitGroup
	progressWG.Add(1)
	go func() {
		defer progressWG.Done()
		for ev := range progressCh {
			listener.OnProgress(ev)
		}
	}()

	for idx, item := range items {
		idx, item := idx, item
		g.Go(func() error {
			itemCtx := ctx
			var cancel context.CancelFunc
			if opts.PerItemTimeout > 0 {
				itemCtx, cancel = context.WithTimeout(ctx, opts.PerItemTimeout)
				defer cancel()
			}
			itemCtx, span := tracer.Start(itemCtx, opts.Stage+".item")
			defer span.End()

			start := time.Now()
			res, err := runWithFallback(itemCtx, opts.Stage, item, primary, fallback, attempt)
			itemDuration.WithLabelValues(opts.Stage).Observe(time.Since(start).Seconds())

			outcome := "success"
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				outcome = "failure"
				res = onFail(item, err)

				kind := domain.ErrorKind("unknown")
				var pe *domain.PipelineError
				if errors.As(err, &pe) {
					kind = pe.Kind
				}
				slog.Warn("stage item failed",
					slog.String("stage", opts.Stage),
					slog.String("kind", string(kind)),
					slog.Any("error", err))
			}
			itemsProcessedTotal.WithLabelValues(opts.Stage, outcome).Inc()
			results[idx] = res

			n := atomic.AddInt64(&done, 1)
			if opts.ProgressEvery > 0 && (int(n)%opts.ProgressEvery == 0 || int(n) == len(items)) {
				select {
				case progressCh <- domain.ProgressEvent{RunID: opts.RunID, Stage: opts.Stage, Done: int(n), Total: len(items)}:
				default:
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	close(progressCh)
	progressWG.Wait()
	return results
}

func runWithFallback[T any, R any](ctx context.Context, stage string, item T, primary, fallback *provider.Adapter, attempt AttemptFunc[T, R]) (R, error) {
	res, err := attempt(ctx, item, primary)
	if err == nil {
		return res, nil
	}
	if fallback == nil || !domain.IsRetryable(err) {
		return res, err
	}
	fallbackUsedTotal.WithLabelValues(stage).Inc()
	return attempt(ctx, item, fallback)
}
