package llmdispatch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ItemOutcome is the resolution of one batch item: a Result or an
// error, never both, at the item's original input index.
type ItemOutcome struct {
	Index  int
	Result *Result
	Err    error
}

// Failed reports whether the item resolved to an error.
func (o ItemOutcome) Failed() bool {
	return o.Err != nil
}

// BatchOutcome holds per-item outcomes in caller-supplied order,
// regardless of completion order.
type BatchOutcome []ItemOutcome

// SuccessCount returns the number of items that resolved to a Result.
func (b BatchOutcome) SuccessCount() int {
	n := 0
	for _, item := range b {
		if !item.Failed() {
			n++
		}
	}
	return n
}

// FailureCount returns the number of items that resolved to an error.
func (b BatchOutcome) FailureCount() int {
	return len(b) - b.SuccessCount()
}

// Dispatcher routes RequestSpecs to their provider adapters, consulting
// the response cache first and fanning batches out over a bounded
// worker pool. The cache handle and reporter are injected at
// construction; both are optional.
type Dispatcher struct {
	adapters *AdapterRegistry
	cache    ResponseCache
	reporter ProgressReporter
	log      zerolog.Logger
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCache attaches a response cache. Without one, every query goes
// to the backend.
func WithCache(cache ResponseCache) DispatcherOption {
	return func(d *Dispatcher) { d.cache = cache }
}

// WithReporter attaches a progress event sink.
func WithReporter(reporter ProgressReporter) DispatcherOption {
	return func(d *Dispatcher) { d.reporter = reporter }
}

// WithLogger sets the dispatcher's logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = log }
}

// NewDispatcher builds a Dispatcher over the given adapter registry.
func NewDispatcher(adapters *AdapterRegistry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		adapters: adapters,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// emit forwards an event to the reporter, if one is attached.
func (d *Dispatcher) emit(event Event) {
	if d.reporter != nil {
		event.Time = time.Now()
		d.reporter.OnEvent(event)
	}
}

// cacheable reports whether a spec participates in the cache at all.
func (d *Dispatcher) cacheable(spec *RequestSpec) bool {
	return d.cache != nil && !spec.Streaming && !spec.NoCache
}

// lookup consults the cache for a spec. Returns the fingerprint (empty
// when the spec is not cacheable) and the cached result on a hit.
func (d *Dispatcher) lookup(spec *RequestSpec) (string, *Result, bool) {
	if !d.cacheable(spec) {
		return "", nil, false
	}
	fp, err := Fingerprint(spec)
	if err != nil {
		d.log.Warn().Err(err).Msg("fingerprint failed, treating as cache miss")
		return "", nil, false
	}
	cached, ok := d.cache.Get(fp)
	if !ok {
		return fp, nil, false
	}
	// Copy before stamping the spec: the cache may hand out a shared
	// pointer, and two concurrent hits must not race on it.
	hit := *cached
	hit.Spec = spec
	return fp, &hit, true
}

// store writes a result to the cache. Write failures degrade to a log
// line; cache errors never propagate to the caller.
func (d *Dispatcher) store(fingerprint string, result *Result) {
	if fingerprint == "" {
		return
	}
	if err := d.cache.Set(fingerprint, result); err != nil {
		d.log.Warn().Err(err).Str("fingerprint", fingerprint).Msg("cache write failed")
	}
}

// Query executes a single spec: cache lookup, adapter call on miss,
// cache write on success. Validation errors never occur here (the spec
// already passed construction); errors are adapter failures.
func (d *Dispatcher) Query(ctx context.Context, spec *RequestSpec) (*Result, error) {
	result, err := d.execute(ctx, spec, 0)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// execute runs the per-item state machine shared by Query and RunBatch.
func (d *Dispatcher) execute(ctx context.Context, spec *RequestSpec, index int) (*Result, error) {
	fingerprint, cached, hit := d.lookup(spec)
	if hit {
		d.log.Debug().Str("model", spec.Model).Msg("cache hit")
		d.emit(Event{Kind: EventItemCompleted, Index: index, Model: spec.Model, Preview: spec.Preview()})
		return cached, nil
	}

	adapter, err := d.adapters.Get(spec.Provider)
	if err != nil {
		d.emit(Event{Kind: EventItemFailed, Index: index, Model: spec.Model, Preview: spec.Preview(), Err: err})
		return nil, err
	}

	d.emit(Event{Kind: EventItemStarted, Index: index, Model: spec.Model, Preview: spec.Preview()})

	start := time.Now()
	result, err := adapter.Query(ctx, spec)
	elapsed := time.Since(start)
	if err != nil {
		d.emit(Event{Kind: EventItemFailed, Index: index, Model: spec.Model, Preview: spec.Preview(), Err: err})
		return nil, err
	}

	// A call that outlived its batch's cancellation is discarded:
	// no cache write, no result surfaced.
	if ctx.Err() != nil {
		d.emit(Event{Kind: EventItemFailed, Index: index, Model: spec.Model, Preview: spec.Preview(), Err: ctx.Err()})
		return nil, ctx.Err()
	}

	result.Duration = elapsed
	result.Spec = spec
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}

	if d.cacheable(spec) {
		d.store(fingerprint, result)
	}

	d.emit(Event{
		Kind:     EventItemCompleted,
		Index:    index,
		Model:    spec.Model,
		Preview:  spec.Preview(),
		Duration: elapsed,
	})
	return result, nil
}

// Stream executes a streaming spec. The cache is bypassed entirely.
func (d *Dispatcher) Stream(ctx context.Context, spec *RequestSpec) (<-chan StreamEvent, error) {
	adapter, err := d.adapters.Get(spec.Provider)
	if err != nil {
		return nil, err
	}
	return adapter.Stream(ctx, spec)
}

// RunBatch executes specs concurrently, at most maxConcurrency adapter
// calls in flight at once (zero or negative means unbounded). The
// returned outcome has one entry per spec at the spec's input index;
// one item's failure never cancels or blocks its siblings. The batch
// returns when every item has resolved.
func (d *Dispatcher) RunBatch(ctx context.Context, specs []*RequestSpec, maxConcurrency int) BatchOutcome {
	outcome := make(BatchOutcome, len(specs))
	start := time.Now()

	d.emit(Event{Kind: EventBatchStarted, Count: len(specs)})

	var sem *semaphore.Weighted
	if maxConcurrency > 0 {
		sem = semaphore.NewWeighted(int64(maxConcurrency))
	}

	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(index int, spec *RequestSpec) {
			defer wg.Done()

			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					outcome[index] = ItemOutcome{Index: index, Err: err}
					return
				}
				defer sem.Release(1)
			}

			result, err := d.execute(ctx, spec, index)
			outcome[index] = ItemOutcome{Index: index, Result: result, Err: err}
		}(i, spec)
	}
	wg.Wait()

	d.emit(Event{
		Kind:         EventBatchCompleted,
		SuccessCount: outcome.SuccessCount(),
		FailureCount: outcome.FailureCount(),
		Elapsed:      time.Since(start),
	})
	return outcome
}
