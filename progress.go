package llmdispatch

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// EventKind identifies a dispatcher lifecycle event.
type EventKind string

const (
	EventBatchStarted   EventKind = "batch_started"
	EventItemStarted    EventKind = "item_started"
	EventItemCompleted  EventKind = "item_completed"
	EventItemFailed     EventKind = "item_failed"
	EventBatchCompleted EventKind = "batch_completed"
)

// Event is one dispatcher lifecycle observation. Item events carry the
// item's batch index and a truncated request preview for legibility;
// batch events carry aggregate counts.
type Event struct {
	Kind    EventKind
	Time    time.Time
	Index   int    // item position within the batch
	Count   int    // total items (BatchStarted)
	Model   string // canonical model (item events)
	Preview string // truncated request excerpt (item events)

	Duration time.Duration // backend call time (ItemCompleted)
	Err      error         // failure cause (ItemFailed)

	SuccessCount int           // BatchCompleted
	FailureCount int           // BatchCompleted
	Elapsed      time.Duration // BatchCompleted
}

// ProgressReporter observes dispatcher lifecycle events. Implementations
// must tolerate concurrent OnEvent calls; the dispatcher's workers emit
// item events in parallel.
type ProgressReporter interface {
	OnEvent(event Event)
}

// PlainReporter renders events as timestamped plain-text lines, for
// logs and non-interactive terminals.
type PlainReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlainReporter returns a reporter writing to w.
func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{w: w}
}

func (r *PlainReporter) OnEvent(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := event.Time.Format("15:04:05")
	switch event.Kind {
	case EventBatchStarted:
		fmt.Fprintf(r.w, "[%s] Batch started: %d requests\n", ts, event.Count)
	case EventItemStarted:
		fmt.Fprintf(r.w, "[%s] [%s] Starting: %s\n", ts, event.Model, event.Preview)
	case EventItemCompleted:
		fmt.Fprintf(r.w, "[%s] [%s] Complete: %s (%.1fs)\n", ts, event.Model, event.Preview, event.Duration.Seconds())
	case EventItemFailed:
		fmt.Fprintf(r.w, "[%s] [%s] Failed: %s: %v\n", ts, event.Model, event.Preview, event.Err)
	case EventBatchCompleted:
		fmt.Fprintf(r.w, "[%s] Batch complete: %d succeeded, %d failed (%.1fs)\n",
			ts, event.SuccessCount, event.FailureCount, event.Elapsed.Seconds())
	}
}

// ANSI styles for the live reporter.
const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// LiveReporter renders events with color and status glyphs for
// interactive terminals.
type LiveReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLiveReporter returns a reporter writing colored output to w.
func NewLiveReporter(w io.Writer) *LiveReporter {
	return &LiveReporter{w: w}
}

func (r *LiveReporter) OnEvent(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Kind {
	case EventBatchStarted:
		fmt.Fprintf(r.w, "%s⠋ dispatching %d requests%s\n", ansiYellow, event.Count, ansiReset)
	case EventItemStarted:
		fmt.Fprintf(r.w, "⠋ %s | %s\n", event.Model, event.Preview)
	case EventItemCompleted:
		fmt.Fprintf(r.w, "%s✓ %s | %s | (%.1fs)%s\n",
			ansiGreen, event.Model, event.Preview, event.Duration.Seconds(), ansiReset)
	case EventItemFailed:
		fmt.Fprintf(r.w, "%s✗ %s | %s | Failed: %v%s\n",
			ansiRed, event.Model, event.Preview, event.Err, ansiReset)
	case EventBatchCompleted:
		style := ansiGreen
		if event.FailureCount > 0 {
			style = ansiYellow
		}
		fmt.Fprintf(r.w, "%s%d succeeded, %d failed in %.1fs%s\n",
			style, event.SuccessCount, event.FailureCount, event.Elapsed.Seconds(), ansiReset)
	}
}
