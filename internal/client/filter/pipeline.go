// Package filter derives the displayed subset of the task collection from a
// search string and a status selector.
//
// Search input is debounced and duplicate-suppressed; status changes apply
// immediately. The pipeline never writes to the task collection, it only
// recomputes its view whenever the collection or the effective filter
// changes.
package filter

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/client/state"
	"github.com/atinyakov/GophTasks/internal/clock"
	"github.com/atinyakov/GophTasks/internal/logger"
	"github.com/atinyakov/GophTasks/internal/models"
)

// DefaultDelay is how long search input must be stable before it applies.
const DefaultDelay = 300 * time.Millisecond

// Source is the collection the pipeline filters.
type Source interface {
	Tasks() []models.Task
	Subscribe(fn func([]models.Task)) (unsubscribe func())
}

// Pipeline holds the live Filter and the view derived from it.
type Pipeline struct {
	source Source
	clock  clock.Clock
	delay  time.Duration
	log    *zap.Logger

	mu      sync.Mutex
	filter  models.TaskFilter
	pending clock.Timer
	gen     uint64
	closed  bool
	unsub   func()

	view *state.Cell[[]models.Task]
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock that drives the search debounce.
func WithClock(c clock.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.delay = d }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = logger.OrNop(log) }
}

// New starts a pipeline over source with an empty filter.
func New(source Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		source: source,
		clock:  clock.Real(),
		delay:  DefaultDelay,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.view = state.NewCell(Apply(source.Tasks(), models.TaskFilter{}))
	p.unsub = source.Subscribe(p.onSource)
	return p
}

// SetSearch feeds the search input. The value takes effect once no further
// input has arrived for the debounce delay, and only if its lower-cased,
// trimmed form differs from the search currently applied.
func (p *Pipeline) SetSearch(raw string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	// A clock may run f synchronously, so it is armed without holding mu.
	t := p.clock.AfterFunc(p.delay, func() { p.applySearch(gen, raw) })

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || gen != p.gen {
		t.Stop()
		return
	}
	p.pending = t
}

func (p *Pipeline) applySearch(gen uint64, raw string) {
	search := normalize(raw)

	p.mu.Lock()
	if p.closed || gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.pending = nil
	if search == p.filter.Search {
		p.mu.Unlock()
		return
	}
	p.filter.Search = search
	p.mu.Unlock()

	p.log.Debug("search applied", zap.String("search", search))
	p.recompute()
}

// SetStatus applies the status selector immediately. The empty Status
// means any status.
func (p *Pipeline) SetStatus(status models.Status) {
	p.mu.Lock()
	if p.closed || p.filter.Status == status {
		p.mu.Unlock()
		return
	}
	p.filter.Status = status
	p.mu.Unlock()

	p.recompute()
}

// ClearFilters resets search and status, drops any pending search input
// and republishes the full collection.
func (p *Pipeline) ClearFilters() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	p.gen++
	p.filter = models.TaskFilter{}
	p.mu.Unlock()

	p.recompute()
}

// Filter returns the filter currently applied.
func (p *Pipeline) Filter() models.TaskFilter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// View returns the current filtered collection.
func (p *Pipeline) View() []models.Task {
	v := p.view.Get()
	out := make([]models.Task, len(v))
	copy(out, v)
	return out
}

// Subscribe registers fn for every recomputed view.
func (p *Pipeline) Subscribe(fn func([]models.Task)) (unsubscribe func()) {
	return p.view.Subscribe(fn)
}

// Close detaches the pipeline from its source. Timer callbacks and source
// notifications that arrive afterwards are ignored.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.pending != nil {
		p.pending.Stop()
		p.pending = nil
	}
	if p.unsub != nil {
		p.unsub()
	}
}

func (p *Pipeline) onSource(list []models.Task) {
	p.view.UpdateIf(func(cur []models.Task) ([]models.Task, bool) {
		f, ok := p.current()
		if !ok {
			return cur, false
		}
		return Apply(list, f), true
	})
}

// recompute publishes the source's latest collection under the latest
// filter. Both are read inside the view transition so concurrent filter
// changes cannot publish out of order.
func (p *Pipeline) recompute() {
	p.view.UpdateIf(func(cur []models.Task) ([]models.Task, bool) {
		f, ok := p.current()
		if !ok {
			return cur, false
		}
		return Apply(p.source.Tasks(), f), true
	})
}

func (p *Pipeline) current() (models.TaskFilter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter, !p.closed
}

// Apply returns the tasks matching f: a case-insensitive substring match of
// f.Search against title or description, AND an exact match on f.Status.
// Empty fields do not constrain.
func Apply(list []models.Task, f models.TaskFilter) []models.Task {
	search := normalize(f.Search)
	out := make([]models.Task, 0, len(list))
	for _, t := range list {
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
