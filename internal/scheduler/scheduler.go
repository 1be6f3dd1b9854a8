// Package scheduler turns filter changes into a minimal sequence of catalog
// queries and keeps the rendered result set in line with the latest filter.
//
// Category changes query immediately. Search text changes are debounced and
// only the trailing edge issues a query. Every issued query carries a token;
// a response is applied only if its token is still the latest one, so
// out-of-order completions can never overwrite fresher results.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/catalog/internal/domain"
	"storefront/catalog/internal/filter"

	"github.com/benbjohnson/clock"
	log "github.com/sirupsen/logrus"
)

// DefaultQuietPeriod is the debounce window measured from the last keystroke.
const DefaultQuietPeriod = 500 * time.Millisecond

// Catalog answers filtered item queries.
type Catalog interface {
	ListItems(ctx context.Context, f domain.Filter) ([]domain.Item, error)
}

// Renderer displays query results. Calls are made while the scheduler holds
// its lock, so implementations must not block or call back into the scheduler.
type Renderer interface {
	RenderItems(items []domain.Item)
	RenderEmpty()
	SetLoading(loading bool)
}

// Notifier shows one-shot messages to the user.
type Notifier interface {
	NotifyUser(message string, isError bool)
}

type State int

const (
	StateIdle     State = iota
	StatePending        // debounce timer armed
	StateQuerying       // latest query outstanding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateQuerying:
		return "querying"
	default:
		return "unknown"
	}
}

// Stats counts query outcomes since construction.
type Stats struct {
	Issued    int
	Accepted  int
	Discarded int
	Failed    int
}

type Options struct {
	QuietPeriod  time.Duration // DefaultQuietPeriod when zero
	QueryTimeout time.Duration // zero disables the per-query timeout
	Clock        clock.Clock   // real clock when nil
}

type Scheduler struct {
	catalog  Catalog
	renderer Renderer
	notifier Notifier

	quietPeriod  time.Duration
	queryTimeout time.Duration
	clock        clock.Clock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mutex    sync.Mutex
	filter   *filter.State
	latest   domain.QueryToken
	inFlight bool // the latest token has not been answered yet
	loading  bool
	debounce *debouncer
	stats    Stats
	closed   bool
}

func New(catalog Catalog, renderer Renderer, notifier Notifier, opts Options) *Scheduler {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		catalog:      catalog,
		renderer:     renderer,
		notifier:     notifier,
		quietPeriod:  opts.QuietPeriod,
		queryTimeout: opts.QueryTimeout,
		clock:        opts.Clock,
		ctx:          ctx,
		cancel:       cancel,
		filter:       filter.New(),
	}
	s.debounce = newDebouncer(opts.Clock, &s.mutex)
	return s
}

// OnCategoryChanged applies the category and queries right away with the
// current search text. A pending debounce is dropped since this query covers it.
func (s *Scheduler) OnCategoryChanged(category string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	s.debounce.Cancel()
	snapshot := s.filter.SetCategory(category)
	log.Debugf("Category changed to %q", category)
	s.issueLocked(snapshot)
}

// OnSearchTextChanged records the text now and queries once the user has
// stopped typing for the quiet period.
func (s *Scheduler) OnSearchTextChanged(text string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	s.filter.SetSearchText(text)
	s.debounce.Schedule(s.quietPeriod, s.onQuietPeriodElapsed)
}

// Refresh queries immediately with the current filter.
func (s *Scheduler) Refresh() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	s.debounce.Cancel()
	s.issueLocked(s.filter.Snapshot())
}

func (s *Scheduler) Filter() domain.Filter {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.filter.Snapshot()
}

func (s *Scheduler) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	switch {
	case s.debounce.Armed():
		return StatePending
	case s.inFlight:
		return StateQuerying
	default:
		return StateIdle
	}
}

// LatestToken returns the highest token issued so far.
func (s *Scheduler) LatestToken() domain.QueryToken {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.latest
}

func (s *Scheduler) Stats() Stats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stats
}

// Close stops the debounce timer, abandons outstanding queries and waits for
// their goroutines. Responses that arrive afterwards are ignored.
func (s *Scheduler) Close() {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}
	s.closed = true
	s.debounce.Cancel()
	s.mutex.Unlock()

	s.cancel()
	s.wg.Wait()
}

// onQuietPeriodElapsed runs with the lock held, from the debouncer. Every
// burst of keystrokes ends in exactly one query, even if the text settled back
// on the previous filter.
func (s *Scheduler) onQuietPeriodElapsed() {
	if s.closed {
		return
	}

	s.issueLocked(s.filter.Snapshot())
}

func (s *Scheduler) issueLocked(f domain.Filter) {
	s.latest++
	token := s.latest

	s.inFlight = true
	s.stats.Issued++

	if !s.loading {
		s.loading = true
		s.renderer.SetLoading(true)
	}

	ctx, cancel := s.ctx, context.CancelFunc(func() {})
	if s.queryTimeout > 0 {
		ctx, cancel = s.clock.WithTimeout(s.ctx, s.queryTimeout)
	}

	log.Debugf("Issuing query %d for %+v", token, f)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		items, err := s.catalog.ListItems(ctx, f)
		s.complete(token, items, err)
	}()
}

func (s *Scheduler) complete(token domain.QueryToken, items []domain.Item, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return
	}

	if token != s.latest {
		s.stats.Discarded++
		log.Debugf("Discarding response for query %d, latest is %d", token, s.latest)
		return
	}

	s.inFlight = false

	if err != nil {
		s.stats.Failed++
		serviceErr := domain.AsServiceError("list items", err)
		log.Errorf("❌ Query %d failed: %v", token, serviceErr)
		s.setIdleLocked()
		s.notifier.NotifyUser(failureMessage(serviceErr), true)
		return
	}

	s.stats.Accepted++
	if len(items) == 0 {
		s.renderer.RenderEmpty()
	} else {
		s.renderer.RenderItems(items)
	}
	s.setIdleLocked()
	log.Debugf("Query %d accepted with %d items", token, len(items))
}

func (s *Scheduler) setIdleLocked() {
	if s.loading {
		s.loading = false
		s.renderer.SetLoading(false)
	}
}

func failureMessage(err *domain.ServiceError) string {
	switch {
	case err.Timeout():
		return "The catalog service took too long to answer"
	case errors.Is(err, context.Canceled):
		return "Loading items was cancelled"
	case err.StatusCode == 0:
		return "Could not connect to the catalog service"
	default:
		return "Failed to load items"
	}
}
