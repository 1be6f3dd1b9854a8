package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"storefront/catalog/internal/domain"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type result struct {
	items []domain.Item
	err   error
}

// pendingCall is one ListItems request held open until the test answers it.
type pendingCall struct {
	filter domain.Filter
	reply  chan result
}

func (c *pendingCall) resolve(items []domain.Item) {
	c.reply <- result{items: items}
}

func (c *pendingCall) fail(err error) {
	c.reply <- result{err: err}
}

type fakeCatalog struct {
	calls chan *pendingCall
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{calls: make(chan *pendingCall, 32)}
}

func (f *fakeCatalog) ListItems(ctx context.Context, filter domain.Filter) ([]domain.Item, error) {
	call := &pendingCall{filter: filter, reply: make(chan result, 1)}
	f.calls <- call

	select {
	case r := <-call.reply:
		return r.items, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeCatalog) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-f.calls:
		return call
	case <-time.After(time.Second):
		t.Fatal("expected a catalog query, none was issued")
		return nil
	}
}

func (f *fakeCatalog) assertIdle(t *testing.T) {
	t.Helper()
	select {
	case call := <-f.calls:
		t.Fatalf("unexpected catalog query for %+v", call.filter)
	case <-time.After(50 * time.Millisecond):
	}
}

type notification struct {
	message string
	isError bool
}

type recordingRenderer struct {
	mu            sync.Mutex
	rendered      [][]domain.Item
	empties       int
	loading       bool
	loadingEvents []bool
	notifications []notification
}

func (r *recordingRenderer) RenderItems(items []domain.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rendered = append(r.rendered, items)
}

func (r *recordingRenderer) RenderEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.empties++
}

func (r *recordingRenderer) SetLoading(loading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = loading
	r.loadingEvents = append(r.loadingEvents, loading)
}

func (r *recordingRenderer) NotifyUser(message string, isError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, notification{message, isError})
}

func (r *recordingRenderer) isLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

func (r *recordingRenderer) loadingHistory() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.loadingEvents...)
}

func (r *recordingRenderer) renders() [][]domain.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]domain.Item(nil), r.rendered...)
}

func (r *recordingRenderer) emptyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.empties
}

func (r *recordingRenderer) notes() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.notifications...)
}

func makeItems(n int, prefix string) []domain.Item {
	items := make([]domain.Item, n)
	for i := range items {
		items[i] = domain.Item{
			ID:            int64(i + 1),
			Name:          fmt.Sprintf("%s %d", prefix, i+1),
			Price:         decimal.NewFromInt(int64(10 + i)),
			Category:      "Footwear",
			StockQuantity: i,
		}
	}
	return items
}

type fixture struct {
	clock    *clock.Mock
	catalog  *fakeCatalog
	renderer *recordingRenderer
	sched    *Scheduler
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clock.NewMock(),
		catalog:  newFakeCatalog(),
		renderer: &recordingRenderer{},
	}
	opts.Clock = f.clock
	f.sched = New(f.catalog, f.renderer, f.renderer, opts)
	t.Cleanup(f.sched.Close)
	return f
}

// waitIdle blocks until the scheduler settles back to idle.
func (f *fixture) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return f.sched.State() == StateIdle && !f.renderer.isLoading()
	}, time.Second, 5*time.Millisecond)
}

func TestSearchDebounceCoalescesKeystrokes(t *testing.T) {
	f := newFixture(t, Options{})

	for _, text := range []string{"s", "sh", "sho", "shoe"} {
		f.sched.OnSearchTextChanged(text)
		f.clock.Add(100 * time.Millisecond)
	}
	assert.Equal(t, StatePending, f.sched.State())
	f.catalog.assertIdle(t)

	// 100ms already elapsed since the last keystroke
	f.clock.Add(399 * time.Millisecond)
	f.catalog.assertIdle(t)

	f.clock.Add(time.Millisecond)
	call := f.catalog.next(t)
	assert.Equal(t, domain.Filter{Search: "shoe"}, call.filter)
	f.catalog.assertIdle(t)

	assert.Equal(t, 1, f.sched.Stats().Issued)
	assert.Equal(t, domain.QueryToken(1), f.sched.LatestToken())

	call.resolve(makeItems(2, "Shoe"))
	f.waitIdle(t)
}

func TestSearchDebounceRestartsOnEachKeystroke(t *testing.T) {
	f := newFixture(t, Options{QuietPeriod: 200 * time.Millisecond})

	f.sched.OnSearchTextChanged("ha")
	f.clock.Add(150 * time.Millisecond)
	f.sched.OnSearchTextChanged("hat")
	f.clock.Add(150 * time.Millisecond)
	f.catalog.assertIdle(t)

	f.clock.Add(50 * time.Millisecond)
	assert.Equal(t, "hat", f.catalog.next(t).filter.Search)
}

func TestSearchTextIsTrimmed(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.OnSearchTextChanged("  boots  ")
	assert.Equal(t, "boots", f.sched.Filter().Search)

	f.clock.Add(DefaultQuietPeriod)
	assert.Equal(t, "boots", f.catalog.next(t).filter.Search)
}

func TestCategoryChangeQueriesImmediatelyWithPendingText(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.OnSearchTextChanged("boot")
	f.sched.OnCategoryChanged("Footwear")

	// Issued before OnCategoryChanged returned
	assert.Equal(t, domain.QueryToken(1), f.sched.LatestToken())
	assert.True(t, f.renderer.isLoading())
	assert.Equal(t, StateQuerying, f.sched.State())

	call := f.catalog.next(t)
	assert.Equal(t, domain.Filter{Category: "Footwear", Search: "boot"}, call.filter)

	// The pending debounce was folded into the category query
	f.clock.Add(time.Second)
	f.catalog.assertIdle(t)
	assert.Equal(t, 1, f.sched.Stats().Issued)

	call.resolve(makeItems(1, "Boot"))
	f.waitIdle(t)
}

func TestNewerResponseWinsWhenOlderArrivesLate(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.OnCategoryChanged("Hats")
	first := f.catalog.next(t)
	f.sched.OnCategoryChanged("Bags")
	second := f.catalog.next(t)

	bags := makeItems(3, "Bag")
	second.resolve(bags)
	f.waitIdle(t)

	first.resolve(makeItems(5, "Hat"))
	require.Eventually(t, func() bool {
		return f.sched.Stats().Discarded == 1
	}, time.Second, 5*time.Millisecond)

	renders := f.renderer.renders()
	require.Len(t, renders, 1)
	assert.Equal(t, bags, renders[0])
	assert.False(t, f.renderer.isLoading())
}

func TestStaleResponseKeepsLoadingWhileNewerOutstanding(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.OnCategoryChanged("Hats")
	first := f.catalog.next(t)
	f.sched.OnCategoryChanged("Bags")
	second := f.catalog.next(t)

	first.resolve(makeItems(5, "Hat"))
	require.Eventually(t, func() bool {
		return f.sched.Stats().Discarded == 1
	}, time.Second, 5*time.Millisecond)

	assert.True(t, f.renderer.isLoading())
	assert.Equal(t, StateQuerying, f.sched.State())
	assert.Empty(t, f.renderer.renders())

	bags := makeItems(2, "Bag")
	second.resolve(bags)
	f.waitIdle(t)

	assert.Equal(t, [][]domain.Item{bags}, f.renderer.renders())
	assert.Equal(t, []bool{true, false}, f.renderer.loadingHistory())
}

func TestStaleFailureIsSilent(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.OnCategoryChanged("Hats")
	first := f.catalog.next(t)
	f.sched.OnCategoryChanged("Bags")
	second := f.catalog.next(t)

	first.fail(&domain.ServiceError{Op: "list items", StatusCode: 500, Err: errors.New("boom")})
	require.Eventually(t, func() bool {
		return f.sched.Stats().Discarded == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.renderer.notes())

	second.resolve(makeItems(1, "Bag"))
	f.waitIdle(t)
	assert.Empty(t, f.renderer.notes())
	assert.Zero(t, f.sched.Stats().Failed)
}

func TestEmptyResultRendersEmpty(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.Refresh()
	f.catalog.next(t).resolve(nil)
	f.waitIdle(t)

	assert.Equal(t, 1, f.renderer.emptyCount())
	assert.Empty(t, f.renderer.renders())
}

func TestFailurePreservesLastGoodState(t *testing.T) {
	f := newFixture(t, Options{})

	good := makeItems(4, "Item")
	f.sched.Refresh()
	f.catalog.next(t).resolve(good)
	f.waitIdle(t)

	f.sched.OnCategoryChanged("Hats")
	f.catalog.next(t).fail(&domain.ServiceError{Op: "list items", Err: errors.New("connection refused")})
	f.waitIdle(t)

	assert.Equal(t, [][]domain.Item{good}, f.renderer.renders())
	assert.Equal(t, []notification{{"Could not connect to the catalog service", true}}, f.renderer.notes())
	assert.Equal(t, 1, f.sched.Stats().Failed)
	assert.Equal(t, []bool{true, false, true, false}, f.renderer.loadingHistory())
}

func TestFailureMessageForHTTPError(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.Refresh()
	f.catalog.next(t).fail(&domain.ServiceError{Op: "list items", StatusCode: 502, Err: errors.New("bad gateway")})
	f.waitIdle(t)

	assert.Equal(t, []notification{{"Failed to load items", true}}, f.renderer.notes())
}

func TestQueryTimeoutBecomesServiceError(t *testing.T) {
	f := newFixture(t, Options{QueryTimeout: 2 * time.Second})

	f.sched.Refresh()
	f.catalog.next(t)

	f.clock.Add(2 * time.Second)
	f.waitIdle(t)

	assert.Equal(t, []notification{{"The catalog service took too long to answer", true}}, f.renderer.notes())
	assert.Equal(t, 1, f.sched.Stats().Failed)
}

func TestBurstEndingOnPreviousFilterStillQueriesOnce(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.Refresh()
	f.catalog.next(t).resolve(makeItems(1, "Item"))
	f.waitIdle(t)

	f.sched.OnSearchTextChanged("s")
	f.clock.Add(100 * time.Millisecond)
	f.sched.OnSearchTextChanged("")
	f.clock.Add(DefaultQuietPeriod)

	call := f.catalog.next(t)
	assert.Equal(t, domain.Filter{}, call.filter)
	f.catalog.assertIdle(t)

	call.resolve(makeItems(1, "Item"))
	f.waitIdle(t)
	assert.Equal(t, Stats{Issued: 2, Accepted: 2}, f.sched.Stats())
}

func TestWhitespaceOnlyTextQueriesWithEmptySearch(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.Refresh()
	f.catalog.next(t).fail(errors.New("connection reset"))
	f.waitIdle(t)

	f.sched.OnSearchTextChanged("   ")
	f.clock.Add(DefaultQuietPeriod)

	call := f.catalog.next(t)
	assert.Equal(t, domain.Filter{}, call.filter)
	call.resolve(makeItems(1, "Item"))
	f.waitIdle(t)
}

func TestCloseAbandonsOutstandingQueries(t *testing.T) {
	f := newFixture(t, Options{})

	f.sched.OnSearchTextChanged("pending")
	f.sched.Refresh()
	f.catalog.next(t)

	f.sched.Close()

	assert.Empty(t, f.renderer.renders())
	assert.Empty(t, f.renderer.notes())

	f.sched.OnCategoryChanged("Hats")
	f.clock.Add(time.Second)
	f.catalog.assertIdle(t)
}

func TestScenarioSearchSupersedesInitialQuery(t *testing.T) {
	f := newFixture(t, Options{})

	// Query A with the empty filter
	f.sched.Refresh()
	callA := f.catalog.next(t)
	assert.Equal(t, domain.Filter{}, callA.filter)
	assert.Equal(t, domain.QueryToken(1), f.sched.LatestToken())

	// User types "shoe" before A resolves
	f.sched.OnSearchTextChanged("shoe")
	f.clock.Add(DefaultQuietPeriod)
	callB := f.catalog.next(t)
	assert.Equal(t, domain.Filter{Search: "shoe"}, callB.filter)
	assert.Equal(t, domain.QueryToken(2), f.sched.LatestToken())

	callA.resolve(makeItems(10, "Anything"))
	require.Eventually(t, func() bool {
		return f.sched.Stats().Discarded == 1
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.renderer.renders())
	assert.True(t, f.renderer.isLoading())

	shoes := makeItems(2, "Shoe")
	callB.resolve(shoes)
	f.waitIdle(t)

	assert.Equal(t, [][]domain.Item{shoes}, f.renderer.renders())
	assert.Equal(t, Stats{Issued: 2, Accepted: 1, Discarded: 1}, f.sched.Stats())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "querying", StateQuerying.String())
	assert.Equal(t, "unknown", State(42).String())
}
