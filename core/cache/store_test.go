package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fetcher counts its calls and returns "<name>#<call>" providing tags.
type fetcher struct {
	name    string
	tags    []Tag
	calls   int32
	err     error
	release chan struct{} // when set, every call waits for it
	started chan struct{}
}

func newFetcher(name string, tags ...Tag) *fetcher {
	return &fetcher{name: name, tags: tags}
}

func (f *fetcher) blocking() *fetcher {
	f.release = make(chan struct{})
	f.started = make(chan struct{}, 16)
	return f
}

func (f *fetcher) fetch(ctx context.Context) (interface{}, []Tag, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.name + "#" + string(rune('0'+n)), f.tags, nil
}

func (f *fetcher) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := NewStore(nil, append([]Option{WithPruneInterval(0)}, opts...)...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func waitStarted(t *testing.T, f *fetcher) {
	t.Helper()
	select {
	case <-f.started:
	case <-time.After(time.Second):
		t.Fatal("fetch not started")
	}
}

// waitFor reads the updates of sub until one satisfies cond.
func waitFor(t *testing.T, sub *Subscription, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Updates():
			require.True(t, ok, "updates closed")
			if cond(snap) {
				return snap
			}
		case <-timeout:
			t.Fatalf("no matching update, current: %+v", sub.Current())
		}
	}
}

func TestStore_Query(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("projects", NewTag("Project", "1"), ListTag("Project"))
	ctx := context.Background()

	data, err := s.Query(ctx, "getProjects()", f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "projects#1", data)

	// fresh: served from the cache
	data, err = s.Query(ctx, "getProjects()", f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "projects#1", data)
	assert.Equal(t, 1, f.Calls())

	snap, ok := s.Peek("getProjects()")
	require.True(t, ok)
	assert.Equal(t, StatusFulfilled, snap.Status)
	assert.False(t, snap.Stale)
	assert.Equal(t, []Tag{NewTag("Project", "1"), ListTag("Project")}, s.Tags("getProjects()"))
}

func TestStore_Query_dedupe(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("tasks").blocking()
	ctx := context.Background()

	const readers = 5
	results := make(chan interface{}, readers)
	go func() {
		data, _ := s.Query(ctx, "getTasks()", f.fetch)
		results <- data
	}()
	waitStarted(t, f)
	for i := 1; i < readers; i++ {
		go func() {
			data, _ := s.Query(ctx, "getTasks()", f.fetch)
			results <- data
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(f.release)

	for i := 0; i < readers; i++ {
		assert.Equal(t, "tasks#1", <-results)
	}
	assert.Equal(t, 1, f.Calls())
}

func TestStore_Query_cancelledWait(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("user").blocking()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := s.Query(ctx, "getMe()", f.fetch)
		errs <- err
	}()
	waitStarted(t, f)
	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	// the fetch kept running and is joined
	close(f.release)
	data, err := s.Query(context.Background(), "getMe()", f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "user#1", data)
	assert.Equal(t, 1, f.Calls())
}

func TestStore_Query_error(t *testing.T) {
	s := newTestStore(t)
	errBoom := errors.New("boom")
	f := newFetcher("task")
	f.err = errBoom

	_, err := s.Query(context.Background(), "getTask(1)", f.fetch)
	assert.Equal(t, errBoom, err)
	snap, _ := s.Peek("getTask(1)")
	assert.Equal(t, StatusRejected, snap.Status)
	assert.Equal(t, errBoom, snap.Err)

	// errors are not cached
	f.err = nil
	data, err := s.Query(context.Background(), "getTask(1)", f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "task#2", data)
}

func TestStore_Invalidate(t *testing.T) {
	tests := []struct {
		name        string
		provided    []Tag
		invalidated []Tag
		wantRefetch bool
	}{
		{name: "same tag", provided: []Tag{NewTag("Task", "1")}, invalidated: []Tag{NewTag("Task", "1")}, wantRefetch: true},
		{name: "other id", provided: []Tag{NewTag("Task", "1")}, invalidated: []Tag{NewTag("Task", "2")}},
		{name: "other type", provided: []Tag{NewTag("Task", "1")}, invalidated: []Tag{NewTag("Project", "1")}},
		{name: "list tag", provided: []Tag{NewTag("Task", "1"), ListTag("Task")}, invalidated: []Tag{ListTag("Task")}, wantRefetch: true},
		{name: "list tag, entity read", provided: []Tag{NewTag("Task", "1")}, invalidated: []Tag{ListTag("Task")}},
		{name: "type tag", provided: []Tag{NewTag("Task", "1")}, invalidated: []Tag{TypeTag("Task")}, wantRefetch: true},
		{name: "no tags", provided: []Tag{NewTag("Task", "1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			f := newFetcher("task", tt.provided...)
			ctx := context.Background()

			_, err := s.Query(ctx, "key", f.fetch)
			require.NoError(t, err)
			s.Invalidate(tt.invalidated...)

			snap, _ := s.Peek("key")
			assert.Equal(t, tt.wantRefetch, snap.Stale)

			_, err = s.Query(ctx, "key", f.fetch)
			require.NoError(t, err)
			wantCalls := 1
			if tt.wantRefetch {
				wantCalls = 2
			}
			assert.Equal(t, wantCalls, f.Calls())
		})
	}
}

func TestStore_Invalidate_inFlight(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("tasks", NewTag("Task", "1"), ListTag("Task")).blocking()
	ctx := context.Background()

	results := make(chan interface{}, 1)
	go func() {
		data, _ := s.Query(ctx, "getTasks()", f.fetch)
		results <- data
	}()
	waitStarted(t, f)

	// a write lands while the read is in flight
	s.Invalidate(NewTag("Task", "1"))
	close(f.release)
	assert.Equal(t, "tasks#1", <-results)

	snap, _ := s.Peek("getTasks()")
	assert.True(t, snap.Stale, "a result older than an invalidation of its tags must be stale")

	data, err := s.Query(ctx, "getTasks()", f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "tasks#2", data)
}

func TestStore_Invalidate_inFlightJoin(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("tasks", NewTag("Task", "1")).blocking()
	ctx := context.Background()

	before := make(chan interface{}, 1)
	go func() {
		data, _ := s.Query(ctx, "getTasks()", f.fetch)
		before <- data
	}()
	waitStarted(t, f)

	// the first fetch has not provided Task:1 yet, so no entry is known to carry it
	s.Invalidate(NewTag("Task", "1"))

	after := make(chan interface{}, 1)
	go func() {
		data, _ := s.Query(ctx, "getTasks()", f.fetch)
		after <- data
	}()
	waitStarted(t, f)
	close(f.release)

	assert.Equal(t, "tasks#1", <-before)
	assert.Equal(t, "tasks#2", <-after, "a read issued after an invalidation must not join an older fetch")

	data, err := s.Query(ctx, "getTasks()", f.fetch)
	require.NoError(t, err)
	assert.Equal(t, "tasks#2", data)
	assert.Equal(t, 2, f.Calls())
}

func TestStore_Invalidate_inFlightUnrelated(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("tasks", NewTag("Task", "1")).blocking()

	done := make(chan struct{})
	go func() {
		_, _ = s.Query(context.Background(), "getTasks()", f.fetch)
		close(done)
	}()
	waitStarted(t, f)
	s.Invalidate(NewTag("Project", "1"))
	close(f.release)
	<-done

	snap, _ := s.Peek("getTasks()")
	assert.False(t, snap.Stale)
}

func TestStore_Mutate(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("project", NewTag("Project", "1"))
	ctx := context.Background()
	_, err := s.Query(ctx, "getProject(1)", f.fetch)
	require.NoError(t, err)

	errRejected := errors.New("400: name is required")
	var invalidatesCalled bool
	_, err = s.Mutate(ctx,
		func(context.Context) (interface{}, error) { return nil, errRejected },
		func(interface{}) []Tag {
			invalidatesCalled = true
			return []Tag{NewTag("Project", "1")}
		},
	)
	assert.Equal(t, errRejected, err)
	assert.False(t, invalidatesCalled)
	snap, _ := s.Peek("getProject(1)")
	assert.False(t, snap.Stale, "a failed write invalidates nothing")

	res, err := s.Mutate(ctx,
		func(context.Context) (interface{}, error) { return "updated", nil },
		func(res interface{}) []Tag {
			assert.Equal(t, "updated", res)
			return []Tag{NewTag("Project", "1")}
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "updated", res)
	snap, _ = s.Peek("getProject(1)")
	assert.True(t, snap.Stale)
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("tasks", ListTag("Task"))

	sub := s.Subscribe("getTasks()", f.fetch)
	defer sub.Unsubscribe()

	snap := waitFor(t, sub, func(snap Snapshot) bool { return snap.IsSuccess() })
	assert.Equal(t, "tasks#1", snap.Data)

	// invalidations re-fetch subscribed reads at once
	s.Invalidate(ListTag("Task"))
	snap = waitFor(t, sub, func(snap Snapshot) bool { return snap.IsSuccess() && !snap.Fetching && snap.Data == "tasks#2" })
	assert.False(t, snap.Stale)
	assert.Equal(t, 2, f.Calls())

	sub.Refetch()
	waitFor(t, sub, func(snap Snapshot) bool { return snap.Data == "tasks#3" && !snap.Fetching })
}

func TestStore_Subscribe_refetchKeepsStatus(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("tasks", ListTag("Task")).blocking()

	sub := s.Subscribe("getTasks()", f.fetch)
	defer sub.Unsubscribe()

	waitStarted(t, f)
	snap := sub.Current()
	assert.Equal(t, StatusPending, snap.Status)
	assert.True(t, snap.IsLoading())

	f.release <- struct{}{}
	waitFor(t, sub, func(snap Snapshot) bool { return snap.IsSuccess() && !snap.Fetching })

	s.Invalidate(ListTag("Task"))
	waitStarted(t, f)
	snap = sub.Current()
	assert.Equal(t, StatusFulfilled, snap.Status)
	assert.True(t, snap.Fetching)
	assert.False(t, snap.IsLoading())
	assert.Equal(t, "tasks#1", snap.Data)

	f.release <- struct{}{}
	snap = waitFor(t, sub, func(snap Snapshot) bool { return snap.Data == "tasks#2" && !snap.Fetching })
	assert.Equal(t, StatusFulfilled, snap.Status)
}

func TestStore_Subscribe_fresh(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("areas")
	_, err := s.Query(context.Background(), "getAreas(1)", f.fetch)
	require.NoError(t, err)

	sub := s.Subscribe("getAreas(1)", f.fetch)
	defer sub.Unsubscribe()

	snap := <-sub.Updates()
	assert.True(t, snap.IsSuccess())
	assert.False(t, snap.Fetching)
	assert.Equal(t, 1, f.Calls())
}

func TestStore_Subscribe_polling(t *testing.T) {
	s := newTestStore(t)
	f := newFetcher("sessions")

	sub := s.Subscribe("getSessions()", f.fetch, WithPollingInterval(10*time.Millisecond))
	require.Eventually(t, func() bool { return f.Calls() >= 3 }, 2*time.Second, 5*time.Millisecond)

	sub.Unsubscribe()
	_, ok := <-sub.Updates()
	for ok {
		_, ok = <-sub.Updates()
	}
	calls := f.Calls()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, f.Calls(), calls+1, "polling must stop with the subscription")
}

func TestStore_Prune(t *testing.T) {
	clk := &clock{now: time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := newTestStore(t, WithClock(clk.Now), WithKeepUnusedFor(time.Minute))
	ctx := context.Background()

	unused := newFetcher("users", ListTag("User"))
	_, err := s.Query(ctx, "getUsers()", unused.fetch)
	require.NoError(t, err)

	watched := newFetcher("me")
	sub := s.Subscribe("getMe()", watched.fetch)
	defer sub.Unsubscribe()
	waitFor(t, sub, func(snap Snapshot) bool { return snap.IsSuccess() })

	clk.Add(30 * time.Second)
	assert.Equal(t, 0, s.Prune())

	clk.Add(31 * time.Second)
	assert.Equal(t, 1, s.Prune())
	assert.Equal(t, 1, s.Len())
	_, ok := s.Peek("getUsers()")
	assert.False(t, ok)
	assert.Nil(t, s.Tags("getUsers()"))

	// evicted tags are forgotten
	s.Invalidate(ListTag("User"))
	_, err = s.Query(ctx, "getUsers()", unused.fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, unused.Calls())
}

func TestStore_ResetAPIState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	projects := newFetcher("projects", ListTag("Project"))
	_, err := s.Query(ctx, "getProjects()", projects.fetch)
	require.NoError(t, err)

	me := newFetcher("me")
	sub := s.Subscribe("getMe()", me.fetch)
	defer sub.Unsubscribe()
	waitFor(t, sub, func(snap Snapshot) bool { return snap.IsSuccess() })

	s.ResetAPIState()
	_, ok := s.Peek("getProjects()")
	assert.False(t, ok)
	snap := waitFor(t, sub, func(snap Snapshot) bool { return snap.IsSuccess() && snap.Data == "me#2" })
	assert.False(t, snap.Stale)
}

func TestStore_Close(t *testing.T) {
	s := NewStore(nil, WithPruneInterval(time.Millisecond))
	f := newFetcher("tasks").blocking()

	sub := s.Subscribe("getTasks()", f.fetch)
	waitStarted(t, f)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	for range sub.Updates() {
	}
	_, err := s.Query(context.Background(), "getTasks()", f.fetch)
	assert.Equal(t, ErrClosed, err)

	late := s.Subscribe("getTasks()", f.fetch)
	_, ok := <-late.Updates()
	assert.False(t, ok)
}
