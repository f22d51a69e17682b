package backend

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core/cache"
)

// QueryDef declares a read: how to build its request from an argument, and which tags its
// result provides.
type QueryDef[A, R any] struct {
	Name         string
	Request      func(arg A) Request
	ProvidesTags func(res R, arg A) []cache.Tag
}

// MutationDef declares a write: how to build its request, and which tags a success invalidates.
type MutationDef[A, R any] struct {
	Name            string
	Request         func(arg A) Request
	InvalidatesTags func(res R, arg A) []cache.Tag
}

// Key returns the cache key of the read of arg: Name(path?sortedQuery).
func (d QueryDef[A, R]) Key(arg A) string {
	return d.Name + "(" + d.Request(arg).URL() + ")"
}

func (d QueryDef[A, R]) fetcher(c *Client, arg A) cache.Fetcher {
	return func(ctx context.Context) (interface{}, []cache.Tag, error) {
		var res R
		if err := c.Do(ctx, d.Request(arg), &res); err != nil {
			return nil, nil, err
		}
		var tags []cache.Tag
		if d.ProvidesTags != nil {
			tags = d.ProvidesTags(res, arg)
		}
		return res, tags, nil
	}
}

// Query runs the read of arg through the cache of c.
func Query[A, R any](ctx context.Context, c *Client, d QueryDef[A, R], arg A) (R, error) {
	var zero R
	data, err := c.store.Query(ctx, d.Key(arg), d.fetcher(c, arg))
	if err != nil {
		return zero, err
	}
	res, ok := data.(R)
	if !ok {
		return zero, errors.Errorf("%s: unexpected cached value %T", d.Name, data)
	}
	return res, nil
}

// Mutate runs the write of arg; on success, the declared tags are invalidated.
// A failed write, including a validation failure, invalidates nothing.
func Mutate[A, R any](ctx context.Context, c *Client, d MutationDef[A, R], arg A) (R, error) {
	var res R
	_, err := c.store.Mutate(
		ctx,
		func(ctx context.Context) (interface{}, error) {
			return nil, c.Do(ctx, d.Request(arg), &res)
		},
		func(interface{}) []cache.Tag {
			if d.InvalidatesTags == nil {
				return nil
			}
			return d.InvalidatesTags(res, arg)
		},
	)
	return res, err
}

// View is the state of a watched read.
type View[R any] struct {
	Status   cache.Status
	Data     R
	Err      error
	Fetching bool
	Stale    bool
}

func (v View[R]) IsLoading() bool { return v.Status == cache.StatusPending }
func (v View[R]) IsSuccess() bool { return v.Status == cache.StatusFulfilled }
func (v View[R]) IsError() bool   { return v.Status == cache.StatusRejected }

func viewOf[R any](snap cache.Snapshot) View[R] {
	v := View[R]{Status: snap.Status, Err: snap.Err, Fetching: snap.Fetching, Stale: snap.Stale}
	if data, ok := snap.Data.(R); ok {
		v.Data = data
	}
	return v
}

// Watcher keeps a read alive and publishes its typed state on every change:
// loading, success, error, and every re-fetch caused by an invalidation.
type Watcher[R any] struct {
	sub     *cache.Subscription
	updates chan View[R]
	done    chan struct{}
	once    sync.Once
}

// Watch subscribes to the read of arg.
func Watch[A, R any](c *Client, d QueryDef[A, R], arg A, opts ...cache.SubscribeOption) *Watcher[R] {
	w := &Watcher[R]{
		sub:     c.store.Subscribe(d.Key(arg), d.fetcher(c, arg), opts...),
		updates: make(chan View[R], 1),
		done:    make(chan struct{}),
	}
	go w.forward()
	return w
}

func (w *Watcher[R]) forward() {
	defer close(w.updates)
	for snap := range w.sub.Updates() {
		v := viewOf[R](snap)
		// latest wins
		select {
		case w.updates <- v:
			continue
		default:
		}
		select {
		case <-w.updates:
		default:
		}
		select {
		case w.updates <- v:
		case <-w.done:
			return
		}
	}
}

// Updates is closed by Close.
func (w *Watcher[R]) Updates() <-chan View[R] { return w.updates }

func (w *Watcher[R]) Current() View[R] { return viewOf[R](w.sub.Current()) }

func (w *Watcher[R]) Refetch() { w.sub.Refetch() }

func (w *Watcher[R]) Close() {
	w.once.Do(func() {
		close(w.done)
		w.sub.Unsubscribe()
	})
}
