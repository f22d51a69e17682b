package cache

import (
	"time"
)

// Subscription keeps a read alive and publishes its state changes.
// A subscribed read is never evicted and is re-fetched as soon as one of its tags is invalidated.
type Subscription struct {
	store   *Store
	key     string
	poll    time.Duration
	updates chan Snapshot
	stop    chan struct{}
	closed  bool
}

type SubscribeOption func(*Subscription)

// WithPollingInterval re-fetches the read every d while subscribed.
func WithPollingInterval(d time.Duration) SubscribeOption {
	return func(sub *Subscription) { sub.poll = d }
}

// Subscribe registers interest in key. The current state is published right away and a
// fetch is started unless the cached result is fresh.
func (s *Store) Subscribe(key string, fetch Fetcher, opts ...SubscribeOption) *Subscription {
	sub := &Subscription{
		store:   s,
		key:     key,
		updates: make(chan Snapshot, 1),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sub)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.closeLocked()
		return sub
	}

	e := s.entryLocked(key, fetch)
	e.subs[sub] = struct{}{}
	e.lastUsed = s.now()
	if !e.fresh() {
		s.startFetchLocked(e)
	}
	sub.publishLocked(e.snapshot())

	if sub.poll > 0 {
		s.wg.Add(1)
		go sub.pollLoop()
	}
	return sub
}

// Key returns the cache key of the subscribed read.
func (sub *Subscription) Key() string { return sub.key }

// Updates delivers the state of the read after every change. Only the latest state is kept
// when the receiver falls behind. The channel is closed by Unsubscribe and Store.Close.
func (sub *Subscription) Updates() <-chan Snapshot { return sub.updates }

// Current returns the state of the read.
func (sub *Subscription) Current() Snapshot {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()
	if e, ok := sub.store.entries[sub.key]; ok {
		return e.snapshot()
	}
	return Snapshot{}
}

// Refetch forces a new fetch of the read, even when its result is fresh.
func (sub *Subscription) Refetch() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || sub.closed {
		return
	}
	e, ok := s.entries[sub.key]
	if !ok {
		return
	}
	s.startFetchLocked(e)
}

// Unsubscribe releases the read; it stays cached for keep-unused-for.
func (sub *Subscription) Unsubscribe() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.closed {
		return
	}
	if e, ok := s.entries[sub.key]; ok {
		delete(e.subs, sub)
		e.lastUsed = s.now()
	}
	sub.closeLocked()
}

func (sub *Subscription) closeLocked() {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.stop)
	close(sub.updates)
}

// publishLocked replaces any undelivered snapshot with snap. Callers hold the store lock,
// so publishers never race each other.
func (sub *Subscription) publishLocked(snap Snapshot) {
	if sub.closed {
		return
	}
	select {
	case sub.updates <- snap:
	default:
		select {
		case <-sub.updates:
		default:
		}
		sub.updates <- snap
	}
}

func (sub *Subscription) pollLoop() {
	defer sub.store.wg.Done()

	ticker := time.NewTicker(sub.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sub.Refetch()
		case <-sub.stop:
			return
		case <-sub.store.ctx.Done():
			return
		}
	}
}
