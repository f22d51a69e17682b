// Package cache implements the client-side resource cache.
//
// Reads are stored under a key (the endpoint name and its request) and register interest in
// the tags their result provides. Writes invalidate tags: every read providing a matching tag
// is marked stale, subscribed reads are re-fetched at once and the others on their next read.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
)

const (
	DefaultKeepUnusedFor = 60 * time.Second
	DefaultPruneInterval = 30 * time.Second
)

var ErrClosed = errors.New("cache: store closed")

// Status is the lifecycle state of a cached read.
type Status int

const (
	StatusUninitialized Status = iota
	StatusPending
	StatusFulfilled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusPending:
		return "pending"
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Snapshot is the state of a cached read as seen by its subscribers.
// Data is shared between readers and must not be modified.
type Snapshot struct {
	Status      Status
	Data        interface{}
	Err         error
	Fetching    bool
	Stale       bool
	FulfilledAt time.Time
}

// IsLoading reports a fetch of a read that has no data yet. Re-fetches of loaded reads only
// set Fetching.
func (s Snapshot) IsLoading() bool { return s.Status == StatusPending }
func (s Snapshot) IsSuccess() bool { return s.Status == StatusFulfilled }
func (s Snapshot) IsError() bool   { return s.Status == StatusRejected }

// Fetcher performs one network read and returns its result with the tags the result provides.
type Fetcher func(ctx context.Context) (data interface{}, tags []Tag, err error)

type (
	entry struct {
		key         string
		fetch       Fetcher
		status      Status
		data        interface{}
		err         error
		hasData     bool
		tags        []Tag
		stale       bool
		gen         uint64
		call        *call
		subs        map[*Subscription]struct{}
		fulfilledAt time.Time
		lastUsed    time.Time
	}

	call struct {
		gen  uint64
		seq  uint64
		done chan struct{}
		data interface{}
		err  error
	}

	invalidation struct {
		seq  uint64
		tags []Tag
	}
)

func (e *entry) fresh() bool {
	return e.hasData && !e.stale && e.status != StatusRejected
}

func (e *entry) snapshot() Snapshot {
	return Snapshot{
		Status:      e.status,
		Data:        e.data,
		Err:         e.err,
		Fetching:    e.call != nil,
		Stale:       e.stale,
		FulfilledAt: e.fulfilledAt,
	}
}

// Store is the process-wide cache of resource reads. Create it at application start with
// NewStore and release it with Close.
type Store struct {
	mu       sync.Mutex
	entries  map[string]*entry
	tagIndex map[Tag]map[string]struct{} // provided tag -> keys

	// invalidations issued while fetches are in flight, checked against their results
	seq      uint64
	inflight int
	recent   []invalidation

	logger        core.Logger
	keepUnusedFor time.Duration
	pruneInterval time.Duration
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

type Option func(*Store)

// WithKeepUnusedFor sets how long a read without subscribers stays cached.
func WithKeepUnusedFor(d time.Duration) Option {
	return func(s *Store) { s.keepUnusedFor = d }
}

// WithPruneInterval sets the period of the eviction loop; 0 disables it.
func WithPruneInterval(d time.Duration) Option {
	return func(s *Store) { s.pruneInterval = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(logger core.Logger, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		entries:       make(map[string]*entry),
		tagIndex:      make(map[Tag]map[string]struct{}),
		logger:        logger,
		keepUnusedFor: DefaultKeepUnusedFor,
		pruneInterval: DefaultPruneInterval,
		now:           time.Now,
		ctx:           ctx,
		cancel:        cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pruneInterval > 0 {
		s.wg.Add(1)
		go s.pruneLoop()
	}
	return s
}

// Close stops the store: pending fetches are cancelled, subscriptions are closed and
// later calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.cancel()
	for _, e := range s.entries {
		for sub := range e.subs {
			sub.closeLocked()
		}
		e.subs = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Query returns the cached result of key when it is fresh. Otherwise it joins the fetch in
// flight for key, or starts one. ctx only bounds the wait: a fetch shared with other readers
// keeps running.
func (s *Store) Query(ctx context.Context, key string, fetch Fetcher) (interface{}, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	e := s.entryLocked(key, fetch)
	e.lastUsed = s.now()
	if e.fresh() {
		data := e.data
		s.mu.Unlock()
		return data, nil
	}
	c := s.startFetchLocked(e)
	s.mu.Unlock()

	select {
	case <-c.done:
		return c.data, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Mutate runs a write. When it succeeds, the tags returned by invalidates are invalidated.
// When it fails, the cache is left untouched and the error is returned as is.
func (s *Store) Mutate(
	ctx context.Context,
	run func(ctx context.Context) (interface{}, error),
	invalidates func(result interface{}) []Tag,
) (interface{}, error) {
	res, err := run(ctx)
	if err != nil {
		return res, err
	}
	if invalidates != nil {
		s.Invalidate(invalidates(res)...)
	}
	return res, nil
}

// Invalidate marks every read providing one of tags as stale.
// Subscribed reads are re-fetched immediately; the others on their next Query or Subscribe.
func (s *Store) Invalidate(tags ...Tag) {
	tags = Dedupe(tags)
	if len(tags) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.seq++
	if s.inflight > 0 {
		s.recent = append(s.recent, invalidation{seq: s.seq, tags: tags})
	}

	keys := make(map[string]struct{})
	for _, t := range tags {
		if t.ID != "" {
			for key := range s.tagIndex[t] {
				keys[key] = struct{}{}
			}
			continue
		}
		for provided, pkeys := range s.tagIndex {
			if t.Matches(provided) {
				for key := range pkeys {
					keys[key] = struct{}{}
				}
			}
		}
	}

	var refetched int
	for key := range keys {
		e, ok := s.entries[key]
		if !ok {
			continue
		}
		e.stale = true
		e.gen++
		if len(e.subs) > 0 {
			s.startFetchLocked(e)
			refetched++
		}
	}
	if s.logger != nil {
		s.logger.Debug(fmt.Sprintf("cache: invalidated %v: %d entries stale, %d refetching", tags, len(keys), refetched))
	}
}

// ResetAPIState drops every cached read. Subscribed reads start over with a fresh fetch.
func (s *Store) ResetAPIState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for key, e := range s.entries {
		s.setTagsLocked(e, nil)
		if len(e.subs) == 0 {
			delete(s.entries, key)
			continue
		}
		e.gen++
		e.status = StatusUninitialized
		e.data, e.err, e.hasData = nil, nil, false
		e.stale = false
		e.fulfilledAt = time.Time{}
		s.startFetchLocked(e)
	}
}

// Prune evicts reads without subscribers which have not been used for keep-unused-for.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var evicted int
	for key, e := range s.entries {
		if len(e.subs) > 0 || e.call != nil {
			continue
		}
		if now.Sub(e.lastUsed) < s.keepUnusedFor {
			continue
		}
		s.setTagsLocked(e, nil)
		delete(s.entries, key)
		evicted++
	}
	return evicted
}

// Len returns the number of cached reads.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Peek returns the state of key without fetching or touching it.
func (s *Store) Peek(key string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return e.snapshot(), true
	}
	return Snapshot{}, false
}

// Tags returns the tags provided by the last successful fetch of key.
func (s *Store) Tags(key string) []Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[key]; ok {
		return append([]Tag(nil), e.tags...)
	}
	return nil
}

func (s *Store) entryLocked(key string, fetch Fetcher) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{key: key, subs: make(map[*Subscription]struct{})}
		s.entries[key] = e
	}
	if fetch != nil {
		e.fetch = fetch
	}
	return e
}

// startFetchLocked starts fetching e unless a fetch of its current generation is in flight.
// A fetch started before an invalidation is not joined: its result may provide the
// invalidated tags although e did not provide them when the invalidation ran.
func (s *Store) startFetchLocked(e *entry) *call {
	if e.call != nil && e.call.gen == e.gen && !s.invalidatedAfterLocked(e.call.seq) {
		return e.call
	}
	c := &call{gen: e.gen, seq: s.seq, done: make(chan struct{})}
	if e.fetch == nil {
		c.err = errors.Errorf("cache: no fetcher for %q", e.key)
		close(c.done)
		return c
	}

	e.call = c
	if !e.hasData {
		e.status = StatusPending
	}
	s.inflight++
	s.notifyLocked(e)

	s.wg.Add(1)
	go s.runFetch(e, c, e.fetch)
	return c
}

func (s *Store) runFetch(e *entry, c *call, fetch Fetcher) {
	defer s.wg.Done()

	data, tags, err := fetch(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	c.data, c.err = data, err
	close(c.done)

	s.inflight--
	stale := s.invalidatedSinceLocked(c.seq, tags)
	if s.inflight == 0 {
		s.recent = nil
	}

	if e.call != c {
		return // superseded by a fetch of a newer generation
	}
	e.call = nil
	if s.entries[e.key] != e {
		return // evicted or reset meanwhile
	}

	e.lastUsed = s.now()
	if err != nil {
		e.status = StatusRejected
		e.err = err
		s.notifyLocked(e)
		return
	}
	e.status = StatusFulfilled
	e.data, e.err, e.hasData = data, nil, true
	e.fulfilledAt = s.now()
	e.stale = stale || e.gen != c.gen
	s.setTagsLocked(e, tags)
	s.notifyLocked(e)

	if e.stale && len(e.subs) > 0 {
		s.startFetchLocked(e)
	}
}

func (s *Store) invalidatedAfterLocked(seq uint64) bool {
	return len(s.recent) > 0 && s.recent[len(s.recent)-1].seq > seq
}

func (s *Store) invalidatedSinceLocked(seq uint64, tags []Tag) bool {
	for _, inv := range s.recent {
		if inv.seq <= seq {
			continue
		}
		for _, t := range inv.tags {
			for _, provided := range tags {
				if t.Matches(provided) {
					return true
				}
			}
		}
	}
	return false
}

func (s *Store) setTagsLocked(e *entry, tags []Tag) {
	for _, t := range e.tags {
		if keys, ok := s.tagIndex[t]; ok {
			delete(keys, e.key)
			if len(keys) == 0 {
				delete(s.tagIndex, t)
			}
		}
	}
	e.tags = Dedupe(tags)
	for _, t := range e.tags {
		keys, ok := s.tagIndex[t]
		if !ok {
			keys = make(map[string]struct{})
			s.tagIndex[t] = keys
		}
		keys[e.key] = struct{}{}
	}
}

func (s *Store) notifyLocked(e *entry) {
	if len(e.subs) == 0 {
		return
	}
	snap := e.snapshot()
	for sub := range e.subs {
		sub.publishLocked(snap)
	}
}

func (s *Store) pruneLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.Prune(); n > 0 && s.logger != nil {
				s.logger.Debug(fmt.Sprintf("cache: pruned %d unused entries", n))
			}
		case <-s.ctx.Done():
			return
		}
	}
}
