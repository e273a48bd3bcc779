package liststore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/observability/metrics"
	"go.uber.org/zap"
)

// Record is one row of a reconciled collection. LocalID is the
// user-facing identity (asset tag, request number, PO number); ServerID
// is the backing document id, empty for rows that only exist locally.
// Synthetic marks demo seed rows.
type Record interface {
	LocalID() string
	ServerID() string
	Synthetic() bool
}

// Mode is the store lifecycle state. The first subscription event moves
// the store out of ModeUninitialized and the choice is final until Stop.
type Mode int

const (
	ModeUninitialized Mode = iota
	ModeDemo
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeDemo:
		return "demo"
	case ModeLive:
		return "live"
	default:
		return "uninitialized"
	}
}

var (
	ErrNotFound           = errors.New("record_not_found")
	ErrActionInFlight     = errors.New("action_in_flight")
	ErrDeleteNotConfirmed = errors.New("delete_not_confirmed")
)

// Config binds a record type to its collection: codec, validation,
// identity generation and demo seed.
type Config[T Record] struct {
	Collection string
	// Limit caps the snapshot subscription; 0 means unbounded.
	Limit int

	DemoSeed func() []T

	// Decode converts a stored document; ok=false skips the document.
	Decode func(doc docdomain.Document) (T, bool)
	// EncodeCreate produces the document fields for a new record,
	// stamped with the author and server-side creation time.
	EncodeCreate func(rec T, author string, now time.Time) map[string]any
	// EncodeUpdate produces the replacement fields for an edit.
	EncodeUpdate func(rec T, now time.Time) map[string]any
	// StatusFields produces the partial update for a status action.
	StatusFields func(status, comment string, now time.Time) map[string]any

	// ApplyStatus and ApplyUpdate mutate demo-path records in place of
	// a backend write.
	ApplyStatus func(rec T, status, comment string, now time.Time) T
	ApplyUpdate func(existing, updated T) T

	Validate      func(rec T) error
	EnsureLocalID func(rec T, now time.Time) T

	// SearchText returns the values searched by substring; FilterValue
	// returns the record's value for an equality filter key.
	SearchText  func(rec T) []string
	FilterValue func(rec T, key string) string

	// Author resolves the acting user for creation metadata.
	Author func(ctx context.Context) string
}

// Store keeps an ordered in-memory collection reconciled against the
// document store's full-snapshot stream. One mutex serialises snapshot
// events and user actions; durable writes run detached and never block
// or roll back the visible collection.
type Store[T Record] struct {
	cfg  Config[T]
	docs docdomain.Store
	log  *zap.Logger

	mu          sync.Mutex
	mode        Mode
	loading     bool
	records     []T
	inflight    map[string]struct{}
	watchers    map[uint64]chan []T
	nextWatcher uint64
	cancelSub   func()
	stopped     bool
}

func New[T Record](cfg Config[T], docs docdomain.Store, log *zap.Logger) *Store[T] {
	return &Store[T]{
		cfg:      cfg,
		docs:     docs,
		log:      log.Named(fmt.Sprintf("liststore.%s", cfg.Collection)),
		loading:  true,
		inflight: make(map[string]struct{}),
		watchers: make(map[uint64]chan []T),
	}
}

// Start subscribes to the collection. A subscription that cannot be
// established counts as an error first event: the demo seed is
// installed and the store settles in ModeDemo.
func (s *Store[T]) Start(ctx context.Context) error {
	events, cancel, err := s.docs.Subscribe(ctx, s.cfg.Collection, s.cfg.Limit)
	if err != nil {
		s.mu.Lock()
		s.installDemoSeed("error")
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.cancelSub = cancel
	s.mu.Unlock()

	go s.run(events)
	return nil
}

// Stop tears the subscription down. In-flight writes are detached and
// run to completion.
func (s *Store[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.cancelSub != nil {
		s.cancelSub()
	}
	for id, ch := range s.watchers {
		close(ch)
		delete(s.watchers, id)
	}
}

func (s *Store[T]) run(events <-chan docdomain.Snapshot) {
	for snap := range events {
		s.handleSnapshot(snap)
	}
}

func (s *Store[T]) handleSnapshot(snap docdomain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	switch s.mode {
	case ModeDemo:
		// Absorbing: once on demo data, later events are ignored.
		return
	case ModeUninitialized:
		s.loading = false
		if snap.Err != nil {
			s.log.Warn("first snapshot failed, falling back to demo data", zap.Error(snap.Err))
			s.installDemoSeed("error")
			s.notifyLocked()
			return
		}
		if len(snap.Docs) == 0 {
			s.installDemoSeed("empty")
			s.notifyLocked()
			return
		}
		s.mode = ModeLive
		s.records = Reconcile(s.records, s.decodeAll(snap.Docs))
		metrics.Store().IncSnapshotApplied(s.cfg.Collection)
		s.notifyLocked()
	case ModeLive:
		if snap.Err != nil {
			s.log.Warn("snapshot event failed", zap.Error(snap.Err))
			return
		}
		s.records = Reconcile(s.records, s.decodeAll(snap.Docs))
		metrics.Store().IncSnapshotApplied(s.cfg.Collection)
		s.notifyLocked()
	}
}

func (s *Store[T]) decodeAll(docs []docdomain.Document) []T {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, ok := s.cfg.Decode(doc)
		if !ok {
			s.log.Warn("skipping undecodable document", zap.Int64("id", doc.ID))
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *Store[T]) installDemoSeed(reason string) {
	s.mode = ModeDemo
	s.loading = false
	s.records = append([]T(nil), s.cfg.DemoSeed()...)
	metrics.Store().IncDemoFallback(s.cfg.Collection, reason)
	s.log.Info("demo seed installed",
		zap.String("reason", reason),
		zap.Int("records", len(s.records)),
	)
}

// Create validates the record, fills a missing local id and either
// prepends it to the demo collection or issues a detached durable
// write. The live path does not insert an optimistic row; the record
// appears with the next snapshot.
func (s *Store[T]) Create(ctx context.Context, rec T) (T, error) {
	now := time.Now().UTC()
	if rec.LocalID() == "" {
		rec = s.cfg.EnsureLocalID(rec, now)
	}
	if err := s.cfg.Validate(rec); err != nil {
		var zero T
		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeDemo {
		s.records = append([]T{rec}, s.records...)
		s.notifyLocked()
		return rec, nil
	}

	author := ""
	if s.cfg.Author != nil {
		author = s.cfg.Author(ctx)
	}
	fields := s.cfg.EncodeCreate(rec, author, now)
	go s.write(context.WithoutCancel(ctx), metrics.StoreOpCreate, func(ctx context.Context) error {
		_, err := s.docs.Add(ctx, s.cfg.Collection, fields)
		return err
	})
	return rec, nil
}

// UpdateStatus applies a status action to one record. A second call for
// the same record while its write is pending returns ErrActionInFlight
// without touching the backend.
func (s *Store[T]) UpdateStatus(ctx context.Context, localID, status, comment string) error {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[localID]; busy {
		return ErrActionInFlight
	}
	idx := s.indexOfLocked(localID)
	if idx < 0 {
		return ErrNotFound
	}
	rec := s.records[idx]

	if rec.ServerID() == "" || rec.Synthetic() {
		s.records[idx] = s.cfg.ApplyStatus(rec, status, comment, now)
		s.notifyLocked()
		return nil
	}

	s.inflight[localID] = struct{}{}
	serverID := rec.ServerID()
	fields := s.cfg.StatusFields(status, comment, now)
	go func() {
		s.write(context.WithoutCancel(ctx), metrics.StoreOpUpdate, func(ctx context.Context) error {
			return s.docs.Update(ctx, s.cfg.Collection, serverID, fields)
		})
		s.mu.Lock()
		delete(s.inflight, localID)
		s.mu.Unlock()
	}()
	return nil
}

// Update replaces a record's editable fields.
func (s *Store[T]) Update(ctx context.Context, localID string, updated T) error {
	now := time.Now().UTC()
	if err := s.cfg.Validate(updated); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inflight[localID]; busy {
		return ErrActionInFlight
	}
	idx := s.indexOfLocked(localID)
	if idx < 0 {
		return ErrNotFound
	}
	rec := s.records[idx]

	if rec.ServerID() == "" || rec.Synthetic() {
		s.records[idx] = s.cfg.ApplyUpdate(rec, updated)
		s.notifyLocked()
		return nil
	}

	s.inflight[localID] = struct{}{}
	serverID := rec.ServerID()
	fields := s.cfg.EncodeUpdate(updated, now)
	go func() {
		s.write(context.WithoutCancel(ctx), metrics.StoreOpUpdate, func(ctx context.Context) error {
			return s.docs.Update(ctx, s.cfg.Collection, serverID, fields)
		})
		s.mu.Lock()
		delete(s.inflight, localID)
		s.mu.Unlock()
	}()
	return nil
}

// Delete removes a record. An unconfirmed delete is a no-op: nothing
// changes and the backend is not called.
func (s *Store[T]) Delete(ctx context.Context, localID string, confirmed bool) error {
	if !confirmed {
		return ErrDeleteNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(localID)
	if idx < 0 {
		return ErrNotFound
	}
	rec := s.records[idx]

	if rec.ServerID() == "" || rec.Synthetic() {
		s.records = append(s.records[:idx:idx], s.records[idx+1:]...)
		s.notifyLocked()
		return nil
	}

	serverID := rec.ServerID()
	go s.write(context.WithoutCancel(ctx), metrics.StoreOpDelete, func(ctx context.Context) error {
		return s.docs.Delete(ctx, s.cfg.Collection, serverID)
	})
	return nil
}

// write runs a durable write and swallows the failure: logged and
// counted, never rolled back into the collection.
func (s *Store[T]) write(ctx context.Context, op string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		s.log.Warn("durable write failed",
			zap.String("op", op),
			zap.Error(err),
		)
		metrics.Store().IncWriteFailure(s.cfg.Collection, op)
	}
}

// Records returns a copy of the visible collection in order.
func (s *Store[T]) Records() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.records...)
}

// Visible returns the filtered projection of the collection.
func (s *Store[T]) Visible(q Query) []T {
	return Filter(s.Records(), q, s.cfg.SearchText, s.cfg.FilterValue)
}

// Get returns the record with the given local id.
func (s *Store[T]) Get(localID string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfLocked(localID)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return s.records[idx], true
}

// Mode reports the store lifecycle state.
func (s *Store[T]) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Loading reports whether the first subscription event is still pending.
func (s *Store[T]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Watch delivers the collection after every visible change. Slow
// consumers drop intermediate states, never the newest one; each
// delivery is complete.
func (s *Store[T]) Watch() (<-chan []T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan []T, 1)
	s.watchers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.watchers[id]; ok {
			close(existing)
			delete(s.watchers, id)
		}
	}
	return ch, cancel
}

func (s *Store[T]) notifyLocked() {
	if len(s.watchers) == 0 {
		return
	}
	snapshot := append([]T(nil), s.records...)
	for _, ch := range s.watchers {
		select {
		case ch <- snapshot:
		default:
			// Full buffer means a stale snapshot; replace it so the
			// watcher always settles on the latest state. Notifies are
			// serialised under s.mu, so the retry cannot fail.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func (s *Store[T]) indexOfLocked(localID string) int {
	for i, rec := range s.records {
		if rec.LocalID() == localID {
			return i
		}
	}
	return -1
}
