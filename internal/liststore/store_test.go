package liststore_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/liststore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
)

type testRecord struct {
	id        string
	serverID  string
	synthetic bool
	name      string
	status    string
}

func (r testRecord) LocalID() string  { return r.id }
func (r testRecord) ServerID() string { return r.serverID }
func (r testRecord) Synthetic() bool  { return r.synthetic }

type fakeDocStore struct {
	mu         sync.Mutex
	events     chan docdomain.Snapshot
	adds       int
	updates    int
	deletes    int
	updateGate chan struct{}
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{events: make(chan docdomain.Snapshot, 8)}
}

func (f *fakeDocStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adds++
	return "1", nil
}

func (f *fakeDocStore) Update(ctx context.Context, collection, serverID string, fields map[string]any) error {
	if f.updateGate != nil {
		<-f.updateGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return nil
}

func (f *fakeDocStore) Delete(ctx context.Context, collection, serverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return nil
}

func (f *fakeDocStore) List(ctx context.Context, collection string, limit int) ([]docdomain.Document, error) {
	return nil, nil
}

func (f *fakeDocStore) Subscribe(ctx context.Context, collection string, limit int) (<-chan docdomain.Snapshot, func(), error) {
	return f.events, func() {}, nil
}

func (f *fakeDocStore) CountWhere(ctx context.Context, collection string, pred func(docdomain.Document) bool) (int, error) {
	return 0, nil
}

func (f *fakeDocStore) counts() (adds, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adds, f.updates, f.deletes
}

func testConfig() liststore.Config[testRecord] {
	return liststore.Config[testRecord]{
		Collection: "widgets",
		Limit:      100,
		DemoSeed: func() []testRecord {
			return []testRecord{
				{id: "WID-001", synthetic: true, name: "Projector", status: "available"},
				{id: "WID-002", synthetic: true, name: "Laptop", status: "issued"},
			}
		},
		Decode: func(doc docdomain.Document) (testRecord, bool) {
			id, _ := doc.Fields["widgetId"].(string)
			if id == "" {
				return testRecord{}, false
			}
			name, _ := doc.Fields["name"].(string)
			status, _ := doc.Fields["status"].(string)
			return testRecord{id: id, serverID: "srv-" + id, name: name, status: status}, true
		},
		EncodeCreate: func(rec testRecord, author string, now time.Time) map[string]any {
			return map[string]any{"widgetId": rec.id, "name": rec.name, "status": rec.status, "createdBy": author}
		},
		EncodeUpdate: func(rec testRecord, now time.Time) map[string]any {
			return map[string]any{"name": rec.name, "status": rec.status}
		},
		StatusFields: func(status, comment string, now time.Time) map[string]any {
			return map[string]any{"status": status, "comment": comment}
		},
		ApplyStatus: func(rec testRecord, status, comment string, now time.Time) testRecord {
			rec.status = status
			return rec
		},
		ApplyUpdate: func(existing, updated testRecord) testRecord {
			updated.serverID = existing.serverID
			updated.synthetic = existing.synthetic
			return updated
		},
		Validate: func(rec testRecord) error {
			if rec.name == "" {
				return assert.AnError
			}
			return nil
		},
		EnsureLocalID: func(rec testRecord, now time.Time) testRecord {
			rec.id = liststore.TimestampLocalID("WID", 4, now)
			return rec
		},
		SearchText: func(rec testRecord) []string {
			return []string{rec.name, rec.id}
		},
		FilterValue: func(rec testRecord, key string) string {
			if key == "status" {
				return rec.status
			}
			return ""
		},
	}
}

func doc(id, name, status string) docdomain.Document {
	return docdomain.Document{
		ID:     1,
		Fields: datatypes.JSONMap{"widgetId": id, "name": name, "status": status},
	}
}

func startStore(t *testing.T, fake *fakeDocStore) *liststore.Store[testRecord] {
	t.Helper()
	store := liststore.New(testConfig(), fake, zaptest.NewLogger(t))
	require.NoError(t, store.Start(context.Background()))
	t.Cleanup(store.Stop)
	return store
}

func waitForMode(t *testing.T, store *liststore.Store[testRecord], mode liststore.Mode) {
	t.Helper()
	require.Eventually(t, func() bool {
		return store.Mode() == mode
	}, time.Second, 5*time.Millisecond)
}

func TestReconcileSnapshotWinsByLocalID(t *testing.T) {
	current := []testRecord{
		{id: "WID-100", name: "Pending create"},
		{id: "WID-001", name: "Stale local copy", status: "issued"},
	}
	incoming := []testRecord{
		{id: "WID-001", serverID: "srv-1", name: "Server copy", status: "available"},
		{id: "WID-001", serverID: "srv-9", name: "Duplicate", status: "disposed"},
		{id: "WID-002", serverID: "srv-2", name: "Other", status: "available"},
	}

	merged := liststore.Reconcile(current, incoming)

	require.Len(t, merged, 3)
	// Pending record not in the snapshot stays ahead of it.
	assert.Equal(t, "WID-100", merged[0].LocalID())
	// Server copy replaces the stale local one; the duplicate collapses.
	assert.Equal(t, "Server copy", merged[1].name)
	assert.Equal(t, "WID-002", merged[2].LocalID())

	ids := make(map[string]int)
	for _, rec := range merged {
		ids[rec.LocalID()]++
	}
	for id, n := range ids {
		assert.Equalf(t, 1, n, "local id %s appears %d times", id, n)
	}
}

func TestEmptyFirstSnapshotInstallsDemoSeed(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)

	fake.events <- docdomain.Snapshot{}
	waitForMode(t, store, liststore.ModeDemo)

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "WID-001", records[0].LocalID())
	assert.True(t, records[0].Synthetic())
	assert.False(t, store.Loading())

	// Later snapshots are ignored: demo mode is absorbing.
	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{doc("WID-500", "Late arrival", "available")}}
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, liststore.ModeDemo, store.Mode())
	assert.Len(t, store.Records(), 2)
}

func TestErrorFirstSnapshotInstallsDemoSeed(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)

	fake.events <- docdomain.Snapshot{Err: assert.AnError}
	waitForMode(t, store, liststore.ModeDemo)
	assert.Len(t, store.Records(), 2)
}

func TestNonEmptyFirstSnapshotNeverShowsDemoSeed(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)

	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{doc("WID-900", "Real widget", "available")}}
	waitForMode(t, store, liststore.ModeLive)

	records := store.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "WID-900", records[0].LocalID())
	for _, rec := range records {
		assert.False(t, rec.Synthetic())
	}
}

func TestFilterIsPureProjection(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)
	fake.events <- docdomain.Snapshot{}
	waitForMode(t, store, liststore.ModeDemo)

	before := store.Records()

	narrowed := store.Visible(liststore.Query{Search: "projector", Filters: map[string]string{"status": "available"}})
	require.Len(t, narrowed, 1)
	assert.Equal(t, "WID-001", narrowed[0].LocalID())

	cleared := store.Visible(liststore.Query{Search: "", Filters: map[string]string{"status": liststore.FilterAll}})
	assert.Equal(t, before, cleared)
}

func TestUnconfirmedDeleteChangesNothing(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)
	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{doc("WID-900", "Real widget", "available")}}
	waitForMode(t, store, liststore.ModeLive)

	before := store.Records()
	err := store.Delete(context.Background(), "WID-900", false)
	assert.ErrorIs(t, err, liststore.ErrDeleteNotConfirmed)

	assert.Equal(t, before, store.Records())
	_, _, deletes := fake.counts()
	assert.Equal(t, 0, deletes)
}

func TestDoubleUpdateStatusIssuesSingleWrite(t *testing.T) {
	fake := newFakeDocStore()
	fake.updateGate = make(chan struct{})
	store := startStore(t, fake)
	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{doc("WID-900", "Real widget", "available")}}
	waitForMode(t, store, liststore.ModeLive)

	require.NoError(t, store.UpdateStatus(context.Background(), "WID-900", "issued", ""))
	// The record is in flight until the first write settles.
	err := store.UpdateStatus(context.Background(), "WID-900", "maintenance", "")
	assert.ErrorIs(t, err, liststore.ErrActionInFlight)

	close(fake.updateGate)
	require.Eventually(t, func() bool {
		_, updates, _ := fake.counts()
		return updates == 1
	}, time.Second, 5*time.Millisecond)

	// Settled: the next action goes through again.
	require.Eventually(t, func() bool {
		return store.UpdateStatus(context.Background(), "WID-900", "maintenance", "") == nil
	}, time.Second, 5*time.Millisecond)
}

func TestDemoCreatePrependsLocally(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)
	fake.events <- docdomain.Snapshot{}
	waitForMode(t, store, liststore.ModeDemo)

	created, err := store.Create(context.Background(), testRecord{name: "Whiteboard", status: "available"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.LocalID(), "WID-"))

	records := store.Records()
	require.Len(t, records, 3)
	assert.Equal(t, created.LocalID(), records[0].LocalID())

	adds, _, _ := fake.counts()
	assert.Equal(t, 0, adds)
}

func TestLiveCreateIsAsyncWithoutOptimisticRow(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)
	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{doc("WID-900", "Real widget", "available")}}
	waitForMode(t, store, liststore.ModeLive)

	_, err := store.Create(context.Background(), testRecord{name: "Whiteboard", status: "available"})
	require.NoError(t, err)

	// No optimistic row: the collection stays as the last snapshot.
	assert.Len(t, store.Records(), 1)
	require.Eventually(t, func() bool {
		adds, _, _ := fake.counts()
		return adds == 1
	}, time.Second, 5*time.Millisecond)
}

func TestExportCSVUnescapedJoin(t *testing.T) {
	records := []testRecord{
		{id: "WID-001", name: "Projector", status: "available"},
		{id: "WID-002", name: "Cart, heavy duty", status: "issued"},
	}
	out := liststore.ExportCSV(records, []string{"ID", "Name", "Status"}, func(r testRecord) []string {
		return []string{r.id, r.name, r.status}
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Len(t, strings.Split(lines[0], ","), 3)
	assert.Len(t, strings.Split(lines[1], ","), 3)
	// Embedded commas are not escaped, so this row gains a column.
	assert.Len(t, strings.Split(lines[2], ","), 4)
}

func TestWatchSettlesOnLatestSnapshot(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)
	ch, cancel := store.Watch()
	defer cancel()

	// Two snapshots arrive before the watcher reads anything. The stale
	// one must be evicted so the watcher never settles behind the store.
	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{doc("WID-900", "Real widget", "available")}}
	waitForMode(t, store, liststore.ModeLive)
	fake.events <- docdomain.Snapshot{Docs: []docdomain.Document{
		doc("WID-900", "Real widget", "available"),
		doc("WID-901", "Second widget", "issued"),
	}}
	require.Eventually(t, func() bool {
		return len(store.Records()) == 2
	}, time.Second, 5*time.Millisecond)

	select {
	case records := <-ch:
		require.Len(t, records, 2)
		assert.Equal(t, "WID-901", records[1].LocalID())
	case <-time.After(time.Second):
		t.Fatal("no watch delivery")
	}
}

func TestWatchDeliversChanges(t *testing.T) {
	fake := newFakeDocStore()
	store := startStore(t, fake)
	ch, cancel := store.Watch()
	defer cancel()

	fake.events <- docdomain.Snapshot{}
	select {
	case records := <-ch:
		assert.Len(t, records, 2)
	case <-time.After(time.Second):
		t.Fatal("no watch delivery")
	}
}
