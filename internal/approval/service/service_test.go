package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracesphere/campusasset/internal/approval/domain"
	"github.com/tracesphere/campusasset/internal/approval/service"
	"github.com/tracesphere/campusasset/internal/config"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
)

type fakeDocStore struct {
	events chan docdomain.Snapshot
}

func newFakeDocStore() *fakeDocStore {
	return &fakeDocStore{events: make(chan docdomain.Snapshot, 8)}
}

func (f *fakeDocStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	return "1", nil
}

func (f *fakeDocStore) Update(ctx context.Context, collection, serverID string, fields map[string]any) error {
	return nil
}

func (f *fakeDocStore) Delete(ctx context.Context, collection, serverID string) error {
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

func newService(t *testing.T, docs *fakeDocStore, first docdomain.Snapshot) domain.Service {
	t.Helper()

	svc := service.New(service.Params{
		Cfg:  config.Config{SnapshotLimitApprovals: 50},
		Log:  zaptest.NewLogger(t),
		Docs: docs,
	})
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Stop)

	docs.events <- first
	require.Eventually(t, func() bool {
		return !svc.List(context.Background(), domain.Query{}).Loading
	}, time.Second, 10*time.Millisecond)
	return svc
}

func newDemoService(t *testing.T) domain.Service {
	return newService(t, newFakeDocStore(), docdomain.Snapshot{})
}

func TestEmptySnapshotFallsBackToDemo(t *testing.T) {
	svc := newDemoService(t)

	result := svc.List(context.Background(), domain.Query{})
	assert.Equal(t, "demo", result.Mode)
	assert.Len(t, result.Records, 4)
}

func TestFirstSnapshotWithDocumentsGoesLive(t *testing.T) {
	docs := newFakeDocStore()
	svc := newService(t, docs, docdomain.Snapshot{Docs: []docdomain.Document{
		{ID: 201, Fields: datatypes.JSONMap{"id": "REQ-100", "itemName": "Lab Stools", "reason": "Broken stock", "status": domain.StatusPending}},
	}})

	result := svc.List(context.Background(), domain.Query{})
	assert.Equal(t, "live", result.Mode)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "REQ-100", result.Records[0].ID)
}

func TestListFiltersByStatus(t *testing.T) {
	svc := newDemoService(t)

	result := svc.List(context.Background(), domain.Query{Status: domain.StatusPending})
	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, domain.StatusPending, rec.Status)
	}

	all := svc.List(context.Background(), domain.Query{Status: "all"})
	assert.Len(t, all.Records, 4)
}

func TestCreateGeneratesRequestNumber(t *testing.T) {
	svc := newDemoService(t)

	created, err := svc.Create(context.Background(), domain.CreateRequest{
		ItemName: "Bench Vice",
		Reason:   "Workshop expansion",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "REQ-"))
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.Equal(t, 1, created.Quantity)
	assert.Equal(t, "pcs", created.Unit)
}

func TestCreateValidation(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Reason: "No item"})
	assert.ErrorIs(t, err, domain.ErrInvalidItemName)

	_, err = svc.Create(ctx, domain.CreateRequest{ItemName: "Bench Vice"})
	assert.ErrorIs(t, err, domain.ErrInvalidReason)
}

func TestApproveAndReject(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	require.NoError(t, svc.Approve(ctx, "REQ-001", "Go ahead"))
	require.NoError(t, svc.Reject(ctx, "REQ-003", "No budget"))

	result := svc.List(ctx, domain.Query{})
	byID := make(map[string]domain.ApprovalRequest, len(result.Records))
	for _, rec := range result.Records {
		byID[rec.ID] = rec
	}
	assert.Equal(t, domain.StatusApproved, byID["REQ-001"].Status)
	assert.Equal(t, "Go ahead", byID["REQ-001"].Comments)
	assert.Equal(t, domain.StatusRejected, byID["REQ-003"].Status)
	assert.Equal(t, "No budget", byID["REQ-003"].Comments)
}

func TestResolveUnknownRequest(t *testing.T) {
	svc := newDemoService(t)

	err := svc.Approve(context.Background(), "REQ-999", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
