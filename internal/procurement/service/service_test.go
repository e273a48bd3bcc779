package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracesphere/campusasset/internal/config"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/liststore"
	"github.com/tracesphere/campusasset/internal/procurement/domain"
	"github.com/tracesphere/campusasset/internal/procurement/service"
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
		Cfg:  config.Config{},
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
	assert.Len(t, result.Records, 5)
	assert.Equal(t, 1, result.Pending)
	assert.Equal(t, 1, result.Ordered)
	assert.Equal(t, 1, result.Delivered)
	assert.Equal(t, float64(5*45000), result.TotalSpend)
}

func TestFirstSnapshotWithDocumentsGoesLive(t *testing.T) {
	docs := newFakeDocStore()
	svc := newService(t, docs, docdomain.Snapshot{Docs: []docdomain.Document{
		{ID: 301, Fields: datatypes.JSONMap{"poNumber": "PO-900001", "itemName": "Router", "quantity": 2, "unitCost": 5500.0, "status": domain.StatusDelivered}},
	}})

	result := svc.List(context.Background(), domain.Query{})
	assert.Equal(t, "live", result.Mode)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "PO-900001", result.Records[0].PONumber)
	assert.Equal(t, float64(11000), result.TotalSpend)
}

func TestListSearchAndStatusFilter(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	bySearch := svc.List(ctx, domain.Query{Search: "goggles"})
	require.Len(t, bySearch.Records, 1)
	assert.Equal(t, "PO-2024-003", bySearch.Records[0].PONumber)

	byStatus := svc.List(ctx, domain.Query{Status: domain.StatusOrdered})
	require.Len(t, byStatus.Records, 1)
	assert.Equal(t, "PO-2024-002", byStatus.Records[0].PONumber)
}

func TestCreateGeneratesPONumber(t *testing.T) {
	svc := newDemoService(t)

	created, err := svc.Create(context.Background(), domain.SaveRequest{ItemName: "Network Switch"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.PONumber, "PO-"))
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, "Consumables", created.Category)
	assert.Equal(t, "TechMart India", created.Supplier)
	assert.Equal(t, 1, created.Quantity)
}

func TestCreateValidation(t *testing.T) {
	svc := newDemoService(t)

	_, err := svc.Create(context.Background(), domain.SaveRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidItemName)
}

func TestUpdateKeepsStatus(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	err := svc.Update(ctx, "PO-2024-002", domain.SaveRequest{
		PONumber: "PO-2024-002",
		ItemName: "Arduino Mega 2560 Rev3",
	})
	require.NoError(t, err)

	result := svc.List(ctx, domain.Query{Status: domain.StatusOrdered})
	require.Len(t, result.Records, 1)
	assert.Equal(t, "Arduino Mega 2560 Rev3", result.Records[0].ItemName)
}

func TestUpdateStatus(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	require.NoError(t, svc.UpdateStatus(ctx, "PO-2024-002", domain.StatusDelivered))

	result := svc.List(ctx, domain.Query{})
	assert.Equal(t, 2, result.Delivered)
	assert.Equal(t, 0, result.Ordered)
	assert.Equal(t, float64(5*45000+20*1200), result.TotalSpend)
}

func TestUpdateStatusValidation(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.UpdateStatus(ctx, "PO-2024-002", "shipped"), domain.ErrInvalidStatus)
	assert.ErrorIs(t, svc.UpdateStatus(ctx, "PO-9999", domain.StatusOrdered), domain.ErrNotFound)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Delete(ctx, "PO-2024-005", false), liststore.ErrDeleteNotConfirmed)

	require.NoError(t, svc.Delete(ctx, "PO-2024-005", true))
	result := svc.List(ctx, domain.Query{})
	assert.Len(t, result.Records, 4)
}

func TestExportCSV(t *testing.T) {
	svc := newDemoService(t)

	csv := svc.ExportCSV(context.Background(), domain.Query{Status: domain.StatusDelivered})
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(domain.CSVHeaders(), ","), lines[0])
	assert.Contains(t, lines[1], "PO-2024-001")
	assert.Contains(t, lines[1], "225000")
}
