package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tracesphere/campusasset/internal/asset/domain"
	"github.com/tracesphere/campusasset/internal/asset/service"
	"github.com/tracesphere/campusasset/internal/config"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/liststore"
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
		Cfg:  config.Config{SnapshotLimitAssets: 100},
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
	assert.Len(t, result.Records, 8)
	assert.Equal(t, 2, result.LowStock)
}

func TestFirstSnapshotWithDocumentsGoesLive(t *testing.T) {
	docs := newFakeDocStore()
	svc := newService(t, docs, docdomain.Snapshot{Docs: []docdomain.Document{
		{ID: 101, Fields: datatypes.JSONMap{"assetId": "AST-001", "name": "Microscope", "quantity": 4, "minQuantity": 2, "status": "available"}},
		{ID: 102, Fields: datatypes.JSONMap{"assetId": "AST-002", "name": "Centrifuge", "quantity": 1, "minQuantity": 2, "status": "maintenance"}},
	}})

	result := svc.List(context.Background(), domain.Query{})
	assert.Equal(t, "live", result.Mode)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "AST-001", result.Records[0].AssetID)
	assert.Equal(t, 1, result.LowStock)
}

func TestListFilters(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	byCategory := svc.List(ctx, domain.Query{Category: "Consumables"})
	require.Len(t, byCategory.Records, 2)
	for _, rec := range byCategory.Records {
		assert.Equal(t, "Consumables", rec.Category)
	}

	bySearch := svc.List(ctx, domain.Query{Search: "oscilloscope"})
	require.Len(t, bySearch.Records, 1)
	assert.Equal(t, "CIT-0002", bySearch.Records[0].AssetID)

	byStatus := svc.List(ctx, domain.Query{Status: domain.StatusMaintenance})
	require.Len(t, byStatus.Records, 1)
	assert.Equal(t, "CIT-0004", byStatus.Records[0].AssetID)
}

func TestCreateInDemoModePrepends(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, domain.SaveRequest{AssetID: "CIT-0100", Name: "3D Printer"})
	require.NoError(t, err)
	assert.Equal(t, "Lab Equipment", created.Category)
	assert.Equal(t, domain.StatusAvailable, created.Status)
	assert.Equal(t, 1, created.Quantity)

	result := svc.List(ctx, domain.Query{})
	require.Len(t, result.Records, 9)
	assert.Equal(t, "CIT-0100", result.Records[0].AssetID)
}

func TestCreateValidation(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.SaveRequest{AssetID: "CIT-0100"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.SaveRequest{AssetID: "CIT-0100", Name: "3D Printer", Status: "broken"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestUpdateDemoRecord(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	err := svc.Update(ctx, "CIT-0001", domain.SaveRequest{AssetID: "CIT-0001", Name: "Dell OptiPlex 7090", Department: "IT Services"})
	require.NoError(t, err)

	rec, err := svc.Lookup(ctx, "CIT-0001")
	require.NoError(t, err)
	assert.Equal(t, "IT Services", rec.Department)
	assert.True(t, rec.Demo)
}

func TestUpdateUnknownAsset(t *testing.T) {
	svc := newDemoService(t)

	err := svc.Update(context.Background(), "CIT-9999", domain.SaveRequest{AssetID: "CIT-9999", Name: "Ghost"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	svc := newDemoService(t)
	ctx := context.Background()

	err := svc.Delete(ctx, "CIT-0001", false)
	assert.ErrorIs(t, err, liststore.ErrDeleteNotConfirmed)

	require.NoError(t, svc.Delete(ctx, "CIT-0001", true))
	_, err = svc.Lookup(ctx, "CIT-0001")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExportCSV(t *testing.T) {
	svc := newDemoService(t)

	csv := svc.ExportCSV(context.Background(), domain.Query{Category: "Consumables"})
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(domain.CSVHeaders(), ","), lines[0])
	assert.Contains(t, csv, "CIT-0003")
	assert.NotContains(t, csv, "CIT-0001")
}
