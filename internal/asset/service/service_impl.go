package service

import (
	"context"
	"strings"
	"time"

	"github.com/tracesphere/campusasset/internal/actorctx"
	"github.com/tracesphere/campusasset/internal/asset/domain"
	"github.com/tracesphere/campusasset/internal/config"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/liststore"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg  config.Config
	Log  *zap.Logger
	Docs docdomain.Store
}

type Service struct {
	log   *zap.Logger
	store *liststore.Store[domain.Asset]
}

func New(p Params) domain.Service {
	cfg := liststore.Config[domain.Asset]{
		Collection: docdomain.CollectionAssets,
		Limit:      p.Cfg.SnapshotLimitAssets,
		DemoSeed:   domain.DemoSeed,
		Decode:     domain.FromDocument,
		EncodeCreate: func(rec domain.Asset, author string, now time.Time) map[string]any {
			fields := rec.DocumentFields()
			fields["createdBy"] = author
			return fields
		},
		EncodeUpdate: func(rec domain.Asset, now time.Time) map[string]any {
			return rec.DocumentFields()
		},
		StatusFields: func(status, comment string, now time.Time) map[string]any {
			return map[string]any{"status": status}
		},
		ApplyStatus: func(rec domain.Asset, status, comment string, now time.Time) domain.Asset {
			rec.Status = status
			return rec
		},
		ApplyUpdate: func(existing, updated domain.Asset) domain.Asset {
			updated.DocumentID = existing.DocumentID
			updated.Demo = existing.Demo
			updated.CreatedBy = existing.CreatedBy
			return updated
		},
		Validate: validate,
		// Asset tags are user-supplied, never generated.
		EnsureLocalID: func(rec domain.Asset, now time.Time) domain.Asset { return rec },
		SearchText: func(a domain.Asset) []string {
			return []string{a.Name, a.AssetID, a.Department}
		},
		FilterValue: func(a domain.Asset, key string) string {
			switch key {
			case "category":
				return a.Category
			case "status":
				return a.Status
			default:
				return ""
			}
		},
		Author: actorctx.DisplayName,
	}

	return &Service{
		log:   p.Log.Named("asset.service"),
		store: liststore.New(cfg, p.Docs, p.Log),
	}
}

func (s *Service) Start(ctx context.Context) error { return s.store.Start(ctx) }
func (s *Service) Stop()                           { s.store.Stop() }

func (s *Service) List(ctx context.Context, q domain.Query) domain.ListResult {
	records := s.store.Visible(toQuery(q))
	lowStock := 0
	for _, rec := range s.store.Records() {
		if rec.LowStock() {
			lowStock++
		}
	}
	return domain.ListResult{
		Records:  records,
		Mode:     s.store.Mode().String(),
		Loading:  s.store.Loading(),
		LowStock: lowStock,
	}
}

func (s *Service) Create(ctx context.Context, req domain.SaveRequest) (*domain.Asset, error) {
	rec, err := s.store.Create(ctx, fromRequest(req, ""))
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) Update(ctx context.Context, assetID string, req domain.SaveRequest) error {
	err := s.store.Update(ctx, assetID, fromRequest(req, assetID))
	if err == liststore.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

func (s *Service) Delete(ctx context.Context, assetID string, confirmed bool) error {
	err := s.store.Delete(ctx, assetID, confirmed)
	if err == liststore.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

func (s *Service) Lookup(ctx context.Context, assetID string) (*domain.Asset, error) {
	rec, ok := s.store.Get(strings.TrimSpace(assetID))
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (s *Service) ExportCSV(ctx context.Context, q domain.Query) string {
	return liststore.ExportCSV(s.store.Visible(toQuery(q)), domain.CSVHeaders(), domain.Asset.CSVRow)
}

func (s *Service) Watch() (<-chan []domain.Asset, func()) {
	return s.store.Watch()
}

func toQuery(q domain.Query) liststore.Query {
	return liststore.Query{
		Search: q.Search,
		Filters: map[string]string{
			"category": q.Category,
			"status":   q.Status,
		},
	}
}

func fromRequest(req domain.SaveRequest, assetID string) domain.Asset {
	rec := domain.Asset{
		AssetID:      strings.TrimSpace(req.AssetID),
		Name:         strings.TrimSpace(req.Name),
		Category:     strings.TrimSpace(req.Category),
		Location:     strings.TrimSpace(req.Location),
		Quantity:     1,
		MinQuantity:  5,
		Unit:         strings.TrimSpace(req.Unit),
		Status:       strings.TrimSpace(req.Status),
		Department:   strings.TrimSpace(req.Department),
		Description:  strings.TrimSpace(req.Description),
		PurchaseDate: strings.TrimSpace(req.PurchaseDate),
		Cost:         strings.TrimSpace(req.Cost),
	}
	if rec.AssetID == "" {
		rec.AssetID = assetID
	}
	if req.Quantity != nil {
		rec.Quantity = *req.Quantity
	}
	if req.MinQuantity != nil {
		rec.MinQuantity = *req.MinQuantity
	}
	if rec.Category == "" {
		rec.Category = "Lab Equipment"
	}
	if rec.Location == "" {
		rec.Location = "Main Store"
	}
	if rec.Unit == "" {
		rec.Unit = "pcs"
	}
	if rec.Status == "" {
		rec.Status = domain.StatusAvailable
	}
	return rec
}

func validate(rec domain.Asset) error {
	if rec.AssetID == "" {
		return domain.ErrInvalidAssetID
	}
	if rec.Name == "" {
		return domain.ErrInvalidName
	}
	valid := false
	for _, status := range domain.Statuses {
		if rec.Status == status {
			valid = true
			break
		}
	}
	if !valid {
		return domain.ErrInvalidStatus
	}
	return nil
}
