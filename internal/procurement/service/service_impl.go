package service

import (
	"context"
	"strings"
	"time"

	"github.com/tracesphere/campusasset/internal/actorctx"
	"github.com/tracesphere/campusasset/internal/config"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/liststore"
	"github.com/tracesphere/campusasset/internal/procurement/domain"
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
	store *liststore.Store[domain.PurchaseOrder]
}

func New(p Params) domain.Service {
	cfg := liststore.Config[domain.PurchaseOrder]{
		Collection: docdomain.CollectionProcurement,
		// The order book is small enough to stream whole.
		Limit:    0,
		DemoSeed: domain.DemoSeed,
		Decode:   domain.FromDocument,
		EncodeCreate: func(rec domain.PurchaseOrder, author string, now time.Time) map[string]any {
			fields := rec.DocumentFields()
			fields["requestedBy"] = author
			return fields
		},
		EncodeUpdate: func(rec domain.PurchaseOrder, now time.Time) map[string]any {
			return rec.DocumentFields()
		},
		StatusFields: func(status, comment string, now time.Time) map[string]any {
			return map[string]any{"status": status}
		},
		ApplyStatus: func(rec domain.PurchaseOrder, status, comment string, now time.Time) domain.PurchaseOrder {
			rec.Status = status
			return rec
		},
		ApplyUpdate: func(existing, updated domain.PurchaseOrder) domain.PurchaseOrder {
			updated.DocumentID = existing.DocumentID
			updated.Demo = existing.Demo
			updated.RequestedBy = existing.RequestedBy
			return updated
		},
		Validate: validate,
		EnsureLocalID: func(rec domain.PurchaseOrder, now time.Time) domain.PurchaseOrder {
			rec.PONumber = liststore.TimestampLocalID("PO", 6, now)
			return rec
		},
		SearchText: func(o domain.PurchaseOrder) []string {
			return []string{o.ItemName, o.PONumber, o.Supplier}
		},
		FilterValue: func(o domain.PurchaseOrder, key string) string {
			if key == "status" {
				return o.Status
			}
			return ""
		},
		Author: actorctx.DisplayName,
	}

	return &Service{
		log:   p.Log.Named("procurement.service"),
		store: liststore.New(cfg, p.Docs, p.Log),
	}
}

func (s *Service) Start(ctx context.Context) error { return s.store.Start(ctx) }
func (s *Service) Stop()                           { s.store.Stop() }

func (s *Service) List(ctx context.Context, q domain.Query) domain.ListResult {
	records := s.store.Visible(toQuery(q))

	result := domain.ListResult{
		Records: records,
		Mode:    s.store.Mode().String(),
		Loading: s.store.Loading(),
	}
	for _, order := range s.store.Records() {
		switch order.Status {
		case domain.StatusPending:
			result.Pending++
		case domain.StatusOrdered:
			result.Ordered++
		case domain.StatusDelivered:
			result.Delivered++
			result.TotalSpend += order.Total()
		}
	}
	return result
}

func (s *Service) Create(ctx context.Context, req domain.SaveRequest) (*domain.PurchaseOrder, error) {
	rec := fromRequest(req, "")
	rec.Status = domain.StatusPending
	rec.RequestedBy = actorctx.DisplayName(ctx)

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, poNumber string, req domain.SaveRequest) error {
	rec := fromRequest(req, poNumber)
	// Edits never move the status; the status endpoint owns that.
	if existing, ok := s.store.Get(poNumber); ok {
		rec.Status = existing.Status
	}
	err := s.store.Update(ctx, poNumber, rec)
	if err == liststore.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

func (s *Service) UpdateStatus(ctx context.Context, poNumber, status string) error {
	valid := false
	for _, known := range domain.Statuses {
		if status == known {
			valid = true
			break
		}
	}
	if !valid {
		return domain.ErrInvalidStatus
	}

	err := s.store.UpdateStatus(ctx, poNumber, status, "")
	if err == liststore.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

func (s *Service) Delete(ctx context.Context, poNumber string, confirmed bool) error {
	err := s.store.Delete(ctx, poNumber, confirmed)
	if err == liststore.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

func (s *Service) ExportCSV(ctx context.Context, q domain.Query) string {
	return liststore.ExportCSV(s.store.Visible(toQuery(q)), domain.CSVHeaders(), domain.PurchaseOrder.CSVRow)
}

func (s *Service) Watch() (<-chan []domain.PurchaseOrder, func()) {
	return s.store.Watch()
}

func toQuery(q domain.Query) liststore.Query {
	return liststore.Query{
		Search:  q.Search,
		Filters: map[string]string{"status": q.Status},
	}
}

func fromRequest(req domain.SaveRequest, poNumber string) domain.PurchaseOrder {
	rec := domain.PurchaseOrder{
		PONumber:     strings.TrimSpace(req.PONumber),
		ItemName:     strings.TrimSpace(req.ItemName),
		Category:     strings.TrimSpace(req.Category),
		Supplier:     strings.TrimSpace(req.Supplier),
		Quantity:     1,
		Unit:         strings.TrimSpace(req.Unit),
		Department:   strings.TrimSpace(req.Department),
		ExpectedDate: strings.TrimSpace(req.ExpectedDate),
		Priority:     strings.TrimSpace(req.Priority),
		Notes:        strings.TrimSpace(req.Notes),
	}
	if rec.PONumber == "" {
		rec.PONumber = poNumber
	}
	if req.Quantity != nil {
		rec.Quantity = *req.Quantity
	}
	if req.UnitCost != nil {
		rec.UnitCost = *req.UnitCost
	}
	if rec.Category == "" {
		rec.Category = "Consumables"
	}
	if rec.Supplier == "" {
		rec.Supplier = "TechMart India"
	}
	if rec.Unit == "" {
		rec.Unit = "pcs"
	}
	if rec.Priority == "" {
		rec.Priority = "medium"
	}
	return rec
}

func validate(rec domain.PurchaseOrder) error {
	if rec.ItemName == "" {
		return domain.ErrInvalidItemName
	}
	return nil
}
