package service

import (
	"context"
	"strings"
	"time"

	"github.com/tracesphere/campusasset/internal/actorctx"
	"github.com/tracesphere/campusasset/internal/approval/domain"
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
	store *liststore.Store[domain.ApprovalRequest]
}

func New(p Params) domain.Service {
	cfg := liststore.Config[domain.ApprovalRequest]{
		Collection: docdomain.CollectionApprovals,
		Limit:      p.Cfg.SnapshotLimitApprovals,
		DemoSeed:   domain.DemoSeed,
		Decode:     domain.FromDocument,
		EncodeCreate: func(rec domain.ApprovalRequest, author string, now time.Time) map[string]any {
			fields := rec.DocumentFields()
			fields["requestedBy"] = author
			fields["requestedAt"] = now.Format("2006-01-02")
			return fields
		},
		EncodeUpdate: func(rec domain.ApprovalRequest, now time.Time) map[string]any {
			return rec.DocumentFields()
		},
		// Resolution stamps the decision, the reviewer comment and the
		// server-side resolution time.
		StatusFields: func(status, comment string, now time.Time) map[string]any {
			return map[string]any{
				"status":     status,
				"comments":   comment,
				"resolvedAt": now.Format(time.RFC3339),
			}
		},
		ApplyStatus: func(rec domain.ApprovalRequest, status, comment string, now time.Time) domain.ApprovalRequest {
			rec.Status = status
			rec.Comments = comment
			return rec
		},
		ApplyUpdate: func(existing, updated domain.ApprovalRequest) domain.ApprovalRequest {
			updated.DocumentID = existing.DocumentID
			updated.Demo = existing.Demo
			return updated
		},
		Validate: validate,
		EnsureLocalID: func(rec domain.ApprovalRequest, now time.Time) domain.ApprovalRequest {
			rec.ID = liststore.TimestampLocalID("REQ", 4, now)
			return rec
		},
		SearchText: func(r domain.ApprovalRequest) []string {
			return []string{r.ItemName, r.ID, r.Department}
		},
		FilterValue: func(r domain.ApprovalRequest, key string) string {
			if key == "status" {
				return r.Status
			}
			return ""
		},
		Author: actorctx.DisplayName,
	}

	return &Service{
		log:   p.Log.Named("approval.service"),
		store: liststore.New(cfg, p.Docs, p.Log),
	}
}

func (s *Service) Start(ctx context.Context) error { return s.store.Start(ctx) }
func (s *Service) Stop()                           { s.store.Stop() }

func (s *Service) List(ctx context.Context, q domain.Query) domain.ListResult {
	records := s.store.Visible(liststore.Query{
		Filters: map[string]string{"status": q.Status},
	})
	return domain.ListResult{
		Records: records,
		Mode:    s.store.Mode().String(),
		Loading: s.store.Loading(),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.ApprovalRequest, error) {
	rec := domain.ApprovalRequest{
		ItemName:      strings.TrimSpace(req.ItemName),
		Quantity:      1,
		Unit:          strings.TrimSpace(req.Unit),
		Category:      strings.TrimSpace(req.Category),
		Reason:        strings.TrimSpace(req.Reason),
		Priority:      strings.TrimSpace(req.Priority),
		Department:    strings.TrimSpace(req.Department),
		EstimatedCost: strings.TrimSpace(req.EstimatedCost),
		Status:        domain.StatusPending,
		RequestedBy:   actorctx.DisplayName(ctx),
		RequestedAt:   time.Now().UTC().Format("2006-01-02"),
		Comments:      "",
	}
	if req.Quantity != nil {
		rec.Quantity = *req.Quantity
	}
	if rec.Unit == "" {
		rec.Unit = "pcs"
	}
	if rec.Priority == "" {
		rec.Priority = domain.PriorityMedium
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) Approve(ctx context.Context, requestID, comment string) error {
	return s.resolve(ctx, requestID, domain.StatusApproved, comment)
}

func (s *Service) Reject(ctx context.Context, requestID, comment string) error {
	return s.resolve(ctx, requestID, domain.StatusRejected, comment)
}

func (s *Service) resolve(ctx context.Context, requestID, status, comment string) error {
	err := s.store.UpdateStatus(ctx, requestID, status, comment)
	if err == liststore.ErrNotFound {
		return domain.ErrNotFound
	}
	return err
}

func (s *Service) Watch() (<-chan []domain.ApprovalRequest, func()) {
	return s.store.Watch()
}

func validate(rec domain.ApprovalRequest) error {
	if rec.ItemName == "" {
		return domain.ErrInvalidItemName
	}
	if rec.Reason == "" {
		return domain.ErrInvalidReason
	}
	return nil
}
