package service

import (
	"context"

	"github.com/tracesphere/campusasset/internal/dashboard/domain"
	docdomain "github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Placeholder figures shown when the store cannot be counted, so the
// landing page never renders an empty KPI block.
const (
	demoTotalAssets      = 1624
	demoLowStockItems    = 16
	demoPendingApprovals = 8
	demoActiveIssued     = 374

	lowStockThreshold = 10
)

type Params struct {
	fx.In

	Log  *zap.Logger
	Docs docdomain.Store
}

type Service struct {
	log  *zap.Logger
	docs docdomain.Store
}

func New(p Params) domain.Service {
	return &Service{
		log:  p.Log.Named("dashboard.service"),
		docs: p.Docs,
	}
}

func (s *Service) Stats(ctx context.Context) domain.Stats {
	stats := domain.Stats{Mode: "live"}

	total, err := s.docs.CountWhere(ctx, docdomain.CollectionAssets, func(docdomain.Document) bool {
		return true
	})
	if err != nil {
		return s.demoStats(err)
	}
	stats.TotalAssets = total

	lowStock, err := s.docs.CountWhere(ctx, docdomain.CollectionAssets, func(doc docdomain.Document) bool {
		return doc.IntField("quantity") <= lowStockThreshold
	})
	if err != nil {
		return s.demoStats(err)
	}
	stats.LowStockItems = lowStock

	pending, err := s.docs.CountWhere(ctx, docdomain.CollectionApprovals, func(doc docdomain.Document) bool {
		return doc.StringField("status") == "pending"
	})
	if err != nil {
		return s.demoStats(err)
	}
	stats.PendingApprovals = pending

	issued, err := s.docs.CountWhere(ctx, docdomain.CollectionAssets, func(doc docdomain.Document) bool {
		return doc.StringField("status") == "issued"
	})
	if err != nil {
		return s.demoStats(err)
	}
	stats.ActiveIssued = issued

	return stats
}

func (s *Service) demoStats(err error) domain.Stats {
	s.log.Warn("falling back to demo dashboard stats", zap.Error(err))
	metrics.Store().IncDemoFallback("dashboard", "error")
	return domain.Stats{
		TotalAssets:      demoTotalAssets,
		LowStockItems:    demoLowStockItems,
		PendingApprovals: demoPendingApprovals,
		ActiveIssued:     demoActiveIssued,
		Mode:             "demo",
	}
}
