package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tracesphere/campusasset/internal/config"
	"github.com/tracesphere/campusasset/internal/docstore/domain"
	"github.com/tracesphere/campusasset/internal/docstore/snapshothub"
	"github.com/tracesphere/campusasset/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Hub   *snapshothub.Hub
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   domain.Repository
	genID  *snowflake.Node
	hub    *snapshothub.Hub
	limits map[string]int
}

func New(p Params) domain.Store {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("docstore.service"),
		repo:  p.Repo,
		genID: p.GenID,
		hub:   p.Hub,
		limits: map[string]int{
			domain.CollectionAssets:      p.Cfg.SnapshotLimitAssets,
			domain.CollectionApprovals:   p.Cfg.SnapshotLimitApprovals,
			domain.CollectionProcurement: 0,
		},
	}
}

func (s *Service) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	name := strings.TrimSpace(collection)
	if name == "" {
		return "", domain.ErrInvalidCollection
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         s.genID.Generate().Int64(),
		Collection: name,
		Fields:     datatypes.JSONMap(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, doc); err != nil {
		return "", err
	}

	s.publish(ctx, name)
	return snowflake.ID(doc.ID).String(), nil
}

func (s *Service) Update(ctx context.Context, collection, serverID string, fields map[string]any) error {
	name := strings.TrimSpace(collection)
	if name == "" {
		return domain.ErrInvalidCollection
	}
	docID, err := snowflake.ParseString(strings.TrimSpace(serverID))
	if err != nil {
		return domain.ErrInvalidDocumentID
	}

	doc, err := s.repo.FindByID(ctx, s.db, name, docID.Int64())
	if err != nil {
		return err
	}
	if doc == nil {
		return domain.ErrNotFound
	}

	merged := make(datatypes.JSONMap, len(doc.Fields)+len(fields))
	for k, v := range doc.Fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	doc.Fields = merged
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, s.db, doc); err != nil {
		return err
	}

	s.publish(ctx, name)
	return nil
}

func (s *Service) Delete(ctx context.Context, collection, serverID string) error {
	name := strings.TrimSpace(collection)
	if name == "" {
		return domain.ErrInvalidCollection
	}
	docID, err := snowflake.ParseString(strings.TrimSpace(serverID))
	if err != nil {
		return domain.ErrInvalidDocumentID
	}

	if err := s.repo.Delete(ctx, s.db, name, docID.Int64()); err != nil {
		return err
	}

	s.publish(ctx, name)
	return nil
}

func (s *Service) List(ctx context.Context, collection string, limit int) ([]domain.Document, error) {
	name := strings.TrimSpace(collection)
	if name == "" {
		return nil, domain.ErrInvalidCollection
	}
	return s.repo.ListByCollection(ctx, s.db, name, limit)
}

func (s *Service) Subscribe(ctx context.Context, collection string, limit int) (<-chan domain.Snapshot, func(), error) {
	name := strings.TrimSpace(collection)
	if name == "" {
		return nil, nil, domain.ErrInvalidCollection
	}

	sub := s.hub.Subscribe(name)
	docs, err := s.repo.ListByCollection(ctx, s.db, name, limit)
	initial := domain.Snapshot{Docs: docs, Err: err}

	forwardCtx, cancelForward := context.WithCancel(context.Background())
	out := make(chan domain.Snapshot, snapshothub.DefaultSubscriberBuffer)
	go func() {
		defer close(out)
		select {
		case out <- initial:
		case <-forwardCtx.Done():
			return
		}
		for {
			select {
			case snap := <-sub.Events():
				select {
				case out <- snap:
				case <-forwardCtx.Done():
					return
				}
			case <-forwardCtx.Done():
				return
			}
		}
	}()

	cancel := func() {
		sub.Close()
		cancelForward()
	}
	return out, cancel, nil
}

func (s *Service) CountWhere(ctx context.Context, collection string, pred func(domain.Document) bool) (int, error) {
	docs, err := s.List(ctx, collection, 0)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, doc := range docs {
		if pred(doc) {
			count++
		}
	}
	return count, nil
}

// publish rebuilds the collection snapshot and fans it out. Runs after
// every successful write; a failed rebuild is logged and skipped, the
// next write publishes a fresh one.
func (s *Service) publish(ctx context.Context, collection string) {
	docs, err := s.repo.ListByCollection(ctx, s.db, collection, s.limits[collection])
	if err != nil {
		s.log.Warn("snapshot rebuild failed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}
	s.hub.Publish(collection, domain.Snapshot{Docs: docs})
	metrics.Store().IncSnapshotPublished(collection)
}
