package catalog

import (
	"context"

	"go.uber.org/zap"
)

const categoriesCacheKey = "categories:v1"

// Source reads the full flat category list.
type Source interface {
	ListCategoryNodes(ctx context.Context) ([]Node, error)
}

// Cache is the read-through cache used for the category list.
type Cache interface {
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Delete(ctx context.Context, keys ...string) error
}

// Service builds hierarchies from the category store. Read paths never
// fail: a store error is logged and yields an empty hierarchy.
type Service struct {
	source    Source
	cache     Cache
	logger    *zap.SugaredLogger
	rootOrder []string
}

// NewService wires the category source. cache may be nil.
func NewService(source Source, cache Cache, logger *zap.SugaredLogger, rootOrder []string) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{source: source, cache: cache, logger: logger, rootOrder: rootOrder}
}

// Load returns the current hierarchy or the store error.
func (s *Service) Load(ctx context.Context) (*Hierarchy, error) {
	var nodes []Node
	loader := func(ctx context.Context) (any, error) {
		return s.source.ListCategoryNodes(ctx)
	}

	if s.cache == nil {
		list, err := s.source.ListCategoryNodes(ctx)
		if err != nil {
			return nil, err
		}
		nodes = list
	} else if err := s.cache.FetchJSON(ctx, categoriesCacheKey, &nodes, loader); err != nil {
		return nil, err
	}
	return NewHierarchy(nodes, s.rootOrder), nil
}

// Hierarchy is Load without the error: failures give an empty hierarchy.
func (s *Service) Hierarchy(ctx context.Context) *Hierarchy {
	h, err := s.Load(ctx)
	if err != nil {
		s.logger.Errorw("load categories", "err", err)
		return NewHierarchy(nil, s.rootOrder)
	}
	return h
}

// Menu returns the mega menu, empty when categories can't be read.
func (s *Service) Menu(ctx context.Context) []MenuCategory {
	return s.Hierarchy(ctx).Menu()
}

// Invalidate drops the cached category list after a write.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
		s.logger.Warnw("invalidate category cache", "err", err)
	}
}
