package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/cache"
)

type stubSource struct {
	nodes []Node
	err   error
	calls int
}

func (s *stubSource) ListCategoryNodes(ctx context.Context) ([]Node, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.nodes, nil
}

func TestServiceMenuWithoutCache(t *testing.T) {
	src := &stubSource{nodes: fixtureNodes()}
	svc := NewService(src, nil, nil, nil)

	menu := svc.Menu(context.Background())
	require.Len(t, menu, 4)
	assert.Equal(t, "men", menu[0].Slug)
	assert.Equal(t, 1, src.calls)
}

func TestServiceMenuDegradesToEmptyOnError(t *testing.T) {
	src := &stubSource{err: errors.New("connection refused")}
	svc := NewService(src, nil, nil, nil)

	assert.NotPanics(t, func() {
		menu := svc.Menu(context.Background())
		assert.Empty(t, menu)
	})

	h := svc.Hierarchy(context.Background())
	require.NotNil(t, h)
	assert.Equal(t, 0, h.Len())

	_, err := svc.Load(context.Background())
	assert.Error(t, err)
}

func TestServiceCachesCategoryList(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	src := &stubSource{nodes: fixtureNodes()}
	svc := NewService(src, cache.New(client, "catalog", time.Minute), nil, nil)
	ctx := context.Background()

	first := svc.Menu(ctx)
	second := svc.Menu(ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)
	assert.True(t, mr.Exists("catalog:"+categoriesCacheKey))

	svc.Invalidate(ctx)
	assert.False(t, mr.Exists("catalog:"+categoriesCacheKey))

	svc.Menu(ctx)
	assert.Equal(t, 2, src.calls)
}

func TestServiceCacheDownFallsBackToSource(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	src := &stubSource{nodes: fixtureNodes()}
	svc := NewService(src, cache.New(client, "catalog", time.Minute), nil, nil)

	menu := svc.Menu(context.Background())
	assert.Len(t, menu, 4)
}
