package storage

import (
	"context"
	"fmt"

	"atelier/internal/domain/content"
	"atelier/internal/domain/products"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool     *pgxpool.Pool
	Products products.Store
	Content  content.Store
}

func NewContainer(db *pgxpool.Pool) *Container {
	return &Container{
		pool:     db,
		Products: products.NewRepository(db),
		Content:  content.NewRepository(db),
	}
}

// Ping reports whether the database answers. Used by the health endpoint.
func (c *Container) Ping(ctx context.Context) error {
	if c.pool == nil {
		return fmt.Errorf("storage container pool is nil")
	}
	return c.pool.Ping(ctx)
}
