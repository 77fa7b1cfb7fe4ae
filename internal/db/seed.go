package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCategory is one node of the starter tree.
type SeedCategory struct {
	Name     string
	Slug     string
	Children []SeedCategory
}

// StarterTree is the category tree a fresh store starts with.
func StarterTree() []SeedCategory {
	return []SeedCategory{
		{Name: "Men", Slug: "men", Children: []SeedCategory{
			{Name: "Topwear", Slug: "men-topwear", Children: []SeedCategory{
				{Name: "T-Shirts", Slug: "men-t-shirts"},
				{Name: "Shirts", Slug: "men-shirts"},
				{Name: "Hoodies", Slug: "men-hoodies"},
			}},
			{Name: "Bottomwear", Slug: "men-bottomwear", Children: []SeedCategory{
				{Name: "Jeans", Slug: "men-jeans"},
				{Name: "Trousers", Slug: "men-trousers"},
			}},
			{Name: "Footwear", Slug: "men-footwear", Children: []SeedCategory{
				{Name: "Sneakers", Slug: "men-sneakers"},
				{Name: "Boots", Slug: "men-boots"},
			}},
		}},
		{Name: "Women", Slug: "women", Children: []SeedCategory{
			{Name: "Dresses", Slug: "women-dresses"},
			{Name: "Tops", Slug: "women-tops"},
			{Name: "Footwear", Slug: "women-footwear", Children: []SeedCategory{
				{Name: "Heels", Slug: "women-heels"},
				{Name: "Sandals", Slug: "women-sandals"},
			}},
		}},
		{Name: "Kids", Slug: "kids", Children: []SeedCategory{
			{Name: "Boys", Slug: "kids-boys"},
			{Name: "Girls", Slug: "kids-girls"},
		}},
		{Name: "Accessories", Slug: "accessories", Children: []SeedCategory{
			{Name: "Bags", Slug: "accessories-bags"},
			{Name: "Belts", Slug: "accessories-belts"},
		}},
	}
}

// Seed inserts the tree, skipping slugs that already exist. It returns the
// number of rows created.
func Seed(ctx context.Context, pool *pgxpool.Pool, tree []SeedCategory) (int, error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	created := 0
	var insert func(nodes []SeedCategory, parent *int64) error
	insert = func(nodes []SeedCategory, parent *int64) error {
		for _, n := range nodes {
			var (
				id       int64
				inserted bool
			)
			err := tx.QueryRow(ctx, `
				WITH ins AS (
					INSERT INTO categories (name, slug, parent_id)
					VALUES ($1, $2, $3)
					ON CONFLICT (slug) DO NOTHING
					RETURNING id
				)
				SELECT id, true FROM ins
				UNION ALL
				SELECT id, false FROM categories WHERE slug = $2
				LIMIT 1`, n.Name, n.Slug, parent).Scan(&id, &inserted)
			if err != nil {
				return fmt.Errorf("seed %s: %w", n.Slug, err)
			}
			if inserted {
				created++
			}
			if err := insert(n.Children, &id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insert(tree, nil); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}
