package products

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"atelier/internal/catalog"
	"atelier/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryInUse      = errors.New("category has child categories or products")
	ErrProductNotFound    = errors.New("product not found")
	ErrDuplicateSlug      = errors.New("slug already exists")
	ErrInvalidParent      = errors.New("invalid parent category")
	ErrCircularDependency = errors.New("circular dependency detected")
)

// postgres error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// Store is the data access abstraction for the catalogue.
// Implemented by Repository (which uses pgxpool.Pool).
type Store interface {
	// Categories
	ListCategories(ctx context.Context) ([]*Category, error)
	ListCategoryNodes(ctx context.Context) ([]catalog.Node, error)
	GetCategoryByID(ctx context.Context, id int64) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountProductsInCategory(ctx context.Context, id int64) (int, error)

	// Products
	ListProductCards(ctx context.Context, f ProductFilter) ([]*ProductCard, int, error)
	ListAdminProductCards(ctx context.Context, limit, offset int) ([]*AdminProductCard, int, error)
	GetProductByID(ctx context.Context, id int64) (*Product, error)
	GetProductDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error)
	GetProductDetailByID(ctx context.Context, id int64) (*ProductDetail, error)
	SaveProduct(ctx context.Context, in *SaveProductInput) (*SaveResult, error)
	SetProductActive(ctx context.Context, id int64, active bool) error
	DeleteProduct(ctx context.Context, id int64) ([]string, error)

	// Media
	UnreferencedImageURLs(ctx context.Context, urls []string) ([]string, error)
}

type Repository struct {
	pool *pgxpool.Pool
	db   dbx.Querier
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{pool: db, db: db}
}

// ------------------------------------
// Transaction helper
// ------------------------------------
func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Printf("warning: rollback failed: %v", err)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// mapPgError turns constraint violations into domain errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrDuplicateSlug
		case foreignKeyViolation:
			return ErrCategoryInUse
		}
	}
	return err
}

// ------------------------------------
// Categories
// ------------------------------------
const categoryColumns = `id, name, slug, parent_id, image_url, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	c := &Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns every category; the tree is small enough to read whole.
func (r *Repository) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var list []*Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return list, nil
}

func (r *Repository) ListCategoryNodes(ctx context.Context) ([]catalog.Node, error) {
	list, err := r.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]catalog.Node, 0, len(list))
	for _, c := range list {
		nodes = append(nodes, c.Node())
	}
	return nodes, nil
}

func (r *Repository) GetCategoryByID(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return c, nil
}

func (r *Repository) CreateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if c.ParentID != nil {
		if _, err := r.GetCategoryByID(ctx, *c.ParentID); err != nil {
			if errors.Is(err, ErrCategoryNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
	}

	query := `
        INSERT INTO categories (name, slug, parent_id, image_url)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + categoryColumns

	created, err := scanCategory(r.db.QueryRow(ctx, query, c.Name, c.Slug, c.ParentID, c.ImageURL))
	if err != nil {
		if mapped := mapPgError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return created, nil
}

// UpdateCategory overwrites name, slug, parent and image. Moving a category
// under itself or one of its descendants is rejected.
func (r *Repository) UpdateCategory(ctx context.Context, c *Category) (*Category, error) {
	if err := validateCategory(c); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if c.ParentID != nil {
		if err := r.checkParent(ctx, c.ID, *c.ParentID); err != nil {
			return nil, err
		}
	}

	query := `
        UPDATE categories
        SET name = $1, slug = $2, parent_id = $3, image_url = $4, updated_at = NOW()
        WHERE id = $5
        RETURNING ` + categoryColumns

	updated, err := scanCategory(r.db.QueryRow(ctx, query, c.Name, c.Slug, c.ParentID, c.ImageURL, c.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		if mapped := mapPgError(err); mapped != err {
			return nil, mapped
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return updated, nil
}

// checkParent walks up from parentID and fails if it reaches id.
func (r *Repository) checkParent(ctx context.Context, id, parentID int64) error {
	const q = `
		WITH RECURSIVE up AS (
			SELECT id, parent_id, 0 AS depth FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, c.parent_id, up.depth + 1
			FROM categories c
			INNER JOIN up ON c.id = up.parent_id
			WHERE up.depth < $3
		)
		SELECT COUNT(*), COALESCE(BOOL_OR(id = $2), false) FROM up`

	var (
		found    int
		circular bool
	)
	if err := r.db.QueryRow(ctx, q, parentID, id, catalog.MaxDepth).Scan(&found, &circular); err != nil {
		return fmt.Errorf("check parent: %w", err)
	}
	if found == 0 {
		return ErrInvalidParent
	}
	if circular {
		return ErrCircularDependency
	}
	return nil
}

// DeleteCategory relies on the RESTRICT foreign keys to refuse deleting a
// category that still has children or products.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		if mapped := mapPgError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) CountProductsInCategory(ctx context.Context, id int64) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}
	return n, nil
}

func validateCategory(c *Category) error {
	if c == nil {
		return fmt.Errorf("category cannot be nil")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	if strings.TrimSpace(c.Slug) == "" {
		return fmt.Errorf("category slug cannot be empty")
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		return ErrCircularDependency
	}
	return nil
}

// ------------------------------------
// Products
// ------------------------------------
const productColumns = `id, name, slug, description, price, category_id, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.CategoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func orderClause(sort string) string {
	switch sort {
	case SortPriceAsc:
		return `p.price ASC, p.id DESC`
	case SortPriceDesc:
		return `p.price DESC, p.id DESC`
	default:
		return `p.created_at DESC, p.id DESC`
	}
}

// ListProductCards returns a page of product cards with their first image.
// total is the number of matching products regardless of the page.
func (r *Repository) ListProductCards(ctx context.Context, f ProductFilter) ([]*ProductCard, int, error) {
	if f.Limit <= 0 || f.Limit > 60 {
		f.Limit = 24
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Restricted && len(f.CategoryIDs) == 0 {
		return []*ProductCard{}, 0, nil
	}

	var ids []int64
	if f.Restricted {
		ids = f.CategoryIDs
	}

	where := `WHERE ($1::bigint[] IS NULL OR p.category_id = ANY($1)) AND ($2 = false OR p.is_active = true)`

	dataSQL := `
      SELECT
        p.id, p.name, p.slug, p.price,
        p.category_id, c.name, c.slug,
        img.image_url,
        p.is_active, p.created_at,
        COUNT(*) OVER() AS total_count
      FROM products p
      INNER JOIN categories c ON c.id = p.category_id
      LEFT JOIN LATERAL (
          SELECT i.image_url
          FROM product_images i
          WHERE i.product_id = p.id
          ORDER BY i.display_order ASC, i.id ASC
          LIMIT 1
      ) img ON true
      ` + where + `
      ORDER BY ` + orderClause(f.Sort) + `
      LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, dataSQL, ids, f.ActiveOnly, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list product cards: %w", err)
	}
	defer rows.Close()

	cards := make([]*ProductCard, 0, f.Limit)
	total := 0
	for rows.Next() {
		var pc ProductCard
		if err := rows.Scan(
			&pc.ID, &pc.Name, &pc.Slug, &pc.Price,
			&pc.CategoryID, &pc.CategoryName, &pc.CategorySlug,
			&pc.PrimaryImageURL,
			&pc.IsActive, &pc.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product card: %w", err)
		}
		cards = append(cards, &pc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}

	// Fallback: paged past the end, the window count is gone.
	if len(cards) == 0 && f.Offset > 0 {
		countSQL := `SELECT COUNT(*) FROM products p ` + where
		if err := r.db.QueryRow(ctx, countSQL, ids, f.ActiveOnly).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count products: %w", err)
		}
	}

	return cards, total, nil
}

// ListAdminProductCards lists every product, active or not, with variant and image counts.
func (r *Repository) ListAdminProductCards(ctx context.Context, limit, offset int) ([]*AdminProductCard, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	dataSQL := `
      SELECT
        p.id, p.name, p.slug, p.price,
        p.category_id, c.name, c.slug,
        img.image_url,
        p.is_active, p.created_at,
        COALESCE(v_cnt.cnt, 0) AS variants_count,
        COALESCE(i_cnt.cnt, 0) AS images_count
      FROM products p
      INNER JOIN categories c ON c.id = p.category_id
      LEFT JOIN LATERAL (
          SELECT i.image_url FROM product_images i
          WHERE i.product_id = p.id
          ORDER BY i.display_order ASC, i.id ASC
          LIMIT 1
      ) img ON true
      LEFT JOIN LATERAL (
          SELECT COUNT(*) AS cnt FROM product_variants v WHERE v.product_id = p.id
      ) v_cnt ON true
      LEFT JOIN LATERAL (
          SELECT COUNT(*) AS cnt FROM product_images i WHERE i.product_id = p.id
      ) i_cnt ON true
      ORDER BY p.id DESC
      LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, dataSQL, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("admin list products: %w", err)
	}
	defer rows.Close()

	out := make([]*AdminProductCard, 0, limit)
	for rows.Next() {
		var c AdminProductCard
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Price,
			&c.CategoryID, &c.CategoryName, &c.CategorySlug,
			&c.PrimaryImageURL,
			&c.IsActive, &c.CreatedAt,
			&c.VariantsCount, &c.ImagesCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan admin product card: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows: %w", err)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	return out, total, nil
}

func (r *Repository) GetProductByID(ctx context.Context, id int64) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetProductDetailBySlug loads an active product with its category,
// variants and images.
func (r *Repository) GetProductDetailBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	p, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE slug = $1 AND is_active = true`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("product detail: %w", err)
	}
	return r.detail(ctx, r.db, p)
}

// GetProductDetailByID is the admin variant: inactive products included.
func (r *Repository) GetProductDetailByID(ctx context.Context, id int64) (*ProductDetail, error) {
	p, err := r.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.detail(ctx, r.db, p)
}

func (r *Repository) detail(ctx context.Context, q dbx.Querier, p *Product) (*ProductDetail, error) {
	d := &ProductDetail{Product: p}

	c, err := scanCategory(q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, p.CategoryID))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category: %w", err)
	}
	if err == nil {
		d.Category = c
	}

	if d.Variants, err = listVariants(ctx, q, p.ID); err != nil {
		return nil, err
	}
	if d.Images, err = listImages(ctx, q, p.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func listVariants(ctx context.Context, q dbx.Querier, productID int64) ([]*ProductVariant, error) {
	rows, err := q.Query(ctx, `
		SELECT id, product_id, size, color, stock, created_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	list := []*ProductVariant{}
	for rows.Next() {
		var v ProductVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		list = append(list, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("variants rows: %w", err)
	}
	return list, nil
}

func listImages(ctx context.Context, q dbx.Querier, productID int64) ([]*ProductImage, error) {
	rows, err := q.Query(ctx, `
		SELECT id, product_id, image_url, display_order, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY display_order ASC, id ASC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list product_images: %w", err)
	}
	defer rows.Close()

	list := []*ProductImage{}
	for rows.Next() {
		var img ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.DisplayOrder, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product_image: %w", err)
		}
		list = append(list, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("images rows: %w", err)
	}
	return list, nil
}

// SaveProduct creates or updates the product row and replaces all of its
// variants and images in one transaction.
func (r *Repository) SaveProduct(ctx context.Context, in *SaveProductInput) (*SaveResult, error) {
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	res := &SaveResult{}
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		p, err := upsertProduct(ctx, tx, in)
		if err != nil {
			return err
		}
		res.Product = p

		previous, err := listImages(ctx, tx, p.ID)
		if err != nil {
			return err
		}

		if res.Variants, err = replaceVariants(ctx, tx, p.ID, in.Variants); err != nil {
			return err
		}
		if res.Images, err = replaceImages(ctx, tx, p.ID, in.ImageURLs); err != nil {
			return err
		}

		dropped := make([]string, 0, len(previous))
		for _, img := range previous {
			dropped = append(dropped, img.ImageURL)
		}
		res.RemovedImageURLs, err = unreferencedImageURLs(ctx, tx, dropped)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func upsertProduct(ctx context.Context, q dbx.Querier, in *SaveProductInput) (*Product, error) {
	var row pgx.Row
	if in.ID == 0 {
		row = q.QueryRow(ctx, `
			INSERT INTO products (name, slug, description, price, category_id, is_active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+productColumns,
			in.Name, in.Slug, in.Description, in.Price, in.CategoryID, in.IsActive)
	} else {
		row = q.QueryRow(ctx, `
			UPDATE products
			SET name = $1, slug = $2, description = $3, price = $4, category_id = $5, is_active = $6, updated_at = now()
			WHERE id = $7
			RETURNING `+productColumns,
			in.Name, in.Slug, in.Description, in.Price, in.CategoryID, in.IsActive, in.ID)
	}

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolation:
				return nil, ErrDuplicateSlug
			case foreignKeyViolation:
				return nil, ErrCategoryNotFound
			}
		}
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func replaceVariants(ctx context.Context, q dbx.Querier, productID int64, specs []catalog.VariantSpec) ([]*ProductVariant, error) {
	if _, err := q.Exec(ctx, `DELETE FROM product_variants WHERE product_id = $1`, productID); err != nil {
		return nil, fmt.Errorf("delete variants: %w", err)
	}

	out := make([]*ProductVariant, 0, len(specs))
	for _, s := range specs {
		v := &ProductVariant{}
		err := q.QueryRow(ctx, `
			INSERT INTO product_variants (product_id, size, color, stock)
			VALUES ($1, $2, $3, $4)
			RETURNING id, product_id, size, color, stock, created_at`,
			productID, s.Size, s.Color, s.Stock,
		).Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert variant %s/%s: %w", s.Size, s.Color, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func replaceImages(ctx context.Context, q dbx.Querier, productID int64, urls []string) ([]*ProductImage, error) {
	if _, err := q.Exec(ctx, `DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return nil, fmt.Errorf("delete images: %w", err)
	}

	out := make([]*ProductImage, 0, len(urls))
	for idx, u := range urls {
		img := &ProductImage{}
		err := q.QueryRow(ctx, `
			INSERT INTO product_images (product_id, image_url, display_order)
			VALUES ($1, $2, $3)
			RETURNING id, product_id, image_url, display_order, created_at`,
			productID, u, idx,
		).Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.DisplayOrder, &img.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert image: %w", err)
		}
		out = append(out, img)
	}
	return out, nil
}

func (r *Repository) SetProductActive(ctx context.Context, id int64, active bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE products SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// DeleteProduct removes the product; variants and images cascade. The image
// URLs nothing else uses are returned so the caller can clean up the media host.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) ([]string, error) {
	var urls []string
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		imgs, err := listImages(ctx, tx, id)
		if err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrProductNotFound
		}
		dropped := make([]string, 0, len(imgs))
		for _, img := range imgs {
			dropped = append(dropped, img.ImageURL)
		}
		urls, err = unreferencedImageURLs(ctx, tx, dropped)
		return err
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

// UnreferencedImageURLs keeps the urls that no product image, category or
// content block points at any more, in their original order.
func (r *Repository) UnreferencedImageURLs(ctx context.Context, urls []string) ([]string, error) {
	return unreferencedImageURLs(ctx, r.db, urls)
}

func unreferencedImageURLs(ctx context.Context, q dbx.Querier, urls []string) ([]string, error) {
	seen := make(map[string]bool, len(urls))
	candidates := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		candidates = append(candidates, u)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	rows, err := q.Query(ctx, `
		SELECT u.url
		FROM unnest($1::text[]) WITH ORDINALITY AS u(url, ord)
		WHERE NOT EXISTS (SELECT 1 FROM product_images pi WHERE pi.image_url = u.url)
		  AND NOT EXISTS (SELECT 1 FROM categories c WHERE c.image_url = u.url)
		  AND NOT EXISTS (SELECT 1 FROM content_blocks cb WHERE cb.value = u.url)
		ORDER BY u.ord`, candidates)
	if err != nil {
		return nil, fmt.Errorf("unreferenced images: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan image url: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("image url rows: %w", err)
	}
	return out, nil
}

func validateProduct(in *SaveProductInput) error {
	if in == nil {
		return fmt.Errorf("product cannot be nil")
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if strings.TrimSpace(in.Slug) == "" {
		return fmt.Errorf("product slug cannot be empty")
	}
	if in.Price.IsNegative() {
		return fmt.Errorf("product price cannot be negative")
	}
	if in.CategoryID <= 0 {
		return fmt.Errorf("product category is required")
	}
	if len(in.Variants) == 0 {
		return fmt.Errorf("product needs at least one variant")
	}
	return nil
}
