package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"atelier/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("content block not found")

type Store interface {
	List(ctx context.Context, section string) ([]Block, error)
	Get(ctx context.Context, section, key string) (*Block, error)
	Upsert(ctx context.Context, req UpsertBlockRequest) (*Block, error)
	Delete(ctx context.Context, section, key string) error
	SectionOrder(ctx context.Context) ([]string, error)
	SetSectionOrder(ctx context.Context, order []string) ([]string, error)
	WhatsAppNumber(ctx context.Context) (string, error)
}

type Repository struct {
	db dbx.Querier
}

func NewRepository(db *pgxpool.Pool) Store {
	return &Repository{db: db}
}

const blockColumns = `id, section, key, value, is_active, updated_at`

func scanBlock(row pgx.Row) (*Block, error) {
	var b Block
	err := row.Scan(&b.ID, &b.Section, &b.Key, &b.Value, &b.IsActive, &b.UpdatedAt)
	return &b, err
}

// List returns blocks of one section, or every block when section is empty.
func (r *Repository) List(ctx context.Context, section string) ([]Block, error) {
	query := `
		SELECT ` + blockColumns + `
		FROM content_blocks
		WHERE ($1 = '' OR section = $1)
		ORDER BY section ASC, key ASC`

	rows, err := r.db.Query(ctx, query, strings.TrimSpace(section))
	if err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	defer rows.Close()

	blocks := []Block{}
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("content rows: %w", err)
	}
	return blocks, nil
}

func (r *Repository) Get(ctx context.Context, section, key string) (*Block, error) {
	b, err := scanBlock(r.db.QueryRow(ctx,
		`SELECT `+blockColumns+` FROM content_blocks WHERE section = $1 AND key = $2`, section, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get content block: %w", err)
	}
	return b, nil
}

func (r *Repository) Upsert(ctx context.Context, req UpsertBlockRequest) (*Block, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	query := `
		INSERT INTO content_blocks (section, key, value, is_active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (section, key)
		DO UPDATE SET value = EXCLUDED.value, is_active = EXCLUDED.is_active, updated_at = NOW()
		RETURNING ` + blockColumns

	b, err := scanBlock(r.db.QueryRow(ctx, query,
		strings.TrimSpace(req.Section), strings.TrimSpace(req.Key), req.Value, active))
	if err != nil {
		return nil, fmt.Errorf("upsert content block: %w", err)
	}
	return b, nil
}

func (r *Repository) Delete(ctx context.Context, section, key string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM content_blocks WHERE section = $1 AND key = $2`, section, key)
	if err != nil {
		return fmt.Errorf("delete content block: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SectionOrder reads the reserved order row, falling back to DefaultSectionOrder.
func (r *Repository) SectionOrder(ctx context.Context) ([]string, error) {
	b, err := r.Get(ctx, ConfigSection, SectionOrderKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return append([]string(nil), DefaultSectionOrder...), nil
		}
		return nil, err
	}
	return ParseSectionOrder(b.Value), nil
}

func (r *Repository) SetSectionOrder(ctx context.Context, order []string) ([]string, error) {
	clean, err := NormalizeSectionOrder(order)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode section order: %w", err)
	}
	if _, err := r.Upsert(ctx, UpsertBlockRequest{
		Section: ConfigSection,
		Key:     SectionOrderKey,
		Value:   string(raw),
	}); err != nil {
		return nil, err
	}
	return clean, nil
}

// WhatsAppNumber returns the stored override or "" when none is set.
func (r *Repository) WhatsAppNumber(ctx context.Context) (string, error) {
	b, err := r.Get(ctx, SettingsSection, WhatsAppNumberKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	if !b.IsActive {
		return "", nil
	}
	return strings.TrimSpace(b.Value), nil
}
