package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/byok-vault-service/internal/model"
)

const platformColumns = `id, name, COALESCE(icon_data, ''), created_at`

func (p *Postgres) GetPlatformByID(ctx context.Context, id uuid.UUID) (*model.Platform, error) {
	return p.scanPlatform(ctx, `SELECT `+platformColumns+` FROM platforms WHERE id = $1`, id)
}

func (p *Postgres) GetPlatformByName(ctx context.Context, name string) (*model.Platform, error) {
	return p.scanPlatform(ctx, `SELECT `+platformColumns+` FROM platforms WHERE name = $1`, name)
}

func (p *Postgres) GetOrCreatePlatform(ctx context.Context, name, iconData string) (*model.Platform, error) {
	platform, err := p.GetPlatformByName(ctx, name)
	if err == nil {
		return platform, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Concurrent creation of the same name loses the race on the unique
	// index; ON CONFLICT re-reads the winner's row.
	var created model.Platform
	err = p.pool.QueryRow(ctx, `
		INSERT INTO platforms (name, icon_data)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING `+platformColumns+`
	`, name, iconData).Scan(&created.ID, &created.Name, &created.IconData, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert platform: %w", err)
	}
	return &created, nil
}

func (p *Postgres) ListPlatforms(ctx context.Context) ([]*model.PlatformSummary, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT p.id, p.name, COALESCE(p.icon_data, ''), p.created_at, COUNT(k.id)
		FROM platforms p
		LEFT JOIN api_keys k ON k.platform_id = p.id
		GROUP BY p.id, p.name, p.icon_data, p.created_at
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list platforms: %w", err)
	}
	defer rows.Close()

	var platforms []*model.PlatformSummary
	for rows.Next() {
		var s model.PlatformSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.IconData, &s.CreatedAt, &s.KeyCount); err != nil {
			return nil, fmt.Errorf("scan platform: %w", err)
		}
		platforms = append(platforms, &s)
	}
	return platforms, rows.Err()
}

func (p *Postgres) DeletePlatform(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM platforms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete platform: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteEmptyCustomPlatforms(ctx context.Context, protected []string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `
		DELETE FROM platforms
		WHERE id NOT IN (SELECT DISTINCT platform_id FROM api_keys)
		AND NOT (name = ANY($1))
	`, protected)
	if err != nil {
		return 0, fmt.Errorf("delete empty platforms: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) CountKeysForPlatform(ctx context.Context, platformID uuid.UUID) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_keys WHERE platform_id = $1`, platformID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count keys for platform: %w", err)
	}
	return count, nil
}

func (p *Postgres) scanPlatform(ctx context.Context, query string, args ...interface{}) (*model.Platform, error) {
	var platform model.Platform
	err := p.pool.QueryRow(ctx, query, args...).Scan(
		&platform.ID, &platform.Name, &platform.IconData, &platform.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select platform: %w", err)
	}
	return &platform, nil
}
