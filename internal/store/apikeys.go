package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/byok-vault-service/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

func (p *Postgres) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	err := p.pool.QueryRow(ctx, `
		INSERT INTO api_keys (name, keystore_ref, platform_id, is_valid, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`,
		key.Name, key.KeystoreRef, key.PlatformID, key.IsValid, key.Note,
	).Scan(&key.ID, &key.CreatedAt, &key.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert api_key: %w", err)
	}
	return nil
}

const apiKeyColumns = `id, name, keystore_ref, platform_id, is_valid, note, created_at, updated_at`

func (p *Postgres) GetAPIKeyByID(ctx context.Context, id uuid.UUID) (*model.APIKey, error) {
	return p.scanAPIKey(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
}

func (p *Postgres) GetAPIKeyByKeystoreRef(ctx context.Context, ref string) (*model.APIKey, error) {
	return p.scanAPIKey(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE keystore_ref = $1`, ref)
}

func (p *Postgres) ListAPIKeys(ctx context.Context, platformID *uuid.UUID, page, perPage int) ([]*model.APIKey, int, error) {
	where := ""
	countArgs := []interface{}{}
	if platformID != nil {
		where = " WHERE platform_id = $1"
		countArgs = append(countArgs, *platformID)
	}

	var total int
	err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_keys`+where, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count api_keys: %w", err)
	}

	offset := (page - 1) * perPage
	args := append(countArgs, perPage, offset)
	query := fmt.Sprintf(`
		SELECT `+apiKeyColumns+` FROM api_keys%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, where, len(countArgs)+1, len(countArgs)+2)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list api_keys: %w", err)
	}
	defer rows.Close()

	var keys []*model.APIKey
	for rows.Next() {
		key, err := scanAPIKeyFromRow(rows)
		if err != nil {
			return nil, 0, err
		}
		keys = append(keys, key)
	}
	return keys, total, rows.Err()
}

func (p *Postgres) UpdateAPIKey(ctx context.Context, id uuid.UUID, updates APIKeyUpdates) error {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	if updates.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *updates.Name)
		argIdx++
	}
	if updates.PlatformID != nil {
		setClauses = append(setClauses, fmt.Sprintf("platform_id = $%d", argIdx))
		args = append(args, *updates.PlatformID)
		argIdx++
	}
	if updates.IsValid != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_valid = $%d", argIdx))
		args = append(args, *updates.IsValid)
		argIdx++
	}
	if updates.Note != nil {
		setClauses = append(setClauses, fmt.Sprintf("note = NULLIF($%d, '')", argIdx))
		args = append(args, *updates.Note)
		argIdx++
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE api_keys SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argIdx)

	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update api_key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api_key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) scanAPIKey(ctx context.Context, query string, args ...interface{}) (*model.APIKey, error) {
	row := p.pool.QueryRow(ctx, query, args...)
	key, err := scanAPIKeyRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return key, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAPIKeyRow(row rowScanner) (*model.APIKey, error) {
	var key model.APIKey
	err := row.Scan(
		&key.ID, &key.Name, &key.KeystoreRef, &key.PlatformID,
		&key.IsValid, &key.Note, &key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func scanAPIKeyFromRow(rows pgx.Rows) (*model.APIKey, error) {
	key, err := scanAPIKeyRow(rows)
	if err != nil {
		return nil, fmt.Errorf("scan api_key: %w", err)
	}
	return key, nil
}
