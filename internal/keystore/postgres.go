package keystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres stores sealed secret values in the secrets table. There is no
// index by value: the store is addressed only by reference, so equality
// scans decrypt one row at a time.
type Postgres struct {
	pool   *pgxpool.Pool
	cipher *Cipher
}

func NewPostgres(pool *pgxpool.Pool, cipher *Cipher) *Postgres {
	return &Postgres{pool: pool, cipher: cipher}
}

func (p *Postgres) Save(ctx context.Context, value, ref string) error {
	sealed, err := p.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("seal secret: %w", err)
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO secrets (ref, value_enc) VALUES ($1, $2)
	`, ref, sealed)
	if err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, ref string) (string, error) {
	var sealed []byte
	err := p.pool.QueryRow(ctx, `SELECT value_enc FROM secrets WHERE ref = $1`, ref).Scan(&sealed)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select secret: %w", err)
	}

	value, err := p.cipher.Decrypt(sealed)
	if err != nil {
		return "", fmt.Errorf("unseal secret %s: %w", ref, err)
	}
	return value, nil
}

func (p *Postgres) Update(ctx context.Context, value, ref string) error {
	sealed, err := p.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("seal secret: %w", err)
	}

	tag, err := p.pool.Exec(ctx, `
		UPDATE secrets SET value_enc = $2, updated_at = now() WHERE ref = $1
	`, ref, sealed)
	if err != nil {
		return fmt.Errorf("update secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, ref string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM secrets WHERE ref = $1`, ref)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

func (p *Postgres) ListRefs(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT ref FROM secrets`)
	if err != nil {
		return nil, fmt.Errorf("list secret refs: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan secret ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (p *Postgres) Exists(ctx context.Context, ref string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM secrets WHERE ref = $1)`, ref).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check secret exists: %w", err)
	}
	return exists, nil
}
