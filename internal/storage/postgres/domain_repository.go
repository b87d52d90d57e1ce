package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pixglobal/registry/internal/domain"
)

// DomainRepository reads the registry's single source of truth for
// availability: the domains table and its unique fqdn constraint.
type DomainRepository struct {
	pool *pgxpool.Pool
}

func NewDomainRepository(pool *pgxpool.Pool) *DomainRepository {
	return &DomainRepository{pool: pool}
}

func (r *DomainRepository) Exists(ctx context.Context, fqdn string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM domains WHERE fqdn = $1)`

	var exists bool
	if err := r.queryRow(ctx, query, fqdn).Scan(&exists); err != nil {
		return false, fmt.Errorf("domain exists: %w", err)
	}
	return exists, nil
}

// FilterRegistered returns which of the given fqdns already have a row,
// in one query.
func (r *DomainRepository) FilterRegistered(ctx context.Context, fqdns []string) (map[string]bool, error) {
	const query = `SELECT fqdn FROM domains WHERE fqdn = ANY($1)`

	rows, err := r.query(ctx, query, fqdns)
	if err != nil {
		return nil, fmt.Errorf("filter registered: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var fqdn string
		if err := rows.Scan(&fqdn); err != nil {
			return nil, fmt.Errorf("scan fqdn: %w", err)
		}
		out[fqdn] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("filter registered rows: %w", err)
	}
	return out, nil
}

func (r *DomainRepository) GetByFQDN(ctx context.Context, fqdn string) (domain.Domain, error) {
	const query = `
SELECT id, fqdn, name, class, owner_id, status, profile, nft, created_at
FROM domains
WHERE fqdn = $1`

	var (
		d           domain.Domain
		class       string
		status      string
		profileJSON []byte
		nftJSON     []byte
	)
	err := r.queryRow(ctx, query, fqdn).
		Scan(&d.ID, &d.FQDN, &d.Name, &class, &d.OwnerID, &status, &profileJSON, &nftJSON, &d.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Domain{}, domain.ErrDomainNotFound
		}
		return domain.Domain{}, fmt.Errorf("get domain: %w", err)
	}
	d.Class = domain.Class(class)
	d.Status = domain.DomainStatus(status)

	if len(profileJSON) > 0 {
		var p domain.Profile
		if err := json.Unmarshal(profileJSON, &p); err != nil {
			return domain.Domain{}, fmt.Errorf("decode profile for %s: %w", fqdn, err)
		}
		d.Profile = &p
	}
	if len(nftJSON) > 0 {
		var n domain.NFTLink
		if err := json.Unmarshal(nftJSON, &n); err != nil {
			return domain.Domain{}, fmt.Errorf("decode nft link for %s: %w", fqdn, err)
		}
		d.NFT = &n
	}
	return d, nil
}

func (r *DomainRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *DomainRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
