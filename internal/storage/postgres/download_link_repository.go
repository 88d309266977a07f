package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nuxtz/storefront/internal/domain"
)

type DownloadLinkRepository struct {
	q querier
}

func NewDownloadLinkRepository(pool *pgxpool.Pool) *DownloadLinkRepository {
	return &DownloadLinkRepository{q: querier{pool: pool}}
}

func (r *DownloadLinkRepository) CreateLink(ctx context.Context, l domain.DownloadLink) error {
	const stmt = `
INSERT INTO download_links (id, customer_id, token, product_name, expires_at, is_used, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.q.exec(ctx, stmt, l.ID, l.CustomerID, l.Token, l.ProductName, l.ExpiresAt, l.IsUsed, l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenCollision
		}
		if isInvalidUUID(err) {
			return domain.ErrCustomerNotFound
		}
		return fmt.Errorf("create download link: %w", err)
	}
	return nil
}

func (r *DownloadLinkRepository) GetLinkByToken(ctx context.Context, token string) (domain.DownloadLink, error) {
	const query = `
SELECT id, customer_id, token, product_name, expires_at, is_used, created_at
FROM download_links
WHERE token = $1`

	var l domain.DownloadLink
	err := r.q.queryRow(ctx, query, token).
		Scan(&l.ID, &l.CustomerID, &l.Token, &l.ProductName, &l.ExpiresAt, &l.IsUsed, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DownloadLink{}, domain.ErrLinkNotFound
		}
		return domain.DownloadLink{}, fmt.Errorf("get download link: %w", err)
	}
	return l, nil
}

func (r *DownloadLinkRepository) MarkLinkUsed(ctx context.Context, id string) error {
	const stmt = `UPDATE download_links SET is_used = TRUE WHERE id = $1`

	tag, err := r.q.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrLinkNotFound
		}
		return fmt.Errorf("mark download link used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

// ClaimLink flips is_used only if it is still false, so at most one caller
// sees true for a given link.
func (r *DownloadLinkRepository) ClaimLink(ctx context.Context, id string) (bool, error) {
	const stmt = `UPDATE download_links SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`

	tag, err := r.q.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrLinkNotFound
		}
		return false, fmt.Errorf("claim download link: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
