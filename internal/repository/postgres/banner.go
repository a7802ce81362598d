package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/trendzone/storefront/internal/domain"
	"github.com/trendzone/storefront/pkg/database"
	apperrors "github.com/trendzone/storefront/pkg/errors"
)

// BannerRepository implements repository.BannerRepository using PostgreSQL.
type BannerRepository struct {
	pool database.DBTX
}

// NewBannerRepository creates a new PostgreSQL-backed banner repository.
func NewBannerRepository(pool database.DBTX) *BannerRepository {
	return &BannerRepository{pool: pool}
}

// Create inserts a new banner into the database.
func (r *BannerRepository) Create(ctx context.Context, b *domain.Banner) error {
	query := `
		INSERT INTO banners (id, title, subtitle, image_url, link_url, position, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		b.ID,
		b.Title,
		b.Subtitle,
		b.ImageURL,
		b.LinkURL,
		b.Position,
		b.Active,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}

	return nil
}

// ListActive returns active banners ordered by position.
func (r *BannerRepository) ListActive(ctx context.Context) ([]domain.Banner, error) {
	query := `
		SELECT id, title, subtitle, image_url, link_url, position, active, created_at, updated_at
		FROM banners
		WHERE active = TRUE
		ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active banners: %w", err)
	}
	defer rows.Close()

	return scanBanners(rows)
}

// List returns all banners ordered by position.
func (r *BannerRepository) List(ctx context.Context) ([]domain.Banner, error) {
	query := `
		SELECT id, title, subtitle, image_url, link_url, position, active, created_at, updated_at
		FROM banners
		ORDER BY position`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}
	defer rows.Close()

	return scanBanners(rows)
}

// Update modifies an existing banner.
func (r *BannerRepository) Update(ctx context.Context, b *domain.Banner) error {
	b.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE banners
		SET title = $1, subtitle = $2, image_url = $3, link_url = $4, position = $5, active = $6, updated_at = $7
		WHERE id = $8`

	ct, err := r.pool.Exec(ctx, query,
		b.Title,
		b.Subtitle,
		b.ImageURL,
		b.LinkURL,
		b.Position,
		b.Active,
		b.UpdatedAt,
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("update banner: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("banner", b.ID)
	}

	return nil
}

// Delete removes a banner from the database.
func (r *BannerRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM banners WHERE id = $1`

	ct, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("banner", id)
	}

	return nil
}

func scanBanners(rows pgx.Rows) ([]domain.Banner, error) {
	var banners []domain.Banner
	for rows.Next() {
		var b domain.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.Subtitle, &b.ImageURL, &b.LinkURL, &b.Position, &b.Active, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan banner: %w", err)
		}
		banners = append(banners, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate banners: %w", err)
	}

	return banners, nil
}
