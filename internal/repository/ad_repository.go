package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gadamagado/api/internal/models"
)

var ErrAdNotFound = errors.New("ad not found")

type AdRepository struct {
	pool *pgxpool.Pool
}

func NewAdRepository(pool *pgxpool.Pool) *AdRepository {
	return &AdRepository{pool: pool}
}

const adColumns = `id, user_id, title, description, price, category, subcategory, region, district, contact,
	images, plan, duration_days, coverage_regions, total_cost, expires_at, is_featured, is_sold,
	status, rejection_reason, views, created_at, updated_at`

func scanAd(row pgx.Row) (models.Ad, error) {
	var ad models.Ad
	if err := row.Scan(
		&ad.ID,
		&ad.UserID,
		&ad.Title,
		&ad.Description,
		&ad.Price,
		&ad.Category,
		&ad.Subcategory,
		&ad.Region,
		&ad.District,
		&ad.Contact,
		&ad.Images,
		&ad.Plan,
		&ad.DurationDays,
		&ad.CoverageRegions,
		&ad.TotalCost,
		&ad.ExpiresAt,
		&ad.IsFeatured,
		&ad.IsSold,
		&ad.Status,
		&ad.RejectionReason,
		&ad.Views,
		&ad.CreatedAt,
		&ad.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ad{}, ErrAdNotFound
		}
		return models.Ad{}, err
	}
	return ad, nil
}

func (r *AdRepository) Create(ctx context.Context, ad models.Ad) error {
	const query = `
		INSERT INTO ads (
			id, user_id, title, description, price, category, subcategory, region, district, contact,
			images, plan, duration_days, coverage_regions, total_cost, expires_at, is_featured, is_sold,
			status, rejection_reason, views, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, 0, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		ad.ID,
		ad.UserID,
		ad.Title,
		ad.Description,
		ad.Price,
		ad.Category,
		ad.Subcategory,
		ad.Region,
		ad.District,
		ad.Contact,
		ad.Images,
		ad.Plan,
		ad.DurationDays,
		ad.CoverageRegions,
		ad.TotalCost,
		ad.ExpiresAt,
		ad.IsFeatured,
		ad.IsSold,
		ad.Status,
		ad.RejectionReason,
	)
	return err
}

func (r *AdRepository) GetByID(ctx context.Context, id string) (models.Ad, error) {
	const query = `SELECT ` + adColumns + ` FROM ads WHERE id = $1`
	return scanAd(r.pool.QueryRow(ctx, query, id))
}

// IncrementViews bumps the public view counter; a missing ad is ignored.
func (r *AdRepository) IncrementViews(ctx context.Context, id string) error {
	const query = `UPDATE ads SET views = views + 1 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

// List returns approved, unsold ads newest-first, narrowed by filter.
func (r *AdRepository) List(ctx context.Context, filter models.AdFilter) ([]models.Ad, error) {
	conditions := []string{"status = 'approved'", "is_sold = FALSE"}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if filter.Region != "" {
		conditions = append(conditions, "region = "+arg(filter.Region))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.Search != "" {
		conditions = append(conditions, "(title ILIKE "+arg("%"+filter.Search+"%")+" OR description ILIKE "+arg("%"+filter.Search+"%")+")")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `SELECT ` + adColumns + ` FROM ads WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY created_at DESC LIMIT ` + arg(limit)

	return r.listAds(ctx, query, args...)
}

func (r *AdRepository) ListFeatured(ctx context.Context) ([]models.Ad, error) {
	const query = `
		SELECT ` + adColumns + ` FROM ads
		WHERE status = 'approved' AND is_featured = TRUE AND is_sold = FALSE
		ORDER BY created_at DESC
		LIMIT 10
	`
	return r.listAds(ctx, query)
}

func (r *AdRepository) ListByOwner(ctx context.Context, userID string) ([]models.Ad, error) {
	const query = `SELECT ` + adColumns + ` FROM ads WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listAds(ctx, query, userID)
}

func (r *AdRepository) ListByStatus(ctx context.Context, status models.AdStatus, limit int, offset int) ([]models.Ad, error) {
	const query = `
		SELECT ` + adColumns + ` FROM ads
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listAds(ctx, query, status, limit, offset)
}

func (r *AdRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Ad, error) {
	if len(ids) == 0 {
		return []models.Ad{}, nil
	}
	const query = `SELECT ` + adColumns + ` FROM ads WHERE id = ANY($1)`
	ads, err := r.listAds(ctx, query, ids)
	if err != nil {
		return nil, err
	}

	// Preserve the caller's ordering (favorites and viewing history are
	// position-sensitive).
	byID := make(map[string]models.Ad, len(ads))
	for _, ad := range ads {
		byID[ad.ID] = ad
	}
	ordered := make([]models.Ad, 0, len(ads))
	for _, id := range ids {
		if ad, ok := byID[id]; ok {
			ordered = append(ordered, ad)
		}
	}
	return ordered, nil
}

type AdUpdate struct {
	Title       string
	Description string
	Price       float64
	Category    string
	Subcategory string
	Region      string
	District    string
	Contact     string
	Images      []string
}

func (r *AdRepository) Update(ctx context.Context, id string, update AdUpdate) (models.Ad, error) {
	const query = `
		UPDATE ads
		SET title = $2, description = $3, price = $4, category = $5, subcategory = $6,
		    region = $7, district = $8, contact = $9, images = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + adColumns

	return scanAd(r.pool.QueryRow(ctx, query, id,
		update.Title,
		update.Description,
		update.Price,
		update.Category,
		update.Subcategory,
		update.Region,
		update.District,
		update.Contact,
		update.Images,
	))
}

func (r *AdRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM ads WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAdNotFound
	}
	return nil
}

func (r *AdRepository) ToggleSold(ctx context.Context, id string) (models.Ad, error) {
	const query = `
		UPDATE ads SET is_sold = NOT is_sold, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + adColumns

	return scanAd(r.pool.QueryRow(ctx, query, id))
}

func (r *AdRepository) SetStatus(ctx context.Context, id string, status models.AdStatus, rejectionReason *string) (models.Ad, error) {
	const query = `
		UPDATE ads SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + adColumns

	return scanAd(r.pool.QueryRow(ctx, query, id, status, rejectionReason))
}

// ExpireOutdated marks approved ads past their paid duration as sold-out of
// rotation by flipping is_sold; returns how many rows changed.
func (r *AdRepository) ExpireOutdated(ctx context.Context) (int64, error) {
	const query = `
		UPDATE ads
		SET is_sold = TRUE, updated_at = NOW()
		WHERE status = 'approved' AND is_sold = FALSE
		  AND expires_at IS NOT NULL AND expires_at < NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *AdRepository) listAds(ctx context.Context, query string, args ...any) ([]models.Ad, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ads := make([]models.Ad, 0)
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}
	return ads, rows.Err()
}
