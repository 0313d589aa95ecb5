package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gadamagado/api/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const recentlyViewedCap = 20

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, full_name, phone_number, email, password_hash, role, is_active, region, district, created_at, updated_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.PhoneNumber,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.Region,
		&user.District,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, full_name, phone_number, email, password_hash, role, is_active, region, district, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FullName,
		user.PhoneNumber,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.Region,
		user.District,
	)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return scanUser(r.pool.QueryRow(ctx, query, phone))
}

type ProfileUpdate struct {
	FullName string
	Email    *string
	Region   string
	District string
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (models.User, error) {
	const query = `
		UPDATE users
		SET full_name = $2, email = $3, region = $4, district = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, update.FullName, update.Email, update.Region, update.District))
}

func (r *UserRepository) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT ad_id FROM user_favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.listAdIDs(ctx, query, userID)
}

func (r *UserRepository) AddFavorite(ctx context.Context, userID string, adID string) error {
	const query = `
		INSERT INTO user_favorites (user_id, ad_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, ad_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, adID)
	return err
}

func (r *UserRepository) RemoveFavorite(ctx context.Context, userID string, adID string) error {
	const query = `DELETE FROM user_favorites WHERE user_id = $1 AND ad_id = $2`
	_, err := r.pool.Exec(ctx, query, userID, adID)
	return err
}

func (r *UserRepository) ListRecentlyViewed(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT ad_id FROM user_recently_viewed
		WHERE user_id = $1
		ORDER BY viewed_at DESC
		LIMIT 20
	`
	return r.listAdIDs(ctx, query, userID)
}

// PushRecentlyViewed moves adID to the front of the user's viewing queue.
// The queue holds no duplicates and is trimmed to 20 entries.
func (r *UserRepository) PushRecentlyViewed(ctx context.Context, userID string, adID string) error {
	const upsert = `
		INSERT INTO user_recently_viewed (user_id, ad_id, viewed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, ad_id) DO UPDATE SET viewed_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, upsert, userID, adID); err != nil {
		return err
	}

	const trim = `
		DELETE FROM user_recently_viewed
		WHERE user_id = $1 AND ad_id NOT IN (
			SELECT ad_id FROM user_recently_viewed
			WHERE user_id = $1
			ORDER BY viewed_at DESC
			LIMIT $2
		)
	`
	_, err := r.pool.Exec(ctx, trim, userID, recentlyViewedCap)
	return err
}

func (r *UserRepository) listAdIDs(ctx context.Context, query string, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
