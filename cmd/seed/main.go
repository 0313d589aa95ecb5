// Command seed loads development fixtures: an admin account, a standard
// user, and a handful of approved listings.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"gadamagado/api/internal/config"
	"gadamagado/api/internal/database"
	"gadamagado/api/internal/ids"
	"gadamagado/api/internal/log"
	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
	"gadamagado/api/internal/security"
)

type seedUser struct {
	FullName    string
	PhoneNumber string
	Email       string
	Password    string
	Region      string
	District    string
	Role        models.UserRole
}

var seedUsers = []seedUser{
	{
		FullName:    "Admin User",
		PhoneNumber: "+252611111111",
		Email:       "admin@gadamagado.com",
		Password:    "admin123",
		Region:      "Banaadir",
		District:    "Mogadishu",
		Role:        models.UserRoleAdmin,
	},
	{
		FullName:    "John Doe",
		PhoneNumber: "+252612345678",
		Email:       "john@example.com",
		Password:    "test123",
		Region:      "Banaadir",
		District:    "Mogadishu",
		Role:        models.UserRoleUser,
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	ads := repository.NewAdRepository(pool)

	ownerID := ""
	for _, su := range seedUsers {
		id, err := ensureUser(ctx, users, su)
		if err != nil {
			logger.Fatal().Err(err).Str("phone", su.PhoneNumber).Msg("seed user failed")
		}
		if ownerID == "" {
			ownerID = id
		}
		logger.Info().Str("phone", su.PhoneNumber).Str("role", string(su.Role)).Msg("seeded user")
	}

	if err := seedAds(ctx, ads, ownerID, logger); err != nil {
		logger.Fatal().Err(err).Msg("seed ads failed")
	}

	logger.Info().Msg("seed complete")
}

func ensureUser(ctx context.Context, users *repository.UserRepository, su seedUser) (string, error) {
	existing, err := users.FindByPhone(ctx, su.PhoneNumber)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return "", err
	}

	hash, err := security.HashPassword(su.Password)
	if err != nil {
		return "", err
	}

	email := su.Email
	user := models.User{
		ID:           ids.New(),
		FullName:     su.FullName,
		PhoneNumber:  su.PhoneNumber,
		Email:        &email,
		PasswordHash: hash,
		Role:         su.Role,
		IsActive:     true,
		Region:       su.Region,
		District:     su.District,
	}
	if err := users.Create(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

func seedAds(ctx context.Context, ads *repository.AdRepository, ownerID string, logger zerolog.Logger) error {
	samples := []models.Ad{
		{
			Title:       "Toyota Corolla 2015",
			Description: "Excellent condition, well maintained. Comes with new tires and full service history.",
			Price:       12000,
			Category:    "Vehicles",
			Subcategory: "Cars",
			District:    "Mogadishu",
			Contact:     "+252612345678",
			IsFeatured:  true,
		},
		{
			Title:       "3 Bedroom House for Rent",
			Description: "Beautiful 3 bedroom house in a safe neighborhood. Fully furnished with modern amenities.",
			Price:       800,
			Category:    "Property",
			Subcategory: "For Rent",
			District:    "Wadajir",
			Contact:     "+252612345679",
			IsFeatured:  true,
		},
		{
			Title:       "iPhone 13 Pro Max",
			Description: "Brand new iPhone 13 Pro Max 256GB. Still in sealed box with warranty.",
			Price:       1200,
			Category:    "Electronics",
			Subcategory: "Phones",
			District:    "Mogadishu",
			Contact:     "+252612345678",
		},
	}

	expiresAt := time.Now().AddDate(0, 0, 30)
	for _, ad := range samples {
		ad.ID = ids.New()
		ad.UserID = ownerID
		ad.Region = "Banaadir"
		ad.Plan = models.AdPlanFree
		ad.DurationDays = 30
		ad.ExpiresAt = &expiresAt
		ad.Status = models.AdStatusApproved
		if err := ads.Create(ctx, ad); err != nil {
			return err
		}
		logger.Info().Str("title", ad.Title).Msg("seeded ad")
	}
	return nil
}
