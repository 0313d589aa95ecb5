package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"gadamagado/api/internal/auth"
	"gadamagado/api/internal/config"
	"gadamagado/api/internal/middleware"
	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
	"gadamagado/api/internal/security"
	"gadamagado/api/internal/service"
	"gadamagado/api/internal/session"
	"gadamagado/api/internal/storage"
)

// SessionStore is the session surface handlers touch directly; the
// resolver holds its own narrower view.
type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, id string) (string, error)
	Destroy(ctx context.Context, id string) error
}

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	db          *pgxpool.Pool
	cache       *redis.Client
	users       *repository.UserRepository
	ads         *repository.AdRepository
	sessions    SessionStore
	resolver    *auth.Resolver
	authService *service.AuthService
	uploads     *service.UploadService
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	adRepo := repository.NewAdRepository(db)
	sessionStore := session.NewStore(cache, cfg.Security.SessionTTL)

	verifier := auth.VerifierFunc(func(token string) (string, error) {
		claims, err := security.ParseToken(token, cfg.Security.TokenSecret)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	})

	resolver := auth.NewResolver(userRepo, sessionStore, verifier, auth.Options{
		StrictBearer: cfg.Security.StrictBearer,
	}, log)

	authService := service.NewAuthService(userRepo, sessionStore, cfg, log)
	uploadService := service.NewUploadService(store, cfg, log)

	return HandlerSet{
		log:         log,
		cfg:         cfg,
		db:          db,
		cache:       cache,
		users:       userRepo,
		ads:         adRepo,
		sessions:    sessionStore,
		resolver:    resolver,
		authService: authService,
		uploads:     uploadService,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	cookie := h.cfg.Security.SessionCookie
	require := middleware.Require(h.resolver, cookie, h.log)
	optional := middleware.Optional(h.resolver, cookie, h.log)

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/register", h.RegisterUser)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/status", h.AuthStatus)

		users := v1.Group("/users")
		users.Use(require)
		users.GET("/profile", h.Profile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/favorites", h.ListFavorites)
		users.POST("/favorites", h.AddFavorite)
		users.DELETE("/favorites/:adId", h.RemoveFavorite)
		users.GET("/recently-viewed", h.ListRecentlyViewed)
		users.POST("/recently-viewed", h.AddRecentlyViewed)

		ads := v1.Group("/ads")
		ads.GET("", optional, h.ListAds)
		ads.GET("/featured", h.ListFeaturedAds)
		ads.GET("/my-ads", require, h.ListMyAds)
		ads.GET("/:id", optional, h.GetAd)
		ads.POST("", require, h.CreateAd)
		ads.PUT("/:id", require, h.UpdateAd)
		ads.DELETE("/:id", require, h.DeleteAd)
		ads.PATCH("/:id/sold", require, h.ToggleAdSold)

		media := v1.Group("/media")
		media.Use(require)
		media.POST("/upload", h.UploadImage)

		admin := v1.Group("/admin")
		admin.Use(require, middleware.RequireRoles(models.UserRoleAdmin))
		admin.GET("/ads", h.AdminListAds)
		admin.PATCH("/ads/:id/status", h.AdminSetAdStatus)
	}
}
