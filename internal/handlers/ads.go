package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gadamagado/api/internal/ids"
	"gadamagado/api/internal/middleware"
	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
)

type adResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Price           float64    `json:"price"`
	Category        string     `json:"category"`
	Subcategory     string     `json:"subcategory"`
	Region          string     `json:"region"`
	District        string     `json:"district"`
	Contact         string     `json:"contact"`
	Images          []string   `json:"images"`
	Plan            string     `json:"adPlan"`
	DurationDays    int        `json:"duration"`
	CoverageRegions []string   `json:"coverageRegions"`
	TotalCost       float64    `json:"totalCost"`
	ExpiresAt       *time.Time `json:"expiryDate"`
	IsFeatured      bool       `json:"isFeatured"`
	IsSold          bool       `json:"isSold"`
	Status          string     `json:"status"`
	RejectionReason *string    `json:"rejectionReason,omitempty"`
	Views           int64      `json:"views"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toAdResponse(ad models.Ad) adResponse {
	return adResponse{
		ID:              ad.ID,
		UserID:          ad.UserID,
		Title:           ad.Title,
		Description:     ad.Description,
		Price:           ad.Price,
		Category:        ad.Category,
		Subcategory:     ad.Subcategory,
		Region:          ad.Region,
		District:        ad.District,
		Contact:         ad.Contact,
		Images:          ad.Images,
		Plan:            string(ad.Plan),
		DurationDays:    ad.DurationDays,
		CoverageRegions: ad.CoverageRegions,
		TotalCost:       ad.TotalCost,
		ExpiresAt:       ad.ExpiresAt,
		IsFeatured:      ad.IsFeatured,
		IsSold:          ad.IsSold,
		Status:          string(ad.Status),
		RejectionReason: ad.RejectionReason,
		Views:           ad.Views,
		CreatedAt:       ad.CreatedAt,
		UpdatedAt:       ad.UpdatedAt,
	}
}

func toAdResponses(ads []models.Ad) []adResponse {
	out := make([]adResponse, 0, len(ads))
	for _, ad := range ads {
		out = append(out, toAdResponse(ad))
	}
	return out
}

func (h HandlerSet) ListAds(c *gin.Context) {
	filter := models.AdFilter{
		Category: c.Query("category"),
		Region:   c.Query("region"),
		Search:   c.Query("search"),
	}
	if raw := c.Query("minPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = &v
		}
	}
	if raw := c.Query("maxPrice"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = &v
		}
	}

	ads, err := h.ads.List(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("list ads failed")
		fail(c, http.StatusInternalServerError, "Error fetching ads")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"count": len(ads),
		"ads":   toAdResponses(ads),
	})
}

func (h HandlerSet) ListFeaturedAds(c *gin.Context) {
	ads, err := h.ads.ListFeatured(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching featured ads")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"count": len(ads),
		"ads":   toAdResponses(ads),
	})
}

func (h HandlerSet) ListMyAds(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ads, err := h.ads.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching your ads")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"count": len(ads),
		"ads":   toAdResponses(ads),
	})
}

func (h HandlerSet) GetAd(c *gin.Context) {
	ad, err := h.ads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			fail(c, http.StatusNotFound, "Ad not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Error fetching ad")
		return
	}

	if err := h.ads.IncrementViews(c.Request.Context(), ad.ID); err != nil {
		h.log.Warn().Err(err).Str("ad_id", ad.ID).Msg("view increment failed")
	} else {
		ad.Views++
	}

	// Personalization: record the view when the request carries a
	// resolvable credential.
	if user, ok2 := middleware.CurrentUser(c); ok2 {
		if err := h.users.PushRecentlyViewed(c.Request.Context(), user.ID, ad.ID); err != nil {
			h.log.Warn().Err(err).Str("user_id", user.ID).Msg("recently viewed push failed")
		}
	}

	ok(c, http.StatusOK, gin.H{"ad": toAdResponse(ad)})
}

type createAdRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price"`
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	Region          string   `json:"region"`
	District        string   `json:"district"`
	Contact         string   `json:"contact"`
	Images          []string `json:"images"`
	Plan            string   `json:"adPlan"`
	DurationDays    int      `json:"duration"`
	CoverageRegions []string `json:"coverageRegions"`
	TotalCost       float64  `json:"totalCost"`
	IsFeatured      bool     `json:"isFeatured"`
}

func (h HandlerSet) CreateAd(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req createAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Description == "" || req.Price == nil || *req.Price < 0 ||
		req.Category == "" || req.Region == "" || req.District == "" || req.Contact == "" {
		fail(c, http.StatusBadRequest, "Please provide all required fields")
		return
	}

	plan := models.AdPlan(req.Plan)
	switch plan {
	case models.AdPlanFree, models.AdPlanState, models.AdPlanTwoStates, models.AdPlanPremium:
	case "":
		plan = models.AdPlanFree
	default:
		fail(c, http.StatusBadRequest, "Invalid ad plan")
		return
	}

	duration := req.DurationDays
	if duration <= 0 {
		duration = 3
	}
	expiresAt := time.Now().AddDate(0, 0, duration)

	ad := models.Ad{
		ID:              ids.New(),
		UserID:          user.ID,
		Title:           req.Title,
		Description:     req.Description,
		Price:           *req.Price,
		Category:        req.Category,
		Subcategory:     req.Subcategory,
		Region:          req.Region,
		District:        req.District,
		Contact:         req.Contact,
		Images:          req.Images,
		Plan:            plan,
		DurationDays:    duration,
		CoverageRegions: req.CoverageRegions,
		TotalCost:       req.TotalCost,
		ExpiresAt:       &expiresAt,
		IsFeatured:      req.IsFeatured,
		Status:          models.AdStatusApproved,
	}

	if err := h.ads.Create(c.Request.Context(), ad); err != nil {
		h.log.Error().Err(err).Msg("create ad failed")
		fail(c, http.StatusInternalServerError, "Error creating ad")
		return
	}

	created, err := h.ads.GetByID(c.Request.Context(), ad.ID)
	if err != nil {
		created = ad
	}

	ok(c, http.StatusCreated, gin.H{"ad": toAdResponse(created)})
}

// canModify enforces the ownership rule shared by update and delete:
// the owner may act, and so may an administrator.
func canModify(user models.User, ad models.Ad) bool {
	return ad.UserID == user.ID || user.Role == models.UserRoleAdmin
}

func (h HandlerSet) UpdateAd(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ad, err := h.ads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			fail(c, http.StatusNotFound, "Ad not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Error updating ad")
		return
	}

	if !canModify(user, ad) {
		fail(c, http.StatusForbidden, "Not authorized to update this ad")
		return
	}

	var req createAdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.AdUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       ad.Price,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Region:      req.Region,
		District:    req.District,
		Contact:     req.Contact,
		Images:      req.Images,
	}
	if req.Price != nil {
		update.Price = *req.Price
	}
	if update.Title == "" {
		update.Title = ad.Title
	}
	if update.Description == "" {
		update.Description = ad.Description
	}
	if update.Category == "" {
		update.Category = ad.Category
	}
	if update.Region == "" {
		update.Region = ad.Region
	}
	if update.District == "" {
		update.District = ad.District
	}
	if update.Contact == "" {
		update.Contact = ad.Contact
	}
	if update.Images == nil {
		update.Images = ad.Images
	}

	updated, err := h.ads.Update(c.Request.Context(), ad.ID, update)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error updating ad")
		return
	}

	ok(c, http.StatusOK, gin.H{"ad": toAdResponse(updated)})
}

func (h HandlerSet) DeleteAd(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ad, err := h.ads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			fail(c, http.StatusNotFound, "Ad not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Error deleting ad")
		return
	}

	if !canModify(user, ad) {
		fail(c, http.StatusForbidden, "Not authorized to delete this ad")
		return
	}

	if err := h.ads.Delete(c.Request.Context(), ad.ID); err != nil {
		fail(c, http.StatusInternalServerError, "Error deleting ad")
		return
	}

	ok(c, http.StatusOK, gin.H{"message": "Ad deleted successfully"})
}

func (h HandlerSet) ToggleAdSold(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ad, err := h.ads.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			fail(c, http.StatusNotFound, "Ad not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Error updating ad")
		return
	}

	// Sold toggling is owner-only, admins don't get a pass here.
	if ad.UserID != user.ID {
		fail(c, http.StatusForbidden, "Not authorized")
		return
	}

	updated, err := h.ads.ToggleSold(c.Request.Context(), ad.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error updating ad")
		return
	}

	ok(c, http.StatusOK, gin.H{"ad": toAdResponse(updated)})
}
