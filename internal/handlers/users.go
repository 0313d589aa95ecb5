package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gadamagado/api/internal/middleware"
	"gadamagado/api/internal/repository"
)

func (h HandlerSet) Profile(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ok(c, http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type updateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Region   string `json:"region"`
	District string `json:"district"`
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := repository.ProfileUpdate{
		FullName: req.FullName,
		Region:   req.Region,
		District: req.District,
	}
	if req.Email != "" {
		update.Email = &req.Email
	}
	if update.FullName == "" {
		update.FullName = user.FullName
	}
	if update.Region == "" {
		update.Region = user.Region
	}
	if update.District == "" {
		update.District = user.District
	}

	updated, err := h.users.UpdateProfile(c.Request.Context(), user.ID, update)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("profile update failed")
		fail(c, http.StatusInternalServerError, "Error updating profile")
		return
	}

	ok(c, http.StatusOK, gin.H{"user": toUserResponse(updated)})
}

func (h HandlerSet) ListFavorites(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ids, err := h.users.ListFavorites(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching favorites")
		return
	}

	ads, err := h.ads.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching favorites")
		return
	}

	ok(c, http.StatusOK, gin.H{"favorites": toAdResponses(ads)})
}

type favoriteRequest struct {
	AdID string `json:"adId"`
}

func (h HandlerSet) AddFavorite(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AdID == "" {
		fail(c, http.StatusBadRequest, "adId is required")
		return
	}

	if _, err := h.ads.GetByID(c.Request.Context(), req.AdID); err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			fail(c, http.StatusNotFound, "Ad not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Error adding favorite")
		return
	}

	if err := h.users.AddFavorite(c.Request.Context(), user.ID, req.AdID); err != nil {
		fail(c, http.StatusInternalServerError, "Error adding favorite")
		return
	}

	ids, err := h.users.ListFavorites(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error adding favorite")
		return
	}

	ok(c, http.StatusOK, gin.H{"favorites": ids})
}

func (h HandlerSet) RemoveFavorite(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	adID := c.Param("adId")
	if err := h.users.RemoveFavorite(c.Request.Context(), user.ID, adID); err != nil {
		fail(c, http.StatusInternalServerError, "Error removing favorite")
		return
	}

	ids, err := h.users.ListFavorites(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error removing favorite")
		return
	}

	ok(c, http.StatusOK, gin.H{"favorites": ids})
}

func (h HandlerSet) ListRecentlyViewed(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	ids, err := h.users.ListRecentlyViewed(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching recently viewed")
		return
	}

	ads, err := h.ads.ListByIDs(c.Request.Context(), ids)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching recently viewed")
		return
	}

	ok(c, http.StatusOK, gin.H{"recentlyViewed": toAdResponses(ads)})
}

func (h HandlerSet) AddRecentlyViewed(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	var req favoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AdID == "" {
		fail(c, http.StatusBadRequest, "adId is required")
		return
	}

	if err := h.users.PushRecentlyViewed(c.Request.Context(), user.ID, req.AdID); err != nil {
		fail(c, http.StatusInternalServerError, "Error adding recently viewed")
		return
	}

	ids, err := h.users.ListRecentlyViewed(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error adding recently viewed")
		return
	}

	ok(c, http.StatusOK, gin.H{"recentlyViewed": ids})
}
