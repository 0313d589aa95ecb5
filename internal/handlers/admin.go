package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
)

// AdminListAds pages through the moderation queue. Status defaults to
// pending, the usual working set.
func (h HandlerSet) AdminListAds(c *gin.Context) {
	status := models.AdStatus(c.DefaultQuery("status", string(models.AdStatusPending)))
	switch status {
	case models.AdStatusPending, models.AdStatusApproved, models.AdStatusRejected:
	default:
		fail(c, http.StatusBadRequest, "Invalid status")
		return
	}

	limit := 50
	offset := 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	ads, err := h.ads.ListByStatus(c.Request.Context(), status, limit, offset)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error fetching ads")
		return
	}

	ok(c, http.StatusOK, gin.H{
		"count": len(ads),
		"ads":   toAdResponses(ads),
	})
}

type setAdStatusRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
}

func (h HandlerSet) AdminSetAdStatus(c *gin.Context) {
	var req setAdStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := models.AdStatus(req.Status)
	if status != models.AdStatusApproved && status != models.AdStatusRejected {
		fail(c, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}

	var reason *string
	if status == models.AdStatusRejected {
		if req.RejectionReason == "" {
			fail(c, http.StatusBadRequest, "Rejection reason is required")
			return
		}
		reason = &req.RejectionReason
	}

	ad, err := h.ads.SetStatus(c.Request.Context(), c.Param("id"), status, reason)
	if err != nil {
		if errors.Is(err, repository.ErrAdNotFound) {
			fail(c, http.StatusNotFound, "Ad not found")
			return
		}
		fail(c, http.StatusInternalServerError, "Error updating ad")
		return
	}

	ok(c, http.StatusOK, gin.H{"ad": toAdResponse(ad)})
}
