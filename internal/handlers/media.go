package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gadamagado/api/internal/middleware"
	"gadamagado/api/internal/service"
)

func (h HandlerSet) UploadImage(c *gin.Context) {
	user, ok2 := middleware.CurrentUser(c)
	if !ok2 {
		fail(c, http.StatusUnauthorized, "Not authorized")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "Please attach a file")
		return
	}
	defer file.Close()

	result, err := h.uploads.Upload(c.Request.Context(), service.UploadInput{
		UserID: user.ID,
		File:   file,
		Header: header,
	})
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedImage) {
			fail(c, http.StatusBadRequest, "Unsupported image type")
			return
		}
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("image upload failed")
		fail(c, http.StatusInternalServerError, "Error uploading image")
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"url":       result.URL,
		"sizeBytes": result.SizeBytes,
	})
}
