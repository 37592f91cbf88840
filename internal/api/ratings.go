package api

import (
	"net/http"

	"github.com/aadhilm732/TGTPETSUAE/internal/service"

	"github.com/gin-gonic/gin"
)

// addRating handles a post-delivery review submission
func (h *Handler) addRating(c *gin.Context) {
	var req service.AddRatingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing rating details"})
		return
	}

	rating, err := h.ratingService.AddRating(c.Request.Context(), userID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Rating added successfully",
		"rating":  rating,
	})
}

// listRatings handles listing the requester's ratings
func (h *Handler) listRatings(c *gin.Context) {
	ratings, err := h.ratingService.ListRatings(c.Request.Context(), userID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}
