package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/usecase/listing"
)

// ListingHandler serves /offers and /requests; kind selects the table.
type ListingHandler struct {
	kind           domain.ListingKind
	listingUseCase *listing.ListingUseCase
}

func NewListingHandler(kind domain.ListingKind, listingUseCase *listing.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		kind:           kind,
		listingUseCase: listingUseCase,
	}
}

// SetActiveRequest toggles listing visibility
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// Create handles POST /offers and POST /requests
// @Summary Create listing
// @Tags listings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body listing.CreateListingRequest true "Listing data"
// @Success 201 {object} domain.Listing
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
func (h *ListingHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req listing.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	created, err := h.listingUseCase.Create(c.Request.Context(), h.kind, userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListMine handles GET /offers/mine and GET /requests/mine
func (h *ListingHandler) ListMine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	listings, err := h.listingUseCase.ListMine(c.Request.Context(), h.kind, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": nonNil(listings)})
}

// Feed handles GET /feed/offers and GET /feed/requests
func (h *ListingHandler) Feed(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.listingUseCase.Feed(c.Request.Context(), h.kind, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": nonNil(items)})
}

// SetActive handles PATCH /offers/:id/active
func (h *ListingHandler) SetActive(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	updated, err := h.listingUseCase.SetActive(c.Request.Context(), h.kind, id, userID, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /offers/:id. Match requests on the listing go with it.
func (h *ListingHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.listingUseCase.Delete(c.Request.Context(), h.kind, id, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: string(h.kind) + " deleted"})
}

// Report handles POST /offers/:id/report
func (h *ListingHandler) Report(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req listing.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if _, err := h.listingUseCase.Report(c.Request.Context(), h.kind, id, userID, &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "report submitted"})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
