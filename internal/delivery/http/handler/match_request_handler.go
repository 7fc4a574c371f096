package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/barter-backend/internal/domain"
	"github.com/gdugdh24/barter-backend/internal/usecase/matchrequest"
)

type MatchRequestHandler struct {
	matchRequestUseCase *matchrequest.MatchRequestUseCase
}

func NewMatchRequestHandler(matchRequestUseCase *matchrequest.MatchRequestUseCase) *MatchRequestHandler {
	return &MatchRequestHandler{
		matchRequestUseCase: matchRequestUseCase,
	}
}

// CreateMatchRequestRequest represents a new match request. Presence of the
// target and contact is checked by the lifecycle so errors keep their order.
type CreateMatchRequestRequest struct {
	InitiatorType string `json:"initiator_type" binding:"required"`
	OfferID       *int64 `json:"offer_id" binding:"omitempty,min=1"`
	RequestID     *int64 `json:"request_id" binding:"omitempty,min=1"`
	Message       string `json:"message" binding:"omitempty,max=1000"`
	ContactMode   string `json:"contact_mode" binding:"omitempty,contactmode"`
	ContactValue  string `json:"contact_value" binding:"omitempty,max=200"`
}

// AcceptMatchRequestRequest carries the accepter's optional preferred contact
type AcceptMatchRequestRequest struct {
	ContactMode  string `json:"contact_mode" binding:"omitempty,contactmode"`
	ContactValue string `json:"contact_value" binding:"omitempty,max=200"`
}

// Create handles POST /match-requests
// @Summary Send match request
// @Tags match-requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateMatchRequestRequest true "Match request"
// @Success 201 {object} domain.MatchRequest
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /match-requests [post]
func (h *MatchRequestHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateMatchRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	mr, err := h.matchRequestUseCase.Create(c.Request.Context(), matchrequest.CreateInput{
		CallerID:      userID,
		InitiatorType: domain.InitiatorType(req.InitiatorType),
		OfferID:       req.OfferID,
		RequestID:     req.RequestID,
		Message:       req.Message,
		Contact:       domain.Contact{Mode: req.ContactMode, Value: req.ContactValue},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mr)
}

// Get handles GET /match-requests/:id
func (h *MatchRequestHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	mr, err := h.matchRequestUseCase.Get(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mr)
}

// ListSent handles GET /match-requests/sent
func (h *MatchRequestHandler) ListSent(c *gin.Context) {
	h.list(c, h.matchRequestUseCase.ListSent)
}

// ListIncoming handles GET /match-requests/incoming
func (h *MatchRequestHandler) ListIncoming(c *gin.Context) {
	h.list(c, h.matchRequestUseCase.ListIncoming)
}

// ListHistory handles GET /match-requests/history
func (h *MatchRequestHandler) ListHistory(c *gin.Context) {
	h.list(c, h.matchRequestUseCase.ListHistory)
}

func (h *MatchRequestHandler) list(c *gin.Context, fetch func(ctx context.Context, profileID string) ([]*domain.MatchRequest, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	mrs, err := fetch(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": nonNil(mrs)})
}

// Accept handles POST /match-requests/:id/accept
// @Summary Accept match request
// @Description Accepting deactivates the referenced listings and reveals both parties' contacts
// @Tags match-requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AcceptMatchRequestRequest false "Preferred contact"
// @Success 200 {object} domain.MatchRequest
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /match-requests/{id}/accept [post]
func (h *MatchRequestHandler) Accept(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AcceptMatchRequestRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err)
			return
		}
	}

	mr, err := h.matchRequestUseCase.Accept(c.Request.Context(), id, userID, domain.Contact{
		Mode:  req.ContactMode,
		Value: req.ContactValue,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mr)
}

// Decline handles POST /match-requests/:id/decline
func (h *MatchRequestHandler) Decline(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	mr, err := h.matchRequestUseCase.Decline(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mr)
}

// Complete handles POST /match-requests/:id/complete
func (h *MatchRequestHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	mr, err := h.matchRequestUseCase.Complete(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, mr)
}

// Cancel handles DELETE /match-requests/:id. Only pending requests created
// by the caller can be withdrawn.
func (h *MatchRequestHandler) Cancel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	deleted, err := h.matchRequestUseCase.Cancel(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no pending match request of yours with this id",
			Code:  "match_request_not_found",
		})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "match request cancelled"})
}
