package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/barter-backend/internal/usecase/candidate"
)

type CandidateHandler struct {
	candidateUseCase *candidate.CandidateUseCase
}

func NewCandidateHandler(candidateUseCase *candidate.CandidateUseCase) *CandidateHandler {
	return &CandidateHandler{
		candidateUseCase: candidateUseCase,
	}
}

// GetCandidates handles GET /matches/candidates
// @Summary Suggested matches
// @Description Ranked offer/request pairs involving my listings, split by which of my listings they serve
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {object} candidate.Groups
// @Router /matches/candidates [get]
func (h *CandidateHandler) GetCandidates(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	groups, err := h.candidateUseCase.FindGrouped(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	groups.ForMyRequests = nonNil(groups.ForMyRequests)
	groups.ForMyOffers = nonNil(groups.ForMyOffers)
	c.JSON(http.StatusOK, groups)
}
