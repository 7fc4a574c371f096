package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gdugdh24/barter-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/barter-backend/internal/domain"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

type errorMapping struct {
	status int
	code   string
}

var errorTable = []struct {
	err error
	errorMapping
}{
	{domain.ErrProfileNotFound, errorMapping{http.StatusNotFound, "profile_not_found"}},
	{domain.ErrProfileAlreadyExists, errorMapping{http.StatusConflict, "profile_exists"}},
	{domain.ErrListingNotFound, errorMapping{http.StatusNotFound, "listing_not_found"}},
	{domain.ErrInvalidListingKind, errorMapping{http.StatusBadRequest, "invalid_listing_kind"}},
	{domain.ErrCannotReportOwn, errorMapping{http.StatusForbidden, "cannot_report_own"}},
	{domain.ErrMatchRequestNotFound, errorMapping{http.StatusNotFound, "match_request_not_found"}},
	{domain.ErrRateLimitExceeded, errorMapping{http.StatusTooManyRequests, "rate_limit_exceeded"}},
	{domain.ErrInvalidInitiatorType, errorMapping{http.StatusBadRequest, "invalid_initiator_type"}},
	{domain.ErrInvalidTarget, errorMapping{http.StatusBadRequest, "invalid_target"}},
	{domain.ErrMissingContactInfo, errorMapping{http.StatusBadRequest, "missing_contact_info"}},
	{domain.ErrTargetNotFound, errorMapping{http.StatusNotFound, "target_not_found"}},
	{domain.ErrTargetInactive, errorMapping{http.StatusConflict, "target_inactive"}},
	{domain.ErrSelfMatchForbidden, errorMapping{http.StatusForbidden, "self_match_forbidden"}},
	{domain.ErrDuplicateMatchRequest, errorMapping{http.StatusConflict, "duplicate_match_request"}},
	{domain.ErrAlreadyResolved, errorMapping{http.StatusConflict, "already_resolved"}},
	{domain.ErrNotAuthorized, errorMapping{http.StatusForbidden, "not_authorized"}},
	{domain.ErrTargetDeactivated, errorMapping{http.StatusConflict, "target_deactivated"}},
	{domain.ErrNotAccepted, errorMapping{http.StatusConflict, "not_accepted"}},
	{domain.ErrDataIntegrity, errorMapping{http.StatusInternalServerError, "data_integrity"}},
	{domain.ErrInvalidToken, errorMapping{http.StatusUnauthorized, "unauthorized"}},
}

// respondError writes the status and message registered for err. Unknown
// errors become a 500 without leaking details.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			c.JSON(m.status, ErrorResponse{Error: m.err.Error(), Code: m.code})
			return
		}
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  "internal",
	})
}

func respondBadRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: "invalid request body: " + err.Error(),
		Code:  "invalid_request",
	})
}

// currentUserID returns the profile id set by the auth middleware
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "unauthorized"})
		return "", false
	}
	return userID, true
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id", Code: "invalid_request"})
		return 0, false
	}
	return id, true
}
