package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gdugdh24/barter-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/barter-backend/internal/delivery/http/middleware"
)

type Router struct {
	profileHandler      *handler.ProfileHandler
	offerHandler        *handler.ListingHandler
	requestHandler      *handler.ListingHandler
	candidateHandler    *handler.CandidateHandler
	matchRequestHandler *handler.MatchRequestHandler
	authMiddleware      *middleware.AuthMiddleware
	logger              *zap.Logger
}

func NewRouter(
	profileHandler *handler.ProfileHandler,
	offerHandler *handler.ListingHandler,
	requestHandler *handler.ListingHandler,
	candidateHandler *handler.CandidateHandler,
	matchRequestHandler *handler.MatchRequestHandler,
	authMiddleware *middleware.AuthMiddleware,
	logger *zap.Logger,
) *Router {
	return &Router{
		profileHandler:      profileHandler,
		offerHandler:        offerHandler,
		requestHandler:      requestHandler,
		candidateHandler:    candidateHandler,
		matchRequestHandler: matchRequestHandler,
		authMiddleware:      authMiddleware,
		logger:              logger,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(r.logger), middleware.Recovery(r.logger))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	v1 := router.Group("/api/v1")
	v1.Use(r.authMiddleware.RequireAuth())
	{
		profile := v1.Group("/profile")
		{
			profile.POST("", r.profileHandler.CreateProfile)
			profile.GET("/me", r.profileHandler.GetMyProfile)
			profile.PUT("/me", r.profileHandler.UpdateMyProfile)
			profile.DELETE("/me", r.profileHandler.DeleteMyProfile)
			profile.GET("/:id", r.profileHandler.GetProfile)
		}

		registerListingRoutes(v1.Group("/offers"), r.offerHandler)
		registerListingRoutes(v1.Group("/requests"), r.requestHandler)

		feed := v1.Group("/feed")
		{
			feed.GET("/offers", r.offerHandler.Feed)
			feed.GET("/requests", r.requestHandler.Feed)
		}

		v1.GET("/matches/candidates", r.candidateHandler.GetCandidates)

		matchRequests := v1.Group("/match-requests")
		{
			matchRequests.POST("", r.matchRequestHandler.Create)
			matchRequests.GET("/sent", r.matchRequestHandler.ListSent)
			matchRequests.GET("/incoming", r.matchRequestHandler.ListIncoming)
			matchRequests.GET("/history", r.matchRequestHandler.ListHistory)
			matchRequests.GET("/:id", r.matchRequestHandler.Get)
			matchRequests.POST("/:id/accept", r.matchRequestHandler.Accept)
			matchRequests.POST("/:id/decline", r.matchRequestHandler.Decline)
			matchRequests.POST("/:id/complete", r.matchRequestHandler.Complete)
			matchRequests.DELETE("/:id", r.matchRequestHandler.Cancel)
		}
	}

	return router
}

func registerListingRoutes(group *gin.RouterGroup, h *handler.ListingHandler) {
	group.POST("", h.Create)
	group.GET("/mine", h.ListMine)
	group.DELETE("/:id", h.Delete)
	group.PATCH("/:id/active", h.SetActive)
	group.POST("/:id/report", h.Report)
}
