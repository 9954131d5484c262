package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/handlers"
	"github.com/sahelpay/tontine-backend/middleware"
)

// Handlers bundles everything SetupRoutes needs to wire the API
type Handlers struct {
	Auth        *handlers.AuthHandler
	Group       *handlers.GroupHandler
	Tour        *handlers.TourHandler
	Payment     *handlers.PaymentHandler
	Payout      *handlers.PayoutHandler
	Delegation  *handlers.DelegationHandler
	JoinRequest *handlers.JoinRequestHandler
	Export      *handlers.ExportHandler
}

// SetupRoutes configures all API routes for the application
func SetupRoutes(router *gin.Engine, h *Handlers, jwtManager *middleware.JWTManager) {
	v1 := router.Group("/api/v1")

	// Public endpoints
	v1.POST("/auth/register", h.Auth.Register)
	v1.POST("/auth/login", h.Auth.Login)
	v1.POST("/payments/callback", h.Payment.GatewayCallback)

	// Authenticated endpoints
	auth := v1.Group("")
	auth.Use(middleware.RequireAuth(jwtManager))
	{
		// Group endpoints
		auth.POST("/groups", h.Group.CreateGroup)
		auth.GET("/groups", h.Group.ListMyGroups)
		auth.GET("/groups/:id", h.Group.GetGroup)
		auth.POST("/groups/getByCode", h.Group.GetGroupByCode)
		auth.GET("/groups/:id/members", h.Group.ListMembers)
		auth.DELETE("/groups/:id/members/:personId", h.Group.RemoveMember)

		// Tour endpoints
		auth.POST("/groups/:id/tours/generate", h.Tour.GenerateTours)
		auth.POST("/groups/:id/tours/reorganize", h.Tour.ReorganizeTours)
		auth.GET("/groups/:id/tours", h.Tour.ListTours)
		auth.GET("/tours/:id", h.Tour.GetTourSnapshot)

		// Contribution endpoints
		auth.GET("/contributions/:id", h.Payment.GetContribution)
		auth.GET("/tours/:id/contributions", h.Payment.ListTourContributions)
		auth.GET("/groups/:id/contributions", h.Payment.ListGroupContributions)
		auth.POST("/contributions/:id/waive", h.Payment.WaiveContribution)

		// Payment endpoints
		auth.POST("/payments/declare", h.Payment.DeclarePayment)
		auth.POST("/payments/:id/validate", h.Payment.ValidatePayment)
		auth.GET("/payments/:id", h.Payment.GetPayment)
		auth.GET("/groups/:id/payments", h.Payment.ListGroupPayments)

		// Payout endpoints
		auth.POST("/tours/:id/payout", h.Payout.ProcessPayout)
		auth.POST("/tours/:id/payout/confirm", h.Payout.ConfirmPayout)
		auth.POST("/tours/:id/close", h.Payout.CloseTour)

		// Delegation endpoints
		auth.POST("/delegations", h.Delegation.CreateDelegation)
		auth.POST("/delegations/:id/approve", h.Delegation.ApproveDelegation)
		auth.POST("/delegations/:id/revoke", h.Delegation.RevokeDelegation)
		auth.GET("/groups/:id/delegations", h.Delegation.ListDelegations)

		// Join request endpoints
		auth.POST("/join-requests", h.JoinRequest.RequestToJoin)
		auth.POST("/join-requests/:id/review", h.JoinRequest.ReviewJoinRequest)
		auth.POST("/join-requests/:id/cancel", h.JoinRequest.CancelJoinRequest)
		auth.GET("/groups/:id/join-requests", h.JoinRequest.ListJoinRequests)

		// Export endpoint
		auth.GET("/groups/:id/export", h.Export.ExportGroupStatement)
	}
}
