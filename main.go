package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/sahelpay/tontine-backend/handlers"
	"github.com/sahelpay/tontine-backend/logging"
	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/repository"
	"github.com/sahelpay/tontine-backend/routes"
	"github.com/sahelpay/tontine-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found, using environment variables")
	}
	logging.Setup()

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("Tontine API"),
		newrelic.ConfigLicense(os.Getenv("NEW_RELIC_LICENSE_KEY")),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		slog.Warn("failed to initialize New Relic", "error", err)
	}

	if err := repository.InitDB(); err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer repository.CloseDB()
	db := repository.GetDB()

	// Repositories
	personRepo := repository.NewPersonRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	tourRepo := repository.NewTourRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	delegationRepo := repository.NewDelegationRepository(db)
	joinRequestRepo := repository.NewJoinRequestRepository(db)

	// Cross-cutting sinks
	notifier := services.NewLogNotifier()
	audit := services.NewLogAuditSink()

	// Auth
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-change-me"
		slog.Warn("JWT_SECRET not set, using development default")
	}
	jwtManager := middleware.NewJWTManager(jwtSecret, 24*time.Hour)

	// Services
	authService := services.NewAuthService(personRepo, jwtManager)
	groupService := services.NewGroupService(groupRepo, membershipRepo, contributionRepo, audit)
	rotationService := services.NewRotationService()
	tourService := services.NewTourService(rotationService, groupRepo, membershipRepo, tourRepo, contributionRepo, notifier, audit)
	ledgerService := services.NewLedgerService(contributionRepo, membershipRepo, notifier, audit)
	penaltyService := services.NewPenaltyService(contributionRepo, notifier)
	paymentService := services.NewPaymentService(db, paymentRepo, payoutRepo, contributionRepo, membershipRepo, delegationRepo, tourRepo, notifier, audit)
	payoutService := services.NewPayoutService(db, tourRepo, contributionRepo, membershipRepo, payoutRepo, notifier, audit)
	delegationService := services.NewDelegationService(delegationRepo, membershipRepo, notifier, audit)
	joinRequestService := services.NewJoinRequestService(groupRepo, membershipRepo, joinRequestRepo, notifier, audit)
	exportService := services.NewExportService(groupRepo, membershipRepo, personRepo, tourRepo, contributionRepo, paymentRepo)

	// Background sweeps
	stopScheduler := services.StartScheduler(penaltyService, tourService, delegationService, time.Hour)
	defer close(stopScheduler)

	router := gin.Default()
	if app != nil {
		router.Use(nrgin.Middleware(app))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(router, &routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService),
		Group:       handlers.NewGroupHandler(groupService),
		Tour:        handlers.NewTourHandler(tourService),
		Payment:     handlers.NewPaymentHandler(paymentService, ledgerService),
		Payout:      handlers.NewPayoutHandler(payoutService),
		Delegation:  handlers.NewDelegationHandler(delegationService),
		JoinRequest: handlers.NewJoinRequestHandler(joinRequestService),
		Export:      handlers.NewExportHandler(exportService),
	}, jwtManager)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port)
	if err := router.Run(":" + port); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
