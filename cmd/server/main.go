package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/hmizuno/conference-review-api/internal/config"
	"github.com/hmizuno/conference-review-api/internal/constants"
	"github.com/hmizuno/conference-review-api/internal/database"
	"github.com/hmizuno/conference-review-api/internal/handlers"
	"github.com/hmizuno/conference-review-api/internal/middleware"
	"github.com/hmizuno/conference-review-api/internal/repository"
	"github.com/hmizuno/conference-review-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logFile, _ := config.InitLogging(cfg)
	if logFile != nil {
		defer logFile.Close()
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Session store: Redis when configured, in-process cookie store
	// otherwise (single-instance deployments and local development).
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		s, err := redisStore.NewStore(10, "tcp", redisAddr, "", "", []byte(cfg.SessionSecret))
		if err != nil {
			log.Fatalf("Failed to create Redis store: %v", err)
		}
		store = s
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	confRepo := repository.NewConferenceRepository(db)
	paperRepo := repository.NewPaperRepository(db)
	bidRepo := repository.NewBidRepository(db)
	assignRepo := repository.NewAssignmentRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	authService := services.NewAuthService(userRepo)
	membershipService := services.NewMembershipService(confRepo)
	notificationService := services.NewNotificationService(cfg, userRepo, paperRepo)
	biddingService := services.NewBiddingService(paperRepo, bidRepo, membershipService)
	conflictService := services.NewConflictService(paperRepo, bidRepo, membershipService)
	assignmentService := services.NewAssignmentService(confRepo, paperRepo, bidRepo, assignRepo, membershipService, notificationService)
	reviewService := services.NewReviewService(paperRepo, assignRepo, reviewRepo, membershipService)
	decisionService := services.NewDecisionService(paperRepo, membershipService, notificationService)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)
	bidHandler := handlers.NewBidHandler(biddingService)
	conflictHandler := handlers.NewConflictHandler(conflictService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	decisionHandler := handlers.NewDecisionHandler(decisionService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Conference Review API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Conference routes (protected)
		conferences := api.Group("/conferences")
		conferences.Use(middleware.RequireAuth())
		{
			conferences.GET("/:id/members", membershipHandler.ListMembers)
			conferences.POST("/:id/members", membershipHandler.AddMember)
			conferences.DELETE("/:id/members/:user_id/:role", membershipHandler.RemoveMember)
			conferences.GET("/:id/papers/bidding", bidHandler.PapersForBidding)
			conferences.GET("/:id/stats", assignmentHandler.Stats)
		}

		// Bid routes (protected)
		bids := api.Group("/bids")
		bids.Use(middleware.RequireAuth())
		{
			bids.POST("", bidHandler.SubmitBid)
		}

		// Conflict routes (protected)
		conflicts := api.Group("/conflicts")
		conflicts.Use(middleware.RequireAuth())
		{
			conflicts.POST("/mark", conflictHandler.MarkConflict)
			conflicts.POST("/unmark", conflictHandler.UnmarkConflict)
		}

		// Paper routes (protected)
		papers := api.Group("/papers")
		papers.Use(middleware.RequireAuth())
		{
			papers.GET("/:id/conflicts", conflictHandler.ListConflicts)
			papers.GET("/:id/reviews", reviewHandler.ListForPaper)
			papers.POST("/:id/decision", decisionHandler.RecordDecision)
		}

		// Assignment routes (protected)
		assignments := api.Group("/assignments")
		assignments.Use(middleware.RequireAuth())
		{
			assignments.POST("/auto", assignmentHandler.AutoAssign)
			assignments.POST("", assignmentHandler.ManualAssign)
			assignments.DELETE("/:id", assignmentHandler.DeleteAssignment)
			assignments.PATCH("/:id/status", assignmentHandler.UpdateStatus)
		}

		// Review routes (protected)
		reviews := api.Group("/reviews")
		reviews.Use(middleware.RequireAuth())
		{
			reviews.POST("/:assignment_id/draft", reviewHandler.SaveDraft)
			reviews.POST("/:assignment_id/submit", reviewHandler.SubmitReview)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
