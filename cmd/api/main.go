package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/flexilance/flexilance-api/internal/config"
	"github.com/flexilance/flexilance-api/internal/db"
	"github.com/flexilance/flexilance-api/internal/handlers"
	"github.com/flexilance/flexilance-api/internal/middleware"
	"github.com/flexilance/flexilance-api/internal/models"
	"github.com/flexilance/flexilance-api/internal/realtime"
	"github.com/flexilance/flexilance-api/internal/services/earnings"
	"github.com/flexilance/flexilance-api/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.JobCategory{},
		&models.Job{},
		&models.Proposal{},
		&models.Contract{},
		&models.Milestone{},
		&models.Payment{},
		&models.Earning{},
		&models.Conversation{},
		&models.Message{},
	); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	notifier := realtime.NewNotifier(rdb)

	local := storage.NewLocal(cfg.UploadDir, cfg.AppBaseURL)
	var store storage.Store = local
	if cfg.StorageBackend == "supabase" && cfg.SupabaseURL != "" {
		store = storage.NewFallback(
			storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket),
			local,
		)
	}

	earningsSvc := earnings.NewEarningsService(gdb)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	userH := handlers.NewUserHandler(gdb)
	categoryH := handlers.NewCategoryHandler(gdb)
	jobH := handlers.NewJobHandler(gdb)
	proposalH := handlers.NewProposalHandler(gdb)
	contractH := handlers.NewContractHandler(gdb)
	paymentH := handlers.NewPaymentHandler(gdb, earningsSvc)
	chatH := handlers.NewChatHandler(gdb, notifier)
	uploadH := handlers.NewUploadHandler(store)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/categories", categoryH.GetCategories)
	api.Get("/jobs", jobH.ListPublic)
	api.Get("/jobs/:id", jobH.GetDetail)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", userH.Me)
	protected.Get("/profile", userH.GetProfile)
	protected.Patch("/profile", userH.UpdateProfile)
	protected.Post("/uploads", uploadH.Upload)

	// jobs: creation/mutation is client territory; ownership is checked in
	// the handlers
	protected.Post("/jobs", middleware.RequireRoles(models.RoleClient), jobH.Create)
	protected.Put("/jobs/:id", middleware.RequireRoles(models.RoleClient), jobH.Update)
	protected.Delete("/jobs/:id", middleware.RequireRoles(models.RoleClient), jobH.Delete)
	protected.Get("/jobs/my/list", jobH.ListMine)

	// proposals
	protected.Post("/jobs/:id/proposals",
		middleware.RequireRoles(models.RoleFreelancer), proposalH.Submit)
	protected.Get("/jobs/:id/proposals", proposalH.ListForJob)
	protected.Get("/proposals/my", proposalH.ListMine)
	protected.Post("/proposals/:id/accept",
		middleware.RequireRoles(models.RoleClient), proposalH.Accept)
	protected.Post("/proposals/:id/decline",
		middleware.RequireRoles(models.RoleClient), proposalH.Decline)
	protected.Post("/proposals/:id/withdraw",
		middleware.RequireRoles(models.RoleFreelancer), proposalH.Withdraw)

	// contracts & milestones
	protected.Get("/contracts/my", contractH.ListMine)
	protected.Get("/contracts/:id", contractH.GetDetail)
	protected.Patch("/contracts/:id/status", contractH.UpdateStatus)
	protected.Post("/contracts/:id/milestones",
		middleware.RequireRoles(models.RoleClient), contractH.CreateMilestone)
	protected.Get("/contracts/:id/milestones", contractH.ListMilestones)
	protected.Post("/milestones/:id/submit",
		middleware.RequireRoles(models.RoleFreelancer), contractH.SubmitMilestone)
	protected.Post("/milestones/:id/approve",
		middleware.RequireRoles(models.RoleClient), contractH.ApproveMilestone)
	protected.Post("/milestones/:id/request-revision",
		middleware.RequireRoles(models.RoleClient), contractH.RequestRevision)

	// payments & earnings
	protected.Post("/payments", paymentH.Create)
	protected.Patch("/payments/:id/status", paymentH.UpdateStatus)
	protected.Get("/payments/history", paymentH.History)
	protected.Get("/earnings",
		middleware.RequireRoles(models.RoleFreelancer), paymentH.ListEarnings)
	protected.Get("/earnings/summary",
		middleware.RequireRoles(models.RoleFreelancer), paymentH.Summary)
	protected.Post("/earnings/withdraw",
		middleware.RequireRoles(models.RoleFreelancer), paymentH.Withdraw)

	// messaging
	protected.Post("/conversations/start", chatH.StartConversation)
	protected.Get("/conversations", chatH.GetConversations)
	protected.Get("/conversations/:id", chatH.GetConversation)
	protected.Get("/conversations/:id/messages", chatH.GetMessages)
	protected.Post("/conversations/:id/messages", chatH.SendMessage)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
