package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/jyothilaxmika/pls-travels-backend/database"
	"github.com/jyothilaxmika/pls-travels-backend/internal/jobs"
	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/routes"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.Driver{},
			&models.Vehicle{},
			&models.DutyScheme{},
			&models.Duty{},
			&models.LedgerEntry{},
			&models.DriverDocument{},
			&models.AuditLog{},
			&models.OTP{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}
	storage.SetStore(store)

	// Initialize Twilio-backed notifications; WhatsApp features degrade to
	// log-only when credentials are missing
	var notifier *services.Notifier
	twilioService, err := services.NewTwilioService()
	if err != nil {
		log.Println("⚠️  Twilio not configured - WhatsApp notifications disabled")
		notifier = services.NewNotifier(nil)
	} else {
		log.Println("✅ Twilio service initialized")
		notifier = services.NewNotifier(twilioService)
	}

	// Initialize all services
	auditService := services.NewAuditService(store)
	dutyService := services.NewDutyService(store, notifier, auditService)
	ledgerService := services.NewLedgerService(store, auditService)
	otpService := services.NewOTPService(store, notifier)
	documentService := services.NewDocumentService(store)

	// Initialize and start notification jobs
	notificationJob := jobs.NewNotificationJob(store, notifier)
	notificationJob.Start()

	log.Println("✅ All services initialized and scheduled jobs started")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "PLS Travels Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Root endpoint with service status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "PLS Travels Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
			"whatsapp":    twilioService != nil,
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			var driverCount, vehicleCount, dutyCount, schemeCount int64
			database.DB.Model(&models.Driver{}).Count(&driverCount)
			database.DB.Model(&models.Vehicle{}).Count(&vehicleCount)
			database.DB.Model(&models.Duty{}).Count(&dutyCount)
			database.DB.Model(&models.DutyScheme{}).Count(&schemeCount)

			response["database"] = fiber.Map{
				"status":   dbStatus,
				"drivers":  driverCount,
				"vehicles": vehicleCount,
				"duties":   dutyCount,
				"schemes":  schemeCount,
			}
		}

		return c.JSON(response)
	})

	// Setup routes
	routes.SetupRoutes(app, store, dutyService, ledgerService, otpService, documentService, auditService)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping notification jobs...")
		notificationJob.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 PLS Travels Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}
