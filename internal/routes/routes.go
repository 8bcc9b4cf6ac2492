package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jyothilaxmika/pls-travels-backend/internal/handlers"
	"github.com/jyothilaxmika/pls-travels-backend/internal/middleware"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, dutyService *services.DutyService,
	ledgerService *services.LedgerService, otpService *services.OTPService,
	documentService *services.DocumentService, auditService *services.AuditService) {

	driverHandler := handlers.NewDriverHandler(store, documentService)
	dutyHandler := handlers.NewDutyHandler(store, dutyService, documentService)
	authHandler := handlers.NewAuthHandler(store, otpService)
	adminHandler := handlers.NewAdminHandler(store, dutyService, ledgerService, auditService)
	healthHandler := handlers.NewHealthHandler("1.0.0")

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// Onboarding and login
	api.Post("/drivers/register", driverHandler.Register)
	auth := api.Group("/auth")
	auth.Post("/otp/request", authHandler.RequestOTP)
	auth.Post("/otp/verify", authHandler.VerifyOTP)

	// Driver routes
	drivers := api.Group("/drivers", middleware.RequireAuth(services.RoleDriver, services.RoleAdmin))
	drivers.Get("/:id", driverHandler.GetDriver)
	drivers.Get("/:id/duties", driverHandler.GetDuties)
	drivers.Get("/:id/stats", driverHandler.GetStats)
	drivers.Get("/:id/ledger", driverHandler.GetLedger)
	drivers.Get("/:id/documents", driverHandler.GetDocuments)
	drivers.Post("/:id/documents", driverHandler.UploadDocument)

	// Duty lifecycle
	duties := api.Group("/duties", middleware.RequireAuth(services.RoleDriver, services.RoleAdmin))
	duties.Post("/start", dutyHandler.Start)
	duties.Post("/:id/complete", dutyHandler.Complete)
	duties.Post("/:id/photos", dutyHandler.UploadPhoto)
	duties.Get("/:id", dutyHandler.Get)

	// Admin routes
	admin := app.Group("/admin", middleware.RequireAuth(services.RoleAdmin))
	admin.Get("/overview", adminHandler.Overview)
	admin.Get("/duties/pending", adminHandler.PendingDuties)
	admin.Post("/duties/:id/approve", adminHandler.ApproveDuty)
	admin.Post("/duties/:id/reject", adminHandler.RejectDuty)
	admin.Post("/drivers/:id/verify", adminHandler.VerifyDriver)
	admin.Post("/drivers/:id/suspend", adminHandler.SuspendDriver)
	admin.Post("/schemes", adminHandler.CreateScheme)
	admin.Get("/schemes", adminHandler.ListSchemes)
	admin.Put("/schemes/:id", adminHandler.UpdateScheme)
	admin.Post("/vehicles", adminHandler.CreateVehicle)
	admin.Get("/vehicles", adminHandler.ListVehicles)
	admin.Put("/vehicles/:id", adminHandler.UpdateVehicle)
	admin.Post("/ledger", adminHandler.RecordLedgerEntry)
}
