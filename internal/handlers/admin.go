package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// AdminHandler handles back-office operations: duty approval, driver
// verification, scheme and vehicle management, manual ledger entries.
type AdminHandler struct {
	store  storage.Store
	duty   *services.DutyService
	ledger *services.LedgerService
	audit  *services.AuditService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, duty *services.DutyService, ledger *services.LedgerService, audit *services.AuditService) *AdminHandler {
	return &AdminHandler{
		store:  store,
		duty:   duty,
		ledger: ledger,
		audit:  audit,
	}
}

// adminID returns the acting admin's subject from the auth middleware
func adminID(c *fiber.Ctx) string {
	if id, ok := c.Locals("subject").(string); ok && id != "" {
		return id
	}
	return "admin"
}

// PendingDuties lists duties awaiting approval
func (h *AdminHandler) PendingDuties(c *fiber.Ctx) error {
	duties, err := h.store.GetDutiesByStatus(models.DutyStatusPendingApproval)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"duties": duties,
		"count":  len(duties),
	})
}

// ApproveDuty approves a submitted duty
func (h *AdminHandler) ApproveDuty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid duty ID",
		})
	}

	duty, err := h.duty.ApproveDuty(id, adminID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Duty approved",
		"duty":    duty,
	})
}

// RejectDuty rejects a submitted duty with a reason
func (h *AdminHandler) RejectDuty(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid duty ID",
		})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil || req.Reason == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Rejection reason is required",
		})
	}

	duty, err := h.duty.RejectDuty(id, adminID(c), req.Reason)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Duty rejected",
		"duty":    duty,
	})
}

// VerifyDriver activates a pending driver
func (h *AdminHandler) VerifyDriver(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	driver, err := h.store.GetDriver(id)
	if err != nil {
		return respondError(c, err)
	}

	driver.Status = models.DriverStatusActive
	if err := h.store.UpdateDriver(driver); err != nil {
		return respondError(c, err)
	}

	h.audit.Record(adminID(c), models.AuditDriverVerified, "driver", driver.DriverID, nil)
	return c.JSON(fiber.Map{
		"message": "Driver verified and activated",
		"driver":  driver,
	})
}

// SuspendDriver suspends a driver account
func (h *AdminHandler) SuspendDriver(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.BodyParser(&req)

	driver, err := h.store.GetDriver(id)
	if err != nil {
		return respondError(c, err)
	}

	driver.Status = models.DriverStatusSuspended
	if err := h.store.UpdateDriver(driver); err != nil {
		return respondError(c, err)
	}

	h.audit.Record(adminID(c), models.AuditDriverSuspended, "driver", driver.DriverID, map[string]interface{}{
		"reason": req.Reason,
	})
	return c.JSON(fiber.Map{
		"message": "Driver suspended",
		"driver":  driver,
	})
}

// CreateScheme adds a duty scheme
func (h *AdminHandler) CreateScheme(c *fiber.Ctx) error {
	var scheme models.DutyScheme
	if err := c.BodyParser(&scheme); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if scheme.Name == "" || !models.ValidSchemeType(scheme.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Scheme name and a valid type (fixed, per_trip, slab, mixed) are required",
		})
	}

	created, err := h.store.CreateScheme(&scheme)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Scheme created",
		"scheme":  created,
	})
}

// ListSchemes lists all duty schemes
func (h *AdminHandler) ListSchemes(c *fiber.Ctx) error {
	schemes, err := h.store.GetAllSchemes()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"schemes": schemes,
		"count":   len(schemes),
	})
}

// UpdateScheme edits a duty scheme. Duties already referencing the scheme
// keep the figures computed at their completion.
func (h *AdminHandler) UpdateScheme(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheme ID",
		})
	}

	scheme, err := h.store.GetScheme(id)
	if err != nil {
		return respondError(c, err)
	}

	if err := c.BodyParser(scheme); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if !models.ValidSchemeType(scheme.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid scheme type",
		})
	}

	if err := h.store.UpdateScheme(scheme); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Scheme updated",
		"scheme":  scheme,
	})
}

// CreateVehicle adds a fleet vehicle
func (h *AdminHandler) CreateVehicle(c *fiber.Ctx) error {
	var vehicle models.Vehicle
	if err := c.BodyParser(&vehicle); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if vehicle.RegistrationNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Registration number is required",
		})
	}

	vehicle.IsAvailable = true
	created, err := h.store.CreateVehicle(&vehicle)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Vehicle created",
		"vehicle": created,
	})
}

// ListVehicles lists all vehicles
func (h *AdminHandler) ListVehicles(c *fiber.Ctx) error {
	vehicles, err := h.store.GetAllVehicles()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"vehicles": vehicles,
		"count":    len(vehicles),
	})
}

// UpdateVehicle edits a vehicle's status or details
func (h *AdminHandler) UpdateVehicle(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid vehicle ID",
		})
	}

	vehicle, err := h.store.GetVehicle(id)
	if err != nil {
		return respondError(c, err)
	}

	if err := c.BodyParser(vehicle); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.store.UpdateVehicle(vehicle); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Vehicle updated",
		"vehicle": vehicle,
	})
}

// RecordLedgerEntry records a manual ledger entry for a driver
func (h *AdminHandler) RecordLedgerEntry(c *fiber.Ctx) error {
	var req struct {
		DriverID uint    `json:"driver_id"`
		Type     string  `json:"type"`
		Amount   float64 `json:"amount"`
		Note     string  `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.DriverID == 0 || req.Amount == 0 || !models.ValidLedgerType(req.Type) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Driver ID, a valid entry type and a non-zero amount are required",
		})
	}

	entry, err := h.ledger.RecordEntry(req.DriverID, req.Type, req.Amount, req.Note, adminID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Ledger entry recorded",
		"entry":   entry,
	})
}

// Overview returns fleet-wide statistics
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	stats, err := h.store.GetFleetStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
