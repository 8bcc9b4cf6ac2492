package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// DutyHandler handles duty lifecycle requests
type DutyHandler struct {
	store     storage.Store
	duty      *services.DutyService
	documents *services.DocumentService
}

// NewDutyHandler creates a new duty handler
func NewDutyHandler(store storage.Store, duty *services.DutyService, documents *services.DocumentService) *DutyHandler {
	return &DutyHandler{
		store:     store,
		duty:      duty,
		documents: documents,
	}
}

// Start opens a new duty
func (h *DutyHandler) Start(c *fiber.Ctx) error {
	var req models.DutyStartRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.DriverID == 0 || req.VehicleID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Driver ID and vehicle ID are required",
		})
	}

	duty, err := h.duty.StartDuty(&req)
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"message": "Duty started",
		"duty":    duty,
	}
	if duty.OdometerWarning != "" {
		resp["warning"] = duty.OdometerWarning
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Complete closes an active duty and submits it for approval
func (h *DutyHandler) Complete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid duty ID",
		})
	}

	var req models.DutyCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	duty, err := h.duty.CompleteDuty(id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Duty submitted for approval",
		"duty":    duty,
		"earnings": fiber.Map{
			"gross_revenue":   duty.GrossRevenue,
			"driver_earnings": duty.DriverEarnings,
			"incentive":       duty.IncentivePay,
			"scheme_earnings": duty.SchemeEarnings,
			"bmg_top_up":      duty.BMGTopUp,
			"fuel_adjustment": duty.FuelAdjustment,
		},
	})
}

// UploadPhoto stores an odometer photo against a duty. The "kind" form
// value selects the start or end slot.
func (h *DutyHandler) UploadPhoto(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid duty ID",
		})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Photo file is required",
		})
	}

	kind := c.FormValue("kind", services.PhotoKindStart)
	if kind != services.PhotoKindStart && kind != services.PhotoKindEnd {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Photo kind must be start or end",
		})
	}

	fileName, err := h.documents.SaveFile(c, file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store photo",
		})
	}

	duty, err := h.documents.AttachDutyPhoto(id, kind, fileName)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Photo attached",
		"duty":    duty,
	})
}

// Get retrieves a duty by ID
func (h *DutyHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid duty ID",
		})
	}

	duty, err := h.store.GetDuty(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(duty)
}
