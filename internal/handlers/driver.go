package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// DriverHandler handles driver-related requests
type DriverHandler struct {
	store     storage.Store
	documents *services.DocumentService
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(store storage.Store, documents *services.DocumentService) *DriverHandler {
	return &DriverHandler{
		store:     store,
		documents: documents,
	}
}

func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(raw), nil
}

// Register handles driver registration
func (h *DriverHandler) Register(c *fiber.Ctx) error {
	var reg models.DriverRegistration

	if err := c.BodyParser(&reg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if reg.Name == "" || reg.Phone == "" || reg.LicenseNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, phone and license number are required",
		})
	}

	driver, err := h.store.CreateDriver(&reg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register driver",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Driver registered, awaiting phone verification",
		"driver":  driver,
	})
}

// GetDriver retrieves a driver by ID
func (h *DriverHandler) GetDriver(c *fiber.Ctx) error {
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
	return c.JSON(driver)
}

// GetDuties retrieves all duties for a driver
func (h *DriverHandler) GetDuties(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	duties, err := h.store.GetDutiesByDriver(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"duties": duties,
		"count":  len(duties),
	})
}

// GetStats retrieves the earnings/distance projection for a driver
func (h *DriverHandler) GetStats(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	stats, err := h.store.GetDriverStats(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetLedger retrieves the driver's ledger with running balance
func (h *DriverHandler) GetLedger(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	entries, err := h.store.GetLedgerByDriver(id)
	if err != nil {
		return respondError(c, err)
	}
	balance, err := h.store.GetLedgerBalance(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"entries": entries,
		"balance": balance,
	})
}

// GetDocuments lists a driver's stored documents
func (h *DriverHandler) GetDocuments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	docs, err := h.store.GetDocumentsByDriver(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"documents": docs,
		"count":     len(docs),
	})
}

// UploadDocument stores a document file for a driver
func (h *DriverHandler) UploadDocument(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid driver ID",
		})
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Document file is required",
		})
	}

	docType := c.FormValue("type", models.DocumentTypeOther)

	var expiry *time.Time
	if raw := c.FormValue("expiry_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid expiry date, expected YYYY-MM-DD",
			})
		}
		expiry = &parsed
	}

	fileName, err := h.documents.SaveFile(c, file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store document",
		})
	}

	doc, err := h.documents.AttachDocument(id, docType, fileName, expiry)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Document uploaded",
		"document": doc,
	})
}
