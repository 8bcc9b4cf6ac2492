package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/services"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// AuthHandler handles driver phone verification and login
type AuthHandler struct {
	store storage.Store
	otp   *services.OTPService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store storage.Store, otp *services.OTPService) *AuthHandler {
	return &AuthHandler{
		store: store,
		otp:   otp,
	}
}

func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone != "" && !strings.HasPrefix(phone, "+") {
		phone = "+91" + strings.TrimPrefix(phone, "91")
	}
	return phone
}

// RequestOTP sends a verification code to a registered driver's phone
func (h *AuthHandler) RequestOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.BodyParser(&req); err != nil || req.Phone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number is required",
		})
	}

	phone := normalizePhone(req.Phone)
	driver, err := h.store.GetDriverByPhone(phone)
	if err != nil {
		return respondError(c, err)
	}

	purpose := models.OTPPurposeLogin
	if !driver.PhoneVerified {
		purpose = models.OTPPurposeOnboarding
	}

	if _, err := h.otp.RequestOTP(phone, purpose, driver.DriverID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to send verification code",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Verification code sent",
		"purpose": purpose,
	})
}

// VerifyOTP checks the code; on success marks the phone verified (for
// onboarding) and returns a session token
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := c.BodyParser(&req); err != nil || req.Phone == "" || req.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Phone number and code are required",
		})
	}

	phone := normalizePhone(req.Phone)
	driver, err := h.store.GetDriverByPhone(phone)
	if err != nil {
		return respondError(c, err)
	}

	purpose := models.OTPPurposeLogin
	if !driver.PhoneVerified {
		purpose = models.OTPPurposeOnboarding
	}

	if _, err := h.otp.VerifyOTP(phone, req.Code, purpose); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if !driver.PhoneVerified {
		driver.PhoneVerified = true
		if err := h.store.UpdateDriver(driver); err != nil {
			return respondError(c, err)
		}
	}

	token, err := services.IssueToken(driver.DriverID, services.RoleDriver)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to issue session token",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Phone verified",
		"token":   token,
		"driver":  driver,
	})
}
