package services

import (
	"fmt"
	"time"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
	"github.com/jyothilaxmika/pls-travels-backend/internal/utils"
)

// maxOTPAttempts is the number of wrong guesses allowed before the code
// is burned and a new one must be requested
const maxOTPAttempts = 3

// OTPService handles phone verification for driver onboarding and login
type OTPService struct {
	store    storage.Store
	notifier *Notifier
}

// NewOTPService creates a new OTP service
func NewOTPService(store storage.Store, notifier *Notifier) *OTPService {
	return &OTPService{store: store, notifier: notifier}
}

// RequestOTP generates a code for the given phone and purpose and sends it
// over WhatsApp
func (s *OTPService) RequestOTP(phone, purpose, referenceID string) (*models.OTP, error) {
	code, err := utils.GenerateSecureOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP: %w", err)
	}

	otp := &models.OTP{
		Phone:       phone,
		Code:        code,
		Purpose:     purpose,
		ReferenceID: referenceID,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
	}
	otp, err = s.store.CreateOTP(otp)
	if err != nil {
		return nil, err
	}

	s.notifier.OTPCode(phone, code)
	return otp, nil
}

// VerifyOTP checks the supplied code against the latest outstanding OTP
// for the phone and purpose, counting wrong guesses. Returns the reference
// ID the OTP was issued for.
func (s *OTPService) VerifyOTP(phone, code, purpose string) (string, error) {
	otp, err := s.store.GetActiveOTP(phone, purpose)
	if err != nil {
		return "", fmt.Errorf("invalid code")
	}

	if time.Now().After(otp.ExpiresAt) {
		return "", fmt.Errorf("code expired")
	}

	if otp.Attempts >= maxOTPAttempts {
		return "", fmt.Errorf("too many attempts, request a new code")
	}

	if otp.Code != code {
		otp.Attempts++
		if err := s.store.UpdateOTP(otp); err != nil {
			return "", err
		}
		return "", fmt.Errorf("invalid code")
	}

	now := time.Now()
	otp.VerifiedAt = &now
	otp.IsUsed = true
	if err := s.store.UpdateOTP(otp); err != nil {
		return "", err
	}

	return otp.ReferenceID, nil
}
