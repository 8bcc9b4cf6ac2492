package services

import (
	"strings"
	"testing"
	"time"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

func TestVerifyOTP(t *testing.T) {
	const phone = "+919812345678"

	wrongCode := func(code string) string {
		if code == "000000" {
			return "111111"
		}
		return "000000"
	}

	newService := func() (*OTPService, *storage.MemoryStore) {
		store := storage.NewMemoryStore()
		return NewOTPService(store, NewNotifier(nil)), store
	}

	t.Run("correct code verifies once and burns the OTP", func(t *testing.T) {
		svc, _ := newService()
		otp, err := svc.RequestOTP(phone, models.OTPPurposeLogin, "DR00001")
		if err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}

		ref, err := svc.VerifyOTP(phone, otp.Code, models.OTPPurposeLogin)
		if err != nil {
			t.Fatalf("VerifyOTP: %v", err)
		}
		if ref != "DR00001" {
			t.Errorf("reference = %q, want DR00001", ref)
		}

		if _, err := svc.VerifyOTP(phone, otp.Code, models.OTPPurposeLogin); err == nil {
			t.Error("expected reuse of a burned code to fail")
		}
	})

	t.Run("wrong guesses are counted and persisted", func(t *testing.T) {
		svc, store := newService()
		otp, err := svc.RequestOTP(phone, models.OTPPurposeLogin, "DR00001")
		if err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}

		if _, err := svc.VerifyOTP(phone, wrongCode(otp.Code), models.OTPPurposeLogin); err == nil {
			t.Fatal("expected wrong code to fail")
		}

		stored, err := store.GetActiveOTP(phone, models.OTPPurposeLogin)
		if err != nil {
			t.Fatalf("GetActiveOTP: %v", err)
		}
		if stored.Attempts != 1 {
			t.Errorf("Attempts = %d after one wrong guess, want 1", stored.Attempts)
		}

		// The right code still works while attempts remain
		if _, err := svc.VerifyOTP(phone, otp.Code, models.OTPPurposeLogin); err != nil {
			t.Errorf("VerifyOTP with correct code: %v", err)
		}
	})

	t.Run("three wrong guesses burn the code", func(t *testing.T) {
		svc, _ := newService()
		otp, err := svc.RequestOTP(phone, models.OTPPurposeLogin, "DR00001")
		if err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}

		for i := 0; i < 3; i++ {
			if _, err := svc.VerifyOTP(phone, wrongCode(otp.Code), models.OTPPurposeLogin); err == nil {
				t.Fatalf("guess %d: expected wrong code to fail", i+1)
			}
		}

		_, err = svc.VerifyOTP(phone, otp.Code, models.OTPPurposeLogin)
		if err == nil {
			t.Fatal("expected the correct code to be rejected after lockout")
		}
		if !strings.Contains(err.Error(), "too many attempts") {
			t.Errorf("err = %v, want too-many-attempts", err)
		}
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		svc, store := newService()
		if _, err := store.CreateOTP(&models.OTP{
			Phone:     phone,
			Code:      "123456",
			Purpose:   models.OTPPurposeLogin,
			ExpiresAt: time.Now().Add(-time.Minute),
		}); err != nil {
			t.Fatalf("CreateOTP: %v", err)
		}

		_, err := svc.VerifyOTP(phone, "123456", models.OTPPurposeLogin)
		if err == nil || !strings.Contains(err.Error(), "expired") {
			t.Errorf("err = %v, want code-expired", err)
		}
	})

	t.Run("a fresh request supersedes the old code", func(t *testing.T) {
		svc, _ := newService()
		first, err := svc.RequestOTP(phone, models.OTPPurposeLogin, "DR00001")
		if err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}
		second, err := svc.RequestOTP(phone, models.OTPPurposeLogin, "DR00001")
		if err != nil {
			t.Fatalf("RequestOTP: %v", err)
		}

		if first.Code != second.Code {
			if _, err := svc.VerifyOTP(phone, first.Code, models.OTPPurposeLogin); err == nil {
				t.Error("expected the superseded code to be rejected")
			}
		}
		if _, err := svc.VerifyOTP(phone, second.Code, models.OTPPurposeLogin); err != nil {
			t.Errorf("VerifyOTP with the latest code: %v", err)
		}
	})
}
