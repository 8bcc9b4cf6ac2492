package services

import (
	"errors"
	"testing"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
)

func TestAttachDutyPhoto(t *testing.T) {
	e := newTestEnv(t)
	duty := e.startDuty(t, nil)
	docs := NewDocumentService(e.store)

	t.Run("start photo lands in the start slot", func(t *testing.T) {
		updated, err := docs.AttachDutyPhoto(duty.ID, PhotoKindStart, "abc123.jpg")
		if err != nil {
			t.Fatalf("AttachDutyPhoto: %v", err)
		}
		if updated.StartPhoto != "abc123.jpg" {
			t.Errorf("StartPhoto = %q, want abc123.jpg", updated.StartPhoto)
		}
		if updated.EndPhoto != "" {
			t.Errorf("EndPhoto = %q, want empty", updated.EndPhoto)
		}
	})

	t.Run("end photo lands in the end slot", func(t *testing.T) {
		updated, err := docs.AttachDutyPhoto(duty.ID, PhotoKindEnd, "def456.jpg")
		if err != nil {
			t.Fatalf("AttachDutyPhoto: %v", err)
		}
		if updated.EndPhoto != "def456.jpg" {
			t.Errorf("EndPhoto = %q, want def456.jpg", updated.EndPhoto)
		}

		stored, _ := e.store.GetDuty(duty.ID)
		if stored.StartPhoto != "abc123.jpg" || stored.EndPhoto != "def456.jpg" {
			t.Errorf("stored photos = %q/%q, want abc123.jpg/def456.jpg",
				stored.StartPhoto, stored.EndPhoto)
		}
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		if _, err := docs.AttachDutyPhoto(duty.ID, "side", "x.jpg"); err == nil {
			t.Error("expected error for unknown photo kind")
		}
	})

	t.Run("unknown duty fails with not found", func(t *testing.T) {
		_, err := docs.AttachDutyPhoto(4242, PhotoKindStart, "x.jpg")
		if !errors.Is(err, models.ErrDutyNotFound) {
			t.Errorf("err = %v, want ErrDutyNotFound", err)
		}
	})
}
