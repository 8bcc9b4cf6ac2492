package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DriverDocument is a stored document reference for a driver. The file
// itself lives in the upload directory; the core only tracks the filename
// and never inspects contents.
type DriverDocument struct {
	gorm.Model

	DocumentID string `json:"document_id" gorm:"uniqueIndex"`
	DriverID   uint   `json:"driver_id" gorm:"index"`

	Type       string     `json:"type"` // license, aadhaar, photo, insurance, other
	FileName   string     `json:"file_name"`
	ExpiryDate *time.Time `json:"expiry_date"`
	Verified   bool       `json:"verified" gorm:"default:false"`
	VerifiedBy string     `json:"verified_by,omitempty"`
}

// Document type constants
const (
	DocumentTypeLicense   = "license"
	DocumentTypeAadhaar   = "aadhaar"
	DocumentTypePhoto     = "photo"
	DocumentTypeInsurance = "insurance"
	DocumentTypeOther     = "other"
)

// BeforeCreate hook to auto-generate DocumentID
func (d *DriverDocument) BeforeCreate(tx *gorm.DB) error {
	if d.DocumentID == "" {
		d.DocumentID = uuid.NewString()
	}
	return nil
}

// ExpiresWithin reports whether the document expires within d days
// (already-expired documents count as expiring)
func (doc *DriverDocument) ExpiresWithin(days int) bool {
	if doc.ExpiryDate == nil {
		return false
	}
	return doc.ExpiryDate.Before(time.Now().AddDate(0, 0, days))
}
