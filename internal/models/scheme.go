package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DutyScheme is a named compensation configuration assigned to duties.
// A duty references its scheme immutably once assigned; edits to a scheme
// only affect duties started afterwards.
type DutyScheme struct {
	gorm.Model

	SchemeID string `json:"scheme_id" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Type     string `json:"type"` // fixed, per_trip, slab, mixed

	FixedAmount    float64 `json:"fixed_amount" gorm:"default:0"`
	PerTripRate    float64 `json:"per_trip_rate" gorm:"default:0"`
	RevenuePercent float64 `json:"revenue_percent" gorm:"default:0"`

	// Business Minimum Guarantee: earnings floor applied after scheme
	// computation, nil when the scheme carries no guarantee
	BMGAmount *float64 `json:"bmg_amount"`

	BranchID  *uint `json:"branch_id" gorm:"index"` // nil = global scheme
	IsDefault bool  `json:"is_default" gorm:"default:false"`
	IsActive  bool  `json:"is_active" gorm:"default:true"`
}

// Scheme type constants
const (
	SchemeTypeFixed   = "fixed"
	SchemeTypePerTrip = "per_trip"
	SchemeTypeSlab    = "slab" // percentage of revenue
	SchemeTypeMixed   = "mixed"
)

// BeforeCreate hook to auto-generate SchemeID
func (s *DutyScheme) BeforeCreate(tx *gorm.DB) error {
	if s.SchemeID == "" {
		s.SchemeID = fmt.Sprintf("SC%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// ValidSchemeType reports whether t is one of the four scheme shapes
func ValidSchemeType(t string) bool {
	switch t {
	case SchemeTypeFixed, SchemeTypePerTrip, SchemeTypeSlab, SchemeTypeMixed:
		return true
	}
	return false
}
