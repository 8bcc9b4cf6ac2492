package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LedgerEntry is one line in a driver's financial ledger. Amount is signed:
// credits (earnings, payouts owed to the driver) are positive, debits
// (advances, penalties) are negative. Balance is the running balance after
// this entry.
type LedgerEntry struct {
	gorm.Model

	EntryID  string `json:"entry_id" gorm:"uniqueIndex"`
	DriverID uint   `json:"driver_id" gorm:"index"`
	DutyID   *uint  `json:"duty_id" gorm:"index"` // set for duty-generated entries

	Type       string  `json:"type"` // advance, penalty, payout, adjustment, duty_earning
	Amount     float64 `json:"amount"`
	Balance    float64 `json:"balance"`
	Note       string  `json:"note"`
	RecordedBy string  `json:"recorded_by"`
}

// Ledger entry type constants
const (
	LedgerTypeAdvance     = "advance"
	LedgerTypePenalty     = "penalty"
	LedgerTypePayout      = "payout"
	LedgerTypeAdjustment  = "adjustment"
	LedgerTypeDutyEarning = "duty_earning"
)

// BeforeCreate hook to auto-generate EntryID
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.EntryID == "" {
		e.EntryID = fmt.Sprintf("LG%d%03d", time.Now().Unix(), time.Now().Nanosecond()%1000)
	}
	return nil
}

// ValidLedgerType reports whether t is a known entry type
func ValidLedgerType(t string) bool {
	switch t {
	case LedgerTypeAdvance, LedgerTypePenalty, LedgerTypePayout,
		LedgerTypeAdjustment, LedgerTypeDutyEarning:
		return true
	}
	return false
}
