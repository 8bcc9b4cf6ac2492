package services

import (
	"fmt"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// LedgerService records manual ledger entries (advances, penalties,
// payouts, adjustments). Duty completion and rejection write their
// entries through the same recordLedgerEntry path inside the duty
// transaction.
type LedgerService struct {
	store storage.Store
	audit *AuditService
}

// NewLedgerService creates a new ledger service
func NewLedgerService(store storage.Store, audit *AuditService) *LedgerService {
	return &LedgerService{store: store, audit: audit}
}

// recordLedgerEntry stamps the running balance and persists the entry
func recordLedgerEntry(tx storage.Store, entry *models.LedgerEntry) error {
	balance, err := tx.GetLedgerBalance(entry.DriverID)
	if err != nil {
		return err
	}
	entry.Balance = roundMoney(balance + entry.Amount)
	_, err = tx.CreateLedgerEntry(entry)
	return err
}

// RecordEntry adds a manual entry to a driver's ledger. Advances and
// penalties are stored as debits regardless of the sign supplied.
func (l *LedgerService) RecordEntry(driverID uint, entryType string, amount float64, note, recordedBy string) (*models.LedgerEntry, error) {
	if !models.ValidLedgerType(entryType) {
		return nil, fmt.Errorf("unknown ledger entry type %q", entryType)
	}

	if entryType == models.LedgerTypeAdvance || entryType == models.LedgerTypePenalty {
		if amount > 0 {
			amount = -amount
		}
	}

	var entry *models.LedgerEntry
	err := l.store.Transaction(func(tx storage.Store) error {
		if _, err := tx.GetDriver(driverID); err != nil {
			return err
		}
		entry = &models.LedgerEntry{
			DriverID:   driverID,
			Type:       entryType,
			Amount:     roundMoney(amount),
			Note:       note,
			RecordedBy: recordedBy,
		}
		return recordLedgerEntry(tx, entry)
	})
	if err != nil {
		return nil, err
	}

	l.audit.Record(recordedBy, models.AuditLedgerEntry, "ledger", entry.EntryID, map[string]interface{}{
		"driver_id": driverID,
		"type":      entryType,
		"amount":    entry.Amount,
	})
	return entry, nil
}
