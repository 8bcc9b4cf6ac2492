package services

import (
	"encoding/json"
	"log"

	"github.com/jyothilaxmika/pls-travels-backend/internal/models"
	"github.com/jyothilaxmika/pls-travels-backend/internal/storage"
)

// AuditService writes audit records. Writes are fire-and-forget: failures
// are logged and never abort the business operation that produced them.
type AuditService struct {
	store storage.Store
}

// NewAuditService creates a new audit service
func NewAuditService(store storage.Store) *AuditService {
	return &AuditService{store: store}
}

// Record writes one audit entry
func (a *AuditService) Record(actorID, action, entityType, entityID string, details map[string]interface{}) {
	if a == nil || a.store == nil {
		return
	}

	var detailsJSON string
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			log.Printf("Failed to marshal audit details for %s: %v", action, err)
		} else {
			detailsJSON = string(raw)
		}
	}

	entry := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
	}
	if err := a.store.CreateAuditLog(entry); err != nil {
		log.Printf("Failed to write audit log %s/%s: %v", action, entityID, err)
	}
}
