package service

import (
	"context"
	"encoding/json"
	"fmt"

	"solarflow/internal/access"
	"solarflow/internal/model"
	"solarflow/internal/observability"
	"solarflow/internal/repository"

	"github.com/google/uuid"
)

// Publisher pushes committed changes to live subscribers (the websocket hub)
type Publisher interface {
	Publish(event string, data interface{})
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}

// recorder writes audit rows inside a transaction and announces the change
// once it has committed.
type recorder struct {
	audit  repository.AuditRepository
	events Publisher
}

func newRecorder(audit repository.AuditRepository, events Publisher) recorder {
	if events == nil {
		events = nopPublisher{}
	}
	return recorder{audit: audit, events: events}
}

func (r recorder) log(ctx context.Context, caller access.Caller, action, entityID, entityName string, details interface{}) error {
	var uid *uuid.UUID
	if caller.ID != uuid.Nil {
		id := caller.ID
		uid = &id
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}

	entry := &model.AuditLog{
		UserID:     uid,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	}
	if err := r.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// committed counts the mutation and publishes "<entity>.<action>"
func (r recorder) committed(entity, action string, data interface{}) {
	observability.EntityMutations.WithLabelValues(entity, action).Inc()
	r.events.Publish(entity+"."+action, data)
}
