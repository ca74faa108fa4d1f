package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/99minutos/identity-api/internal/core/domain"
)

type nopAuditSink struct{}

func (nopAuditSink) Record(domain.AuditEvent) {}

// newAuditEvent stamps an event with the acting identity taken from ctx.
func newAuditEvent(ctx context.Context, typ domain.AuditEventType, subject, detail string) domain.AuditEvent {
	var actor string
	if id := domain.IdentityFromContext(ctx); id != nil {
		actor = id.Subject()
	}
	return domain.AuditEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Actor:      actor,
		Subject:    subject,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}
}
