package domain

import "time"

// AuditEventType names a security-relevant action.
type AuditEventType string

const (
	AuditLoginSucceeded  AuditEventType = "login_succeeded"
	AuditLoginFailed     AuditEventType = "login_failed"
	AuditUserCreated     AuditEventType = "user_created"
	AuditUserUpdated     AuditEventType = "user_updated"
	AuditUserDeleted     AuditEventType = "user_deleted"
	AuditPasswordChanged AuditEventType = "password_changed"
	AuditRoleGranted     AuditEventType = "role_granted"
	AuditRoleRevoked     AuditEventType = "role_revoked"
	AuditRoleCreated     AuditEventType = "role_created"
	AuditRoleUpdated     AuditEventType = "role_updated"
	AuditRoleDeleted     AuditEventType = "role_deleted"
)

// AuditEvent records who did what to whom. Subject is the username (or role
// name) acted upon; Detail is free text and must never carry secrets.
type AuditEvent struct {
	ID         string         `json:"id"`
	Type       AuditEventType `json:"type"`
	Actor      string         `json:"actor,omitempty"`
	Subject    string         `json:"subject"`
	Detail     string         `json:"detail,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
