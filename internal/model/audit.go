package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	StaffID    uuid.UUID       `db:"staff_id" json:"staff_id"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   uuid.UUID       `db:"entity_id" json:"entity_id"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

type AuditFilters struct {
	StaffID    uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
}
