package entity

import (
	"time"
)

type ActionType string

const (
	ActionCreate ActionType = "Create"
	ActionUpdate ActionType = "Update"
	ActionDelete ActionType = "Delete"
)

type EntityType string

const (
	EntityPerson EntityType = "person"
	EntityTask   EntityType = "task"
)

type Audit struct {
	ID         int64      `json:"id"`
	MessageID  string     `json:"message_id"`
	Action     ActionType `json:"action"`
	EntityType EntityType `json:"entity_type"`
	EntityID   int64      `json:"entity_id"`
	OldValues  *string    `json:"old_values"`
	NewValues  *string    `json:"new_values"`
	Changes    *string    `json:"changes"`
	ChangedAt  time.Time  `json:"changed_at"`
}

type AuditMessage struct {
	ID         string         `json:"id"`
	Action     ActionType     `json:"action"`
	EntityType EntityType     `json:"entity_type"`
	EntityID   int64          `json:"entity_id"`
	OldValues  map[string]any `json:"old_values"`
	NewValues  map[string]any `json:"new_values"`
	Changes    map[string]any `json:"changes"`
	Timestamp  time.Time      `json:"timestamp"`
}
