// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the outcome of a previously processed unsafe request,
// keyed by (client_id, scope, key). Scope identifies the operation (for
// example "POST /api/v1/errors") so one key cannot be replayed across routes.
// ResourceID points at the entry created by the original request.
type Idempotency struct {
	ID         string    `gorm:"primaryKey"`
	ClientID   string    `gorm:"not null;uniqueIndex:ux_client_scope_key,priority:1"`
	Scope      string    `gorm:"not null;uniqueIndex:ux_client_scope_key,priority:2"`
	Key        string    `gorm:"not null;uniqueIndex:ux_client_scope_key,priority:3"`
	ResourceID uint      `gorm:"not null"`
	Status     int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
