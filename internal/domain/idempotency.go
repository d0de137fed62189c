// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and engine layers.
package domain

import "time"

// Idempotency records a previously processed inbound message, keyed by
// (identity, key). Messaging transports redeliver; replaying a recorded key
// must not advance the conversation a second time, so the webhook consults
// this table before handing a message to the engine.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Identity  string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_identity_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_identity_key,priority:2"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
