package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the externally managed identity row. It is read-only here and
// serves as the per-user lock target for ledger writes.
type User struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
