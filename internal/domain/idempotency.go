package domain

import "time"

// Idempotency records a previously processed unsafe request, keyed by
// (customer_id, key). It lets the events endpoint deduplicate client retries
// without appending the same behavioral event twice.
type Idempotency struct {
	ID         string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	CustomerID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_customer_key,priority:1"`
	Key        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_customer_key,priority:2"`
	LogID      string    `gorm:"type:TEXT NOT NULL"`
	Status     int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt  time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt  time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
