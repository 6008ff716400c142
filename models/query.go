package models

import (
	"time"

	"gorm.io/datatypes"
)

// QueryRecord statuses. Transitions are one-directional:
// pending → completed XOR pending → failed.
const (
	QueryPending   = "pending"
	QueryCompleted = "completed"
	QueryFailed    = "failed"
)

// QueryRecord is one submitted query and its lifecycle. The id is generated
// application-side so the failure path can re-create the row under the same
// id after the transaction that inserted it was rolled back.
type QueryRecord struct {
	Id           string         `json:"id" gorm:"primaryKey"`
	UserId       string         `json:"user_id" gorm:"index;not null"`
	User         User           `json:"-" gorm:"foreignKey:UserId;references:Id;constraint:OnDelete:CASCADE"`
	QueryText    string         `json:"query_text" gorm:"not null"`
	ResponseText *string        `json:"response_text"`
	Status       string         `json:"status" gorm:"type:VARCHAR(20);default:'pending';index"`
	ErrorMessage string         `json:"error_message,omitempty"`
	Metadata     datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
}
