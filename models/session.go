package models

import "time"

// Session is one login. At most one non-expired row per user is
// authoritative; a new login expires all prior rows before inserting its own.
type Session struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserId       string    `json:"user_id" gorm:"index;not null"`
	User         User      `json:"-" gorm:"foreignKey:UserId;references:Id;constraint:OnDelete:CASCADE"`
	SessionToken string    `json:"-" gorm:"uniqueIndex;not null"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"index;not null"`
}
