package models

import (
	"time"
)

// RefreshToken backs the "remember me" login. A token is usable only while
// IsValid is set and the expiry has not passed.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Token     string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IsValid   bool      `gorm:"default:true" json:"is_valid"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *RefreshToken) Usable(now time.Time) bool {
	return t.IsValid && now.Before(t.ExpiresAt)
}
