package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	GenderUnspecified = "unspecified"
	GenderMale        = "male"
	GenderFemale      = "female"
)

// DefaultAvatar is the shared placeholder assigned to new accounts. It is
// never deleted during avatar replacement.
const DefaultAvatar = "/static/avatars/default.png"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // Hash
	Role      string    `gorm:"size:20;default:'user';not null" json:"role"`
	Gender    string    `gorm:"size:20;default:'unspecified';not null" json:"gender"`
	Avatar    string    `gorm:"default:'/static/avatars/default.png'" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// No DeletedAt for hard delete
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
