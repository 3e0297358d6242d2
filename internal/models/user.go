package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User mirrors the identity supplied by the auth provider. The row exists so
// leaderboard and activity queries can join on it; it is provisioned by the
// auth middleware, never by the quiz engine itself.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Mobile   *string  `json:"mobile" gorm:"size:20"`
	Age      *int     `json:"age"`
	Role     UserRole `json:"role" gorm:"default:user;size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
