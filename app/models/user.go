package models

import "gorm.io/gorm"

// Role values stored on User.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the authentication identity. A user owns zero or more products.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role     string `gorm:"size:50;default:user" json:"role"`

	Profile *UserProfile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserProfile carries optional contact details. One is created automatically
// for every new user (via the user.registered event).
type UserProfile struct {
	gorm.Model
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	PhoneNumber string `gorm:"size:15" json:"phone_number"`
	Address     string `gorm:"type:text" json:"address"`
	Bio         string `gorm:"size:500" json:"bio"`
}
