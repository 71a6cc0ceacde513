package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/pkg/enums"
)

// User is an account that can run calculations and buy unlimited access.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string     `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email        string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	FirstName    string     `gorm:"column:first_name;not null;default:''"`
	LastName     string     `gorm:"column:last_name;not null;default:''"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`
	IsStaff      bool       `gorm:"column:is_staff;not null;default:false"`
	IsSuperuser  bool       `gorm:"column:is_superuser;not null;default:false"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPrivileged reports whether the account bypasses the free usage counter.
func (u User) IsPrivileged() bool {
	return u.IsStaff || u.IsSuperuser
}

// Role maps the account flags onto the token role.
func (u User) Role() enums.UserRole {
	if u.IsPrivileged() {
		return enums.UserRoleStaff
	}
	return enums.UserRoleUser
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}
