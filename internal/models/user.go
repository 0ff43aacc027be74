package models

import "time"

// Role classifies an actor as supplied by the identity provider.
type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleAdmin   Role = "admin"
)

// User is the local mirror of an identity-provider actor.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Role           Role      `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	GraduationYear string    `gorm:"size:32" json:"graduation_year,omitempty"`
	IsMuted        bool      `gorm:"not null;default:false" json:"is_muted"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
