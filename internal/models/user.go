package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// User represents a registered rider (PostgreSQL)
type User struct {
	gorm.Model            `json:"-"`
	ID                    uint   `json:"id" gorm:"primaryKey"`
	Name                  string `json:"name"`
	Email                 string `json:"email" gorm:"uniqueIndex"`
	Password              string `json:"-"` // bcrypt hash, never serialized
	ProfileImage          string `json:"profileImage"`
	BikeType              string `json:"bikeType"`
	MTBLevel              string `json:"mtbLevel"`
	EmergencyContactName  string `json:"emergencyContactName"`
	EmergencyContactPhone string `json:"emergencyContactPhone"`
	FirebaseUID           string `json:"firebase_uid,omitempty" gorm:"index"` // set only for federated logins
}

// UserCompact is the public projection embedded in API responses.
type UserCompact struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

// ToCompact returns the public projection of the user.
func (u *User) ToCompact() UserCompact {
	return UserCompact{ID: u.ID, Name: u.Name, ProfileImage: u.ProfileImage}
}

type RegisterRequest struct {
	Name                  string `form:"name" validate:"required,min=2,max=50"`
	Email                 string `form:"email" validate:"required,email"`
	Password              string `form:"password" validate:"required,min=8"`
	BikeType              string `form:"bikeType" validate:"omitempty,max=50"`
	MTBLevel              string `form:"mtbLevel" validate:"omitempty,max=50"`
	EmergencyContactName  string `form:"emergencyContactName" validate:"required,max=100"`
	EmergencyContactPhone string `form:"emergencyContactPhone" validate:"required,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name                  string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	BikeType              string `json:"bikeType,omitempty" validate:"omitempty,max=50"`
	MTBLevel              string `json:"mtbLevel,omitempty" validate:"omitempty,max=50"`
	EmergencyContactName  string `json:"emergencyContactName,omitempty" validate:"omitempty,max=100"`
	EmergencyContactPhone string `json:"emergencyContactPhone,omitempty" validate:"omitempty,max=30"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
