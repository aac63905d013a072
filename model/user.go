package model

import (
	"strings"
	"time"
)

// Role is the closed set of account capabilities.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool { return r == RoleStudent || r == RoleAdmin }

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         Role      `json:"role" bson:"role"`
	Avatar       string    `json:"avatar" bson:"avatar"`
	CreatedAt    time.Time `json:"createdAt" bson:"created_at"`
}

// NormalizeEmail case-folds and trims an address; accounts and codes are keyed on it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupReq represents user registration payload
// swagger:model SignupReq
type SignupReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdateReq is a self-service edit. The password only changes when both
// CurrentPassword and NewPassword are present.
// swagger:model ProfileUpdateReq
type ProfileUpdateReq struct {
	Name            *string `json:"name"`
	Avatar          *string `json:"avatar"`
	CurrentPassword *string `json:"currentPassword"`
	NewPassword     *string `json:"newPassword" validate:"omitempty,min=6"`
}

// Caller is the authenticated account behind a request.
type Caller struct {
	ID   string
	Role Role
}
