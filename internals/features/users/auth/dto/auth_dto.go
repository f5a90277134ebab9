package dto

import (
	"time"

	"github.com/google/uuid"

	"ppdb_backend/internals/features/users/auth/model"
)

type RegisterRequest struct {
	Email     string     `json:"email" validate:"required,email,max=255"`
	Password  string     `json:"password" validate:"required,min=8,max=72"`
	FullName  string     `json:"full_name" validate:"required,min=3,max=150"`
	UserName  string     `json:"user_name" validate:"omitempty,min=3,max=50"`
	Phone     string     `json:"phone" validate:"required,phone_id"`
	Gender    string     `json:"gender" validate:"required,oneof=L P"`
	JalurID   *uuid.UUID `json:"jalur_id"`
	JenjangID *uuid.UUID `json:"jenjang_id"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// CreateStaffRequest: admin membuat akun panitia/bendahara/admin.
type CreateStaffRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=3,max=150"`
	UserName string `json:"user_name" validate:"omitempty,min=3,max=50"`
	Phone    string `json:"phone" validate:"omitempty,phone_id"`
	Gender   string `json:"gender" validate:"omitempty,oneof=L P"`
	Role     string `json:"role" validate:"required,oneof=admin panitia bendahara"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=3,max=150"`
	Phone    *string `json:"phone" validate:"omitempty,phone_id"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=L P"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin panitia bendahara calon_siswa"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateUserRequest) ToUpdates() map[string]any {
	m := map[string]any{}
	if r.FullName != nil {
		m["full_name"] = *r.FullName
	}
	if r.Phone != nil {
		m["phone"] = *r.Phone
	}
	if r.Gender != nil {
		m["gender"] = *r.Gender
	}
	if r.Role != nil {
		m["role"] = *r.Role
	}
	if r.IsActive != nil {
		m["is_active"] = *r.IsActive
	}
	return m
}

type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserName    string     `json:"user_name"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       *string    `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Gender      string     `json:"gender"`
	IsActive    bool       `json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromUser(u model.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		UserName:    u.UserName,
		FullName:    u.FullName,
		Email:       u.Email,
		Phone:       u.Phone,
		Role:        u.Role,
		Gender:      u.Gender,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func FromUsers(list []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, FromUser(u))
	}
	return out
}

type TokenResponse struct {
	AccessToken        string       `json:"access_token"`
	TokenType          string       `json:"token_type"`
	ExpiresAt          time.Time    `json:"expires_at"`
	User               UserResponse `json:"user"`
	RegistrantID       *uuid.UUID   `json:"registrant_id,omitempty"`
	RegistrationNumber string       `json:"registration_number,omitempty"`
}
