package dto

import (
	"strings"

	"ppdb_backend/internals/features/master/contacts/model"
)

type CreateContactRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=120"`
	Role     string `json:"role" validate:"required,oneof=panitia bendahara"`
	Gender   string `json:"gender" validate:"omitempty,oneof=L P"`
	Phone    string `json:"phone" validate:"required,phone_id"`
	IsActive *bool  `json:"is_active"`
}

func (r CreateContactRequest) ToModel() model.Contact {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.Contact{
		Name:     strings.TrimSpace(r.Name),
		Role:     r.Role,
		Gender:   r.Gender,
		Phone:    strings.TrimSpace(r.Phone),
		IsActive: active,
	}
}

type UpdateContactRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=2,max=120"`
	Role     *string `json:"role" validate:"omitempty,oneof=panitia bendahara"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=L P"`
	Phone    *string `json:"phone" validate:"omitempty,phone_id"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateContactRequest) ToUpdates() map[string]any {
	up := map[string]any{}
	if r.Name != nil {
		up["name"] = strings.TrimSpace(*r.Name)
	}
	if r.Role != nil {
		up["role"] = *r.Role
	}
	if r.Gender != nil {
		up["gender"] = *r.Gender
	}
	if r.Phone != nil {
		up["phone"] = strings.TrimSpace(*r.Phone)
	}
	if r.IsActive != nil {
		up["is_active"] = *r.IsActive
	}
	return up
}
