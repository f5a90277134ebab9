package dto

import "ppdb_backend/internals/features/master/jalur/model"

type CreateJalurRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=120"`
	Slug          string `json:"slug" validate:"omitempty,max=140"`
	Description   string `json:"description"`
	IsScholarship bool   `json:"is_scholarship"`
	IsActive      *bool  `json:"is_active"`
	SortOrder     int    `json:"sort_order"`
}

func (r CreateJalurRequest) ToModel() model.Jalur {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.Jalur{
		Name:          r.Name,
		Description:   r.Description,
		IsScholarship: r.IsScholarship,
		IsActive:      active,
		SortOrder:     r.SortOrder,
	}
}

type UpdateJalurRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=120"`
	Slug          *string `json:"slug" validate:"omitempty,max=140"`
	Description   *string `json:"description"`
	IsScholarship *bool   `json:"is_scholarship"`
	IsActive      *bool   `json:"is_active"`
	SortOrder     *int    `json:"sort_order"`
}

// Apply menerapkan perubahan parsial ke model.
func (r UpdateJalurRequest) Apply(m *model.Jalur) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.IsScholarship != nil {
		m.IsScholarship = *r.IsScholarship
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
	if r.SortOrder != nil {
		m.SortOrder = *r.SortOrder
	}
}
