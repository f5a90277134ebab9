package dto

import (
	"time"

	"github.com/google/uuid"

	"ppdb_backend/internals/features/master/biaya/model"
)

const dateLayout = "2006-01-02"

type CreateBiayaRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=160"`
	AmountIDR   int64      `json:"amount_idr" validate:"required,gt=0"`
	Description string     `json:"description"`
	JalurID     *uuid.UUID `json:"jalur_id"`
	JenjangID   *uuid.UUID `json:"jenjang_id"`
	IsMandatory *bool      `json:"is_mandatory"`
	DueDate     string     `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive    *bool      `json:"is_active"`
	SortOrder   int        `json:"sort_order"`
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil
	}
	return &t
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (r CreateBiayaRequest) ToModel() model.Biaya {
	return model.Biaya{
		Name:        r.Name,
		AmountIDR:   r.AmountIDR,
		Description: r.Description,
		JalurID:     r.JalurID,
		JenjangID:   r.JenjangID,
		IsMandatory: boolOr(r.IsMandatory, true),
		DueDate:     parseDate(r.DueDate),
		IsActive:    boolOr(r.IsActive, true),
		SortOrder:   r.SortOrder,
	}
}

// Untuk JalurID/JenjangID/DueDate: ClearX=true mengosongkan nilai.
type UpdateBiayaRequest struct {
	Name         *string    `json:"name" validate:"omitempty,min=2,max=160"`
	AmountIDR    *int64     `json:"amount_idr" validate:"omitempty,gt=0"`
	Description  *string    `json:"description"`
	JalurID      *uuid.UUID `json:"jalur_id"`
	ClearJalur   bool       `json:"clear_jalur"`
	JenjangID    *uuid.UUID `json:"jenjang_id"`
	ClearJenjang bool       `json:"clear_jenjang"`
	IsMandatory  *bool      `json:"is_mandatory"`
	DueDate      *string    `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	ClearDueDate bool       `json:"clear_due_date"`
	IsActive     *bool      `json:"is_active"`
	SortOrder    *int       `json:"sort_order"`
}

func (r UpdateBiayaRequest) Apply(m *model.Biaya) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.AmountIDR != nil {
		m.AmountIDR = *r.AmountIDR
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	switch {
	case r.ClearJalur:
		m.JalurID = nil
	case r.JalurID != nil:
		m.JalurID = r.JalurID
	}
	switch {
	case r.ClearJenjang:
		m.JenjangID = nil
	case r.JenjangID != nil:
		m.JenjangID = r.JenjangID
	}
	if r.IsMandatory != nil {
		m.IsMandatory = *r.IsMandatory
	}
	switch {
	case r.ClearDueDate:
		m.DueDate = nil
	case r.DueDate != nil:
		m.DueDate = parseDate(*r.DueDate)
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
	if r.SortOrder != nil {
		m.SortOrder = *r.SortOrder
	}
}
