package dto

import (
	"strings"

	"github.com/lib/pq"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/jenjang/model"
)

type CreateJenjangRequest struct {
	Name              string   `json:"name" validate:"required,min=2,max=120"`
	Slug              string   `json:"slug" validate:"omitempty,max=140"`
	Description       string   `json:"description"`
	Quota             int      `json:"quota" validate:"gte=0"`
	RequiredDocuments []string `json:"required_documents" validate:"omitempty,dive,required"`
	IsActive          *bool    `json:"is_active"`
	SortOrder         int      `json:"sort_order"`
}

type UpdateJenjangRequest struct {
	Name              *string   `json:"name" validate:"omitempty,min=2,max=120"`
	Slug              *string   `json:"slug" validate:"omitempty,max=140"`
	Description       *string   `json:"description"`
	Quota             *int      `json:"quota" validate:"omitempty,gte=0"`
	RequiredDocuments *[]string `json:"required_documents"`
	IsActive          *bool     `json:"is_active"`
	SortOrder         *int      `json:"sort_order"`
}

// NormalizeDocuments: lowercase, buang duplikat; kind tak dikenal dikembalikan di bad.
func NormalizeDocuments(in []string) (out pq.StringArray, bad []string) {
	seen := map[string]bool{}
	out = pq.StringArray{}
	for _, d := range in {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		if !constants.IsValidDocumentKind(d) {
			bad = append(bad, d)
			continue
		}
		out = append(out, d)
	}
	return out, bad
}

func (r CreateJenjangRequest) ToModel(docs pq.StringArray) model.Jenjang {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.Jenjang{
		Name:              r.Name,
		Description:       r.Description,
		Quota:             r.Quota,
		RequiredDocuments: docs,
		IsActive:          active,
		SortOrder:         r.SortOrder,
	}
}

func (r UpdateJenjangRequest) Apply(m *model.Jenjang, docs pq.StringArray) {
	if r.Name != nil {
		m.Name = *r.Name
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.Quota != nil {
		m.Quota = *r.Quota
	}
	if r.RequiredDocuments != nil {
		m.RequiredDocuments = docs
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
	if r.SortOrder != nil {
		m.SortOrder = *r.SortOrder
	}
}

// Jenjang + ketersediaan kuota untuk situs publik.
type JenjangAvailability struct {
	model.Jenjang
	Accepted  int64 `json:"accepted"`
	Remaining int64 `json:"remaining"`
}

func NewAvailability(j model.Jenjang, accepted int64) JenjangAvailability {
	rem := int64(j.Quota) - accepted
	if rem < 0 {
		rem = 0
	}
	return JenjangAvailability{Jenjang: j, Accepted: accepted, Remaining: rem}
}
