package dto

import (
	"strings"

	"ppdb_backend/internals/features/whatsapp/model"
)

type CreateTemplateRequest struct {
	Code     string `json:"code" validate:"required,min=3,max=60"`
	Audience string `json:"audience" validate:"required,oneof=calon_siswa panitia bendahara"`
	Gender   string `json:"gender" validate:"omitempty,oneof=L P"`
	Title    string `json:"title" validate:"max=150"`
	Body     string `json:"body" validate:"required,max=4000"`
	IsActive *bool  `json:"is_active"`
}

func (r *CreateTemplateRequest) Normalize() {
	r.Code = strings.ToLower(strings.TrimSpace(r.Code))
	r.Audience = strings.ToLower(strings.TrimSpace(r.Audience))
	r.Gender = strings.ToUpper(strings.TrimSpace(r.Gender))
	r.Title = strings.TrimSpace(r.Title)
}

func (r CreateTemplateRequest) ToModel() model.Template {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.Template{
		Code:     r.Code,
		Audience: r.Audience,
		Gender:   r.Gender,
		Title:    r.Title,
		Body:     r.Body,
		IsActive: active,
	}
}

type UpdateTemplateRequest struct {
	Gender   *string `json:"gender" validate:"omitempty,oneof=L P"`
	Title    *string `json:"title" validate:"omitempty,max=150"`
	Body     *string `json:"body" validate:"omitempty,min=1,max=4000"`
	IsActive *bool   `json:"is_active"`
}

func (r UpdateTemplateRequest) Apply(m *model.Template) {
	if r.Gender != nil {
		m.Gender = strings.ToUpper(strings.TrimSpace(*r.Gender))
	}
	if r.Title != nil {
		m.Title = strings.TrimSpace(*r.Title)
	}
	if r.Body != nil {
		m.Body = *r.Body
	}
	if r.IsActive != nil {
		m.IsActive = *r.IsActive
	}
}

type PreviewRequest struct {
	TemplateCode string            `json:"template_code" validate:"required_without=Body,max=60"`
	Body         string            `json:"body" validate:"max=4000"`
	Audience     string            `json:"audience" validate:"required,oneof=calon_siswa panitia bendahara"`
	Gender       string            `json:"gender" validate:"omitempty,oneof=L P"`
	RegistrantID string            `json:"registrant_id" validate:"omitempty,uuid"`
	Phone        string            `json:"phone" validate:"omitempty,max=30"`
	Vars         map[string]string `json:"vars"`
}

type BroadcastFilter struct {
	Status    string `json:"status" validate:"omitempty,oneof=draft submitted verified accepted rejected"`
	Gender    string `json:"gender" validate:"omitempty,oneof=L P"`
	JalurID   string `json:"jalur_id" validate:"omitempty,uuid"`
	JenjangID string `json:"jenjang_id" validate:"omitempty,uuid"`
}

type BroadcastRequest struct {
	Audience     string            `json:"audience" validate:"required,oneof=calon_siswa panitia bendahara"`
	TemplateCode string            `json:"template_code" validate:"required_without=Body,max=60"`
	Body         string            `json:"body" validate:"max=4000"`
	Filters      BroadcastFilter   `json:"filters"`
	Vars         map[string]string `json:"vars"`
}
