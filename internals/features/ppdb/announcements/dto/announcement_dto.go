package dto

import (
	"strings"
	"time"

	"ppdb_backend/internals/features/ppdb/announcements/model"
)

type CreateAnnouncementRequest struct {
	Title         string `json:"title" validate:"required,min=3,max=200"`
	Slug          string `json:"slug" validate:"omitempty,max=220"`
	Content       string `json:"content" validate:"required"`
	Target        string `json:"target" validate:"omitempty,oneof=admin panitia calon_siswa all"`
	IsPublished   bool   `json:"is_published"`
	AttachmentURL string `json:"attachment_url" validate:"omitempty,url"`
}

func (r *CreateAnnouncementRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Target = strings.ToLower(strings.TrimSpace(r.Target))
	if r.Target == "" {
		r.Target = "all"
	}
}

func (r CreateAnnouncementRequest) ToModel(now time.Time) model.Announcement {
	m := model.Announcement{
		Title:         r.Title,
		Content:       r.Content,
		Target:        r.Target,
		AttachmentURL: r.AttachmentURL,
	}
	m.SetPublished(r.IsPublished, now)
	return m
}

type UpdateAnnouncementRequest struct {
	Title         *string `json:"title" validate:"omitempty,min=3,max=200"`
	Slug          *string `json:"slug" validate:"omitempty,max=220"`
	Content       *string `json:"content"`
	Target        *string `json:"target" validate:"omitempty,oneof=admin panitia calon_siswa all"`
	AttachmentURL *string `json:"attachment_url" validate:"omitempty,url"`
}

func (r UpdateAnnouncementRequest) Apply(m *model.Announcement) {
	if r.Title != nil {
		m.Title = strings.TrimSpace(*r.Title)
	}
	if r.Content != nil {
		m.Content = *r.Content
	}
	if r.Target != nil {
		m.Target = strings.ToLower(strings.TrimSpace(*r.Target))
	}
	if r.AttachmentURL != nil {
		m.AttachmentURL = *r.AttachmentURL
		m.AttachmentObject = ""
	}
}

type PublishRequest struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}
