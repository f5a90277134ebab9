package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ppdb_backend/internals/features/whatsapp/model"
)

type Recipient struct {
	Name         string
	Phone        string
	Audience     string
	Gender       string
	RegistrantID *uuid.UUID
	Vars         map[string]string
}

type Job struct {
	Event        string
	TemplateCode string
	Body         string // isi manual, menggantikan template
	Templates    []model.Template
	Vars         map[string]string
	Recipients   []Recipient
	CreatedBy    *uuid.UUID
}

type Result struct {
	RecipientName string     `json:"recipient_name"`
	Audience      string     `json:"audience"`
	Phone         string     `json:"phone"`
	Message       string     `json:"message"`
	URL           string     `json:"url"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	RegistrantID  *uuid.UUID `json:"registrant_id,omitempty"`
}

type LogWriter interface {
	CreateLogs(ctx context.Context, logs []model.DispatchLog) error
}

var (
	ErrInvalidPhone  = errors.New("nomor WhatsApp tidak valid")
	ErrEmptyTemplate = errors.New("template pesan tidak ditemukan")
)

// Dispatcher membangun pesan per penerima lalu mengirim paralel terbatas.
// Sender nil = mode tautan (status link).
type Dispatcher struct {
	Sender      Sender
	Concurrency int
	Logs        LogWriter
}

func NewDispatcher(sender Sender, concurrency int, logs LogWriter) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Dispatcher{Sender: sender, Concurrency: concurrency, Logs: logs}
}

func mergeVars(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}

// Build menyiapkan pesan & tautan tanpa mengirim.
func (d *Dispatcher) Build(job Job, rc Recipient) Result {
	res := Result{RecipientName: rc.Name, Audience: rc.Audience, RegistrantID: rc.RegistrantID}

	vars := mergeVars(job.Vars, rc.Vars, map[string]string{
		"penerima": rc.Name,
		"sapaan":   Sapaan(rc.Audience, rc.Gender),
	})
	body := job.Body
	if body == "" {
		body = Resolve(job.Templates, job.TemplateCode, rc.Audience, rc.Gender)
	}
	if body == "" {
		res.Status, res.Error = model.StatusSkipped, ErrEmptyTemplate.Error()
		return res
	}
	res.Message = Render(body, vars)

	phone, ok := NormalizePhone(rc.Phone)
	if !ok {
		res.Phone = rc.Phone
		res.Status, res.Error = model.StatusSkipped, ErrInvalidPhone.Error()
		return res
	}
	res.Phone = phone
	res.URL = Link(phone, res.Message)
	res.Status = model.StatusLink
	return res
}

// Dispatch: satu hasil per penerima (urutan sama). Kegagalan kirim tidak menggagalkan batch.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) []Result {
	results := make([]Result, len(job.Recipients))
	for i, rc := range job.Recipients {
		results[i] = d.Build(job, rc)
	}

	if d.Sender != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(d.Concurrency)
		for i := range results {
			if results[i].Status != model.StatusLink {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					results[i].Status, results[i].Error = model.StatusFailed, err.Error()
					return nil
				}
				if err := d.Sender.Send(gctx, results[i].Phone, results[i].Message); err != nil {
					results[i].Status, results[i].Error = model.StatusFailed, err.Error()
					return nil
				}
				results[i].Status = model.StatusSent
				return nil
			})
		}
		_ = g.Wait()
	}

	d.writeLogs(ctx, job, results)
	return results
}

func (d *Dispatcher) writeLogs(ctx context.Context, job Job, results []Result) {
	if d.Logs == nil || len(results) == 0 {
		return
	}
	code := job.TemplateCode
	if code == "" && job.Body != "" {
		code = "custom"
	}
	logs := make([]model.DispatchLog, 0, len(results))
	for _, r := range results {
		logs = append(logs, model.DispatchLog{
			Event:         job.Event,
			TemplateCode:  code,
			Audience:      r.Audience,
			RecipientName: r.RecipientName,
			Phone:         r.Phone,
			Message:       r.Message,
			URL:           r.URL,
			Status:        r.Status,
			Error:         r.Error,
			RegistrantID:  r.RegistrantID,
			CreatedBy:     job.CreatedBy,
		})
	}
	if err := d.Logs.CreateLogs(context.WithoutCancel(ctx), logs); err != nil {
		zap.L().Warn("simpan log WhatsApp gagal", zap.String("event", job.Event), zap.Error(err))
	}
}

// Count merangkum hasil per status.
func Count(results []Result) map[string]int {
	out := map[string]int{}
	for _, r := range results {
		out[r.Status]++
	}
	return out
}
