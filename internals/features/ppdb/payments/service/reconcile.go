package service

import (
	"sort"

	"github.com/google/uuid"

	"ppdb_backend/internals/constants"
	biayaModel "ppdb_backend/internals/features/master/biaya/model"
	"ppdb_backend/internals/features/ppdb/payments/model"
	helper "ppdb_backend/internals/helpers"
)

/* =======================================================================
   Rekonsiliasi tagihan vs pembayaran (tanpa I/O)
======================================================================= */

const (
	LineAvailable = "available"
	LinePending   = "pending"
	LinePaid      = "paid"
	LineRejected  = "rejected"
)

type Line struct {
	Biaya         biayaModel.Biaya `json:"biaya"`
	Status        string           `json:"status"`
	PaidAmount    int64            `json:"paid_amount"`
	PendingAmount int64            `json:"pending_amount"`
	RejectionNote string           `json:"rejection_note,omitempty"`
	Payments      []model.Payment  `json:"payments"`
	AmountText    string           `json:"amount_text"`
}

// CanSubmit: baris tersedia atau ditolak boleh dibayar lagi.
func (l Line) CanSubmit() bool {
	return l.Status == LineAvailable || l.Status == LineRejected
}

type Summary struct {
	TotalBill       int64  `json:"total_bill"`
	TotalPaid       int64  `json:"total_paid"`
	TotalPending    int64  `json:"total_pending"`
	Outstanding     int64  `json:"outstanding"`
	CountAvailable  int    `json:"count_available"`
	CountPending    int    `json:"count_pending"`
	CountPaid       int    `json:"count_paid"`
	CountRejected   int    `json:"count_rejected"`
	IsSettled       bool   `json:"is_settled"`
	OutstandingText string `json:"outstanding_text"`
}

type Reconciliation struct {
	Lines     []Line  `json:"lines"`
	Available []Line  `json:"available"`
	Pending   []Line  `json:"pending"`
	Paid      []Line  `json:"paid"`
	Rejected  []Line  `json:"rejected"`
	Summary   Summary `json:"summary"`
}

// Line mencari baris untuk biaya tertentu.
func (r Reconciliation) Line(biayaID uuid.UUID) (Line, bool) {
	for _, l := range r.Lines {
		if l.Biaya.ID == biayaID {
			return l, true
		}
	}
	return Line{}, false
}

// ApplicableBiaya: biaya aktif yang berlaku untuk jalur/jenjang pendaftar, urut sort_order.
func ApplicableBiaya(all []biayaModel.Biaya, jalurID, jenjangID *uuid.UUID) []biayaModel.Biaya {
	out := make([]biayaModel.Biaya, 0, len(all))
	for _, b := range all {
		if b.AppliesTo(jalurID, jenjangID) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Reconcile memetakan pembayaran ke setiap biaya; pembayaran untuk biaya lain diabaikan.
func Reconcile(biaya []biayaModel.Biaya, payments []model.Payment) Reconciliation {
	byBiaya := make(map[uuid.UUID][]model.Payment, len(biaya))
	for _, p := range payments {
		byBiaya[p.BiayaID] = append(byBiaya[p.BiayaID], p)
	}

	rec := Reconciliation{
		Lines:     make([]Line, 0, len(biaya)),
		Available: []Line{},
		Pending:   []Line{},
		Paid:      []Line{},
		Rejected:  []Line{},
	}
	settled := true

	for _, b := range biaya {
		ps := byBiaya[b.ID]
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].CreatedAt.Before(ps[j].CreatedAt) })

		line := Line{Biaya: b, Payments: ps, AmountText: helper.FormatRupiah(b.AmountIDR)}
		if line.Payments == nil {
			line.Payments = []model.Payment{}
		}

		var accepted, pending, rejected int
		var lastRejected *model.Payment
		for i := range ps {
			switch ps[i].Status {
			case constants.ReviewAccepted:
				accepted++
				line.PaidAmount += ps[i].AmountIDR
			case constants.ReviewPending:
				pending++
				line.PendingAmount += ps[i].AmountIDR
			case constants.ReviewRejected:
				rejected++
				lastRejected = &ps[i]
			}
		}

		switch {
		case accepted > 0:
			line.Status = LinePaid
			line.PendingAmount = 0
		case pending > 0:
			line.Status = LinePending
		case rejected > 0:
			line.Status = LineRejected
			line.RejectionNote = lastRejected.AdminNote
		default:
			line.Status = LineAvailable
		}

		rec.Summary.TotalBill += b.AmountIDR
		rec.Summary.TotalPaid += line.PaidAmount
		rec.Summary.TotalPending += line.PendingAmount

		switch line.Status {
		case LinePaid:
			rec.Paid = append(rec.Paid, line)
			rec.Summary.CountPaid++
		case LinePending:
			rec.Pending = append(rec.Pending, line)
			rec.Summary.CountPending++
		case LineRejected:
			rec.Rejected = append(rec.Rejected, line)
			rec.Summary.CountRejected++
		default:
			rec.Available = append(rec.Available, line)
			rec.Summary.CountAvailable++
		}
		if b.IsMandatory && line.Status != LinePaid {
			settled = false
		}
		rec.Lines = append(rec.Lines, line)
	}

	rec.Summary.Outstanding = rec.Summary.TotalBill - rec.Summary.TotalPaid
	if rec.Summary.Outstanding < 0 {
		rec.Summary.Outstanding = 0
	}
	rec.Summary.IsSettled = settled
	rec.Summary.OutstandingText = helper.FormatRupiah(rec.Summary.Outstanding)
	return rec
}
