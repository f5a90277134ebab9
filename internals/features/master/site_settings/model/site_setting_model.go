package model

import (
	"strings"
	"time"
)

const (
	KeySchoolName          = "school_name"
	KeyTagline             = "tagline"
	KeyAddress             = "address"
	KeyPhone               = "phone"
	KeyEmail               = "email"
	KeyAcademicYear        = "academic_year"
	KeyRegistrationOpenAt  = "registration_open_at"
	KeyRegistrationCloseAt = "registration_close_at"
)

type SiteSetting struct {
	Key       string    `gorm:"size:80;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null;default:''" json:"value"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SiteSetting) TableName() string { return "site_settings" }

// ToMap: rows -> key/value
func ToMap(rows []SiteSetting) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out
}

var jakarta = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*3600)
	}
	return loc
}()

// parseBound menerima RFC3339 atau YYYY-MM-DD (WIB). Tanggal tutup berlaku sampai akhir hari.
func parseBound(v string, endOfDay bool) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", v, jakarta); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, true
	}
	return time.Time{}, false
}

// RegistrationOpen: now di antara open/close; batas yang kosong dianggap tak terbatas.
func RegistrationOpen(settings map[string]string, now time.Time) bool {
	if open, ok := parseBound(settings[KeyRegistrationOpenAt], false); ok && now.Before(open) {
		return false
	}
	if closeAt, ok := parseBound(settings[KeyRegistrationCloseAt], true); ok && now.After(closeAt) {
		return false
	}
	return true
}
