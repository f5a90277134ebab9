package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationOpen(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, RegistrationOpen(map[string]string{}, now))
	assert.True(t, RegistrationOpen(map[string]string{
		KeyRegistrationOpenAt:  "2026-01-01",
		KeyRegistrationCloseAt: "2026-06-30",
	}, now))
	assert.False(t, RegistrationOpen(map[string]string{KeyRegistrationOpenAt: "2026-04-01"}, now))
	assert.False(t, RegistrationOpen(map[string]string{KeyRegistrationCloseAt: "2026-03-01T00:00:00Z"}, now))

	// tanggal tutup berlaku sampai akhir hari WIB
	lastDay := time.Date(2026, 6, 30, 20, 0, 0, 0, jakarta)
	assert.True(t, RegistrationOpen(map[string]string{KeyRegistrationCloseAt: "2026-06-30"}, lastDay))

	// nilai rusak diabaikan
	assert.True(t, RegistrationOpen(map[string]string{KeyRegistrationOpenAt: "besok"}, now))
}

func TestToMap(t *testing.T) {
	m := ToMap([]SiteSetting{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}})
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, m)
}
