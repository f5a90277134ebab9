package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ppdb_backend/internals/constants"
)

func TestVisibleTargets(t *testing.T) {
	assert.ElementsMatch(t, []string{"calon_siswa", "all"}, VisibleTargets(constants.RoleCalonSiswa))
	assert.ElementsMatch(t, []string{"panitia", "all"}, VisibleTargets(constants.RolePanitia))
	assert.Equal(t, []string{"all"}, VisibleTargets(constants.RoleBendahara))
	assert.Equal(t, []string{"all"}, VisibleTargets(""))
	assert.ElementsMatch(t, []string{"admin", "panitia", "calon_siswa", "all"}, VisibleTargets(constants.RoleAdmin))
}

func TestSetPublished(t *testing.T) {
	first := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	var a Announcement

	a.SetPublished(true, first)
	assert.True(t, a.IsPublished)
	assert.Equal(t, first, *a.PublishedAt)

	a.SetPublished(true, first.Add(time.Hour))
	assert.Equal(t, first, *a.PublishedAt, "terbit ulang tidak menggeser tanggal")

	a.SetPublished(false, first)
	assert.False(t, a.IsPublished)
	assert.Nil(t, a.PublishedAt)
}
