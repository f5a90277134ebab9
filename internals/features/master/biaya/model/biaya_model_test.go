package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBiayaAppliesTo(t *testing.T) {
	jalur := uuid.New()
	jenjang := uuid.New()
	other := uuid.New()

	all := Biaya{IsActive: true}
	assert.True(t, all.AppliesTo(nil, nil))
	assert.True(t, all.AppliesTo(&jalur, &jenjang))

	onlyJalur := Biaya{IsActive: true, JalurID: &jalur}
	assert.True(t, onlyJalur.AppliesTo(&jalur, nil))
	assert.False(t, onlyJalur.AppliesTo(&other, &jenjang))
	assert.False(t, onlyJalur.AppliesTo(nil, &jenjang))

	both := Biaya{IsActive: true, JalurID: &jalur, JenjangID: &jenjang}
	assert.True(t, both.AppliesTo(&jalur, &jenjang))
	assert.False(t, both.AppliesTo(&jalur, &other))

	inactive := Biaya{}
	assert.False(t, inactive.AppliesTo(nil, nil))
}
