package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimeClocker_Now(t *testing.T) {
	before := time.Now()
	got := New().Now()

	assert.False(t, got.Before(before))
}

func TestFixed_Now(t *testing.T) {
	at := time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)

	var c Clocker = Fixed(at)
	assert.True(t, at.Equal(c.Now()))
	assert.True(t, at.Equal(c.Now()))
}
