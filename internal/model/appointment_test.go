package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKeyFor_NormalizesToUTC(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	instant := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, SlotKeyFor("Dr. Smith", instant), SlotKeyFor("Dr. Smith", instant.In(loc)))
	assert.Equal(t, "Dr. Smith|2026-10-01T14:30:00Z", SlotKeyFor("Dr. Smith", instant))
}

func TestSlotKeyFor_EscapesDelimiter(t *testing.T) {
	instant := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, `Dr. A\|B|2026-10-01T14:30:00Z`, SlotKeyFor("Dr. A|B", instant))
	assert.Equal(t, `Dr. A\\|2026-10-01T14:30:00Z`, SlotKeyFor(`Dr. A\`, instant))

	// distinct names must never share a key, delimiter characters included
	assert.NotEqual(t, SlotKeyFor("Dr. A|B", instant), SlotKeyFor("Dr. A", instant))
	assert.NotEqual(t, SlotKeyFor(`Dr. A\`, instant), SlotKeyFor(`Dr. A\\`, instant))
}

func TestSyncSlotKey(t *testing.T) {
	a := &Appointment{
		DoctorName:          "Dr. Smith",
		AppointmentDateTime: time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC),
		Status:              AppointmentStatusScheduled,
	}

	a.SyncSlotKey()
	require.NotNil(t, a.SlotKey)
	assert.Equal(t, "Dr. Smith|2026-10-01T14:30:00Z", *a.SlotKey)

	// cancelling releases the slot
	a.Status = AppointmentStatusCancelled
	a.SyncSlotKey()
	assert.Nil(t, a.SlotKey)
}
