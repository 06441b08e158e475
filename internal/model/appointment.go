package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment.
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

// Appointment represents a booked slot with a doctor, owned by a single user.
//
// SlotKey is the doctor/time pair encoded as a string while the appointment
// is active, and NULL once cancelled. The unique index on it is what
// actually enforces the no-double-booking rule: MySQL unique indexes ignore
// NULLs, so cancelled appointments release their slot.
type Appointment struct {
	ID                  uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	UserID              uuid.UUID         `json:"user_id" gorm:"type:char(36);not null;index"`
	DoctorName          string            `json:"doctor_name" gorm:"size:255;not null;index"`
	AppointmentDateTime time.Time         `json:"appointment_date_time" gorm:"not null"`
	Reason              string            `json:"reason,omitempty" gorm:"size:1024"`
	Status              AppointmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'SCHEDULED';index"`
	SlotKey             *string           `json:"-" gorm:"size:320;uniqueIndex"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// slotKeyEscaper makes the encoding injective: a literal "|" or "\" in a
// doctor name cannot collide with the delimiter or another name's escape.
var slotKeyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)

// SlotKeyFor encodes a doctor/time pair for the uniqueness constraint.
// Times are normalized to UTC so equal instants always collide.
func SlotKeyFor(doctorName string, at time.Time) string {
	return fmt.Sprintf("%s|%s", slotKeyEscaper.Replace(doctorName), at.UTC().Format(time.RFC3339))
}

// BeforeCreate sets UUID, default status and slot key before creating the record.
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = AppointmentStatusScheduled
	}
	a.SyncSlotKey()
	return nil
}

// SyncSlotKey recomputes SlotKey from the current doctor/time/status.
// Cancelled appointments carry a NULL key and no longer occupy their slot.
func (a *Appointment) SyncSlotKey() {
	if a.Status == AppointmentStatusCancelled {
		a.SlotKey = nil
		return
	}
	key := SlotKeyFor(a.DoctorName, a.AppointmentDateTime)
	a.SlotKey = &key
}
