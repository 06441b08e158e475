package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/Yaesine/healthcare-appointment-system/internal/errors"
	"github.com/Yaesine/healthcare-appointment-system/internal/model"
)

// AppointmentRepository defines appointment persistence operations.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error)
	SlotTaken(ctx context.Context, doctorName string, at time.Time, excludeID uuid.UUID) (bool, error)
	Save(ctx context.Context, appointment *model.Appointment) error
}

type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository creates a new appointment repository.
func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

// Create inserts a new appointment. A duplicate slot key means another
// non-cancelled appointment already holds the doctor/time pair; the unique
// index is the authoritative conflict check, closing the check-then-act race
// between concurrent bookings.
func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrSlotTaken
		}
		return err
	}
	return nil
}

// FindByID finds an appointment by ID.
func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var appointment model.Appointment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// FindByUser lists all appointments owned by a user in creation order.
func (r *appointmentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

// SlotTaken reports whether a non-cancelled appointment other than excludeID
// already occupies the doctor/time pair. Pass uuid.Nil to exclude nothing.
// This is an early-exit optimization; the unique slot_key index remains the
// source of truth under concurrency.
func (r *appointmentRepository) SlotTaken(ctx context.Context, doctorName string, at time.Time, excludeID uuid.UUID) (bool, error) {
	q := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Where("doctor_name = ? AND appointment_date_time = ? AND status <> ?",
			doctorName, at.UTC(), model.AppointmentStatusCancelled)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists changes to an existing appointment, translating a duplicate
// slot key into the conflict error just like Create.
func (r *appointmentRepository) Save(ctx context.Context, appointment *model.Appointment) error {
	if err := r.db.WithContext(ctx).Save(appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrSlotTaken
		}
		return err
	}
	return nil
}
