package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Yaesine/healthcare-appointment-system/internal/cache"
	apperrors "github.com/Yaesine/healthcare-appointment-system/internal/errors"
	"github.com/Yaesine/healthcare-appointment-system/internal/model"
	"github.com/Yaesine/healthcare-appointment-system/internal/repository"
)

const appointmentListCacheTTL = time.Minute

// AppointmentService handles booking operations. Every operation is scoped to
// the authenticated user id supplied by the request authenticator.
type AppointmentService interface {
	Create(ctx context.Context, userID uuid.UUID, doctorName string, at time.Time, reason string) (*model.Appointment, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, id, userID uuid.UUID, doctorName string, at time.Time, reason string) (*model.Appointment, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) error
}

type appointmentService struct {
	repo  repository.AppointmentRepository
	cache *cache.Client
	now   func() time.Time
}

// NewAppointmentService creates a new appointment service.
func NewAppointmentService(repo repository.AppointmentRepository, cache *cache.Client) AppointmentService {
	return &appointmentService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

func (s *appointmentService) listCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("appointments:user:%s", userID.String())
}

// Create books a new appointment. The time must be strictly in the future and
// the doctor must be free at that instant among non-cancelled appointments.
// The SlotTaken pre-check is an early exit; the unique slot key constraint in
// the store is what actually prevents two concurrent requests from both
// booking the slot.
func (s *appointmentService) Create(ctx context.Context, userID uuid.UUID, doctorName string, at time.Time, reason string) (*model.Appointment, error) {
	if !at.After(s.now()) {
		return nil, apperrors.ErrPastAppointment
	}

	taken, err := s.repo.SlotTaken(ctx, doctorName, at, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return nil, apperrors.ErrSlotTaken
	}

	appointment := &model.Appointment{
		UserID:              userID,
		DoctorName:          doctorName,
		AppointmentDateTime: at.UTC(),
		Reason:              reason,
		Status:              model.AppointmentStatusScheduled,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.listCacheKey(userID))
	return appointment, nil
}

// ListForUser returns all appointments owned by the user in creation order.
func (s *appointmentService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	if data, _ := s.cache.Get(ctx, s.listCacheKey(userID)); data != nil {
		var cached []model.Appointment
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	appointments, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(appointments); err == nil {
		_ = s.cache.Set(ctx, s.listCacheKey(userID), payload, appointmentListCacheTTL)
	}
	return appointments, nil
}

// GetByID returns the appointment if it exists and belongs to the user.
func (s *appointmentService) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Appointment, error) {
	return s.loadOwned(ctx, id, userID)
}

// Update replaces the doctor, time and reason of an owned appointment. The
// conflict check excludes the appointment's own id, so re-saving an
// appointment at its existing slot never conflicts with itself.
func (s *appointmentService) Update(ctx context.Context, id, userID uuid.UUID, doctorName string, at time.Time, reason string) (*model.Appointment, error) {
	appointment, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if !at.After(s.now()) {
		return nil, apperrors.ErrPastAppointment
	}

	taken, err := s.repo.SlotTaken(ctx, doctorName, at, appointment.ID)
	if err != nil {
		return nil, fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return nil, apperrors.ErrSlotTaken
	}

	appointment.DoctorName = doctorName
	appointment.AppointmentDateTime = at.UTC()
	appointment.Reason = reason
	appointment.SyncSlotKey()

	if err := s.repo.Save(ctx, appointment); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.listCacheKey(userID))
	return appointment, nil
}

// Cancel marks an owned appointment CANCELLED and releases its slot.
// Cancelling an already-cancelled appointment is a deliberate no-op.
func (s *appointmentService) Cancel(ctx context.Context, id, userID uuid.UUID) error {
	appointment, err := s.loadOwned(ctx, id, userID)
	if err != nil {
		return err
	}

	if appointment.Status == model.AppointmentStatusCancelled {
		return nil
	}

	appointment.Status = model.AppointmentStatusCancelled
	appointment.SyncSlotKey()

	if err := s.repo.Save(ctx, appointment); err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, s.listCacheKey(userID))
	return nil
}

// loadOwned is the shared load-and-authorize step for get/update/cancel. An
// unknown id yields ErrAppointmentNotFound; an appointment owned by another
// user yields ErrForbidden. The two stay distinguishable so tests can tell
// "does not exist" from "not yours"; the HTTP layer maps them to 404 and 403.
func (s *appointmentService) loadOwned(ctx context.Context, id, userID uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAppointmentNotFound
		}
		return nil, err
	}

	if appointment.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	return appointment, nil
}
