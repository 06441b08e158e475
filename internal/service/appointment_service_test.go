package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "github.com/Yaesine/healthcare-appointment-system/internal/errors"
	"github.com/Yaesine/healthcare-appointment-system/internal/model"
)

// MockAppointmentRepository is a mock implementation of AppointmentRepository.
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Appointment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) SlotTaken(ctx context.Context, doctorName string, at time.Time, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, doctorName, at, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAppointmentRepository) Save(ctx context.Context, appointment *model.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func futureTime() time.Time {
	return time.Now().Add(24 * time.Hour)
}

func scheduled(owner uuid.UUID, doctor string, at time.Time) *model.Appointment {
	a := &model.Appointment{
		ID:                  uuid.New(),
		UserID:              owner,
		DoctorName:          doctor,
		AppointmentDateTime: at.UTC(),
		Status:              model.AppointmentStatusScheduled,
		CreatedAt:           time.Now(),
	}
	a.SyncSlotKey()
	return a
}

func TestAppointmentService_Create(t *testing.T) {
	userID := uuid.New()
	at := futureTime()

	tests := []struct {
		name          string
		at            time.Time
		setupMock     func(*MockAppointmentRepository)
		expectedError error
	}{
		{
			name: "successful booking",
			at:   at,
			setupMock: func(m *MockAppointmentRepository) {
				m.On("SlotTaken", mock.Anything, "Dr. Smith", at, uuid.Nil).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:          "time in the past",
			at:            time.Now().Add(-time.Hour),
			setupMock:     func(m *MockAppointmentRepository) {},
			expectedError: apperrors.ErrPastAppointment,
		},
		{
			name:          "time exactly now",
			at:            time.Now().Add(-time.Millisecond),
			setupMock:     func(m *MockAppointmentRepository) {},
			expectedError: apperrors.ErrPastAppointment,
		},
		{
			name: "slot already taken",
			at:   at,
			setupMock: func(m *MockAppointmentRepository) {
				m.On("SlotTaken", mock.Anything, "Dr. Smith", at, uuid.Nil).Return(true, nil)
			},
			expectedError: apperrors.ErrSlotTaken,
		},
		{
			name: "lost race surfaces constraint violation",
			at:   at,
			setupMock: func(m *MockAppointmentRepository) {
				// pre-check passes but a concurrent booking wins the insert
				m.On("SlotTaken", mock.Anything, "Dr. Smith", at, uuid.Nil).Return(false, nil)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(apperrors.ErrSlotTaken)
			},
			expectedError: apperrors.ErrSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAppointmentRepository)
			tt.setupMock(repo)

			svc := NewAppointmentService(repo, nil)
			appointment, err := svc.Create(context.Background(), userID, "Dr. Smith", tt.at, "checkup")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, appointment)
				if tt.expectedError == apperrors.ErrPastAppointment {
					// nothing may be persisted for invalid timing
					repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, appointment)
				assert.Equal(t, userID, appointment.UserID)
				assert.Equal(t, "Dr. Smith", appointment.DoctorName)
				assert.Equal(t, model.AppointmentStatusScheduled, appointment.Status)
				assert.Equal(t, tt.at.UTC(), appointment.AppointmentDateTime)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAppointmentService_GetByID(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	appointment := scheduled(owner, "Dr. Smith", futureTime())

	repo := new(MockAppointmentRepository)
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	missingID := uuid.New()
	repo.On("FindByID", mock.Anything, missingID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewAppointmentService(repo, nil)

	t.Run("owner reads own appointment", func(t *testing.T) {
		got, err := svc.GetByID(context.Background(), appointment.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, appointment.ID, got.ID)
	})

	t.Run("non-owner is denied, never sees data", func(t *testing.T) {
		got, err := svc.GetByID(context.Background(), appointment.ID, stranger)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Nil(t, got)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		got, err := svc.GetByID(context.Background(), missingID, owner)
		assert.ErrorIs(t, err, apperrors.ErrAppointmentNotFound)
		assert.Nil(t, got)
	})
}

func TestAppointmentService_Update_SelfSlotExemption(t *testing.T) {
	owner := uuid.New()
	at := futureTime()
	appointment := scheduled(owner, "Dr. Smith", at)

	repo := new(MockAppointmentRepository)
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	// the conflict check must exclude the appointment's own id, so re-saving
	// the unchanged slot is never a conflict with itself
	repo.On("SlotTaken", mock.Anything, "Dr. Smith", at, appointment.ID).Return(false, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)

	svc := NewAppointmentService(repo, nil)
	updated, err := svc.Update(context.Background(), appointment.ID, owner, "Dr. Smith", at, "new reason")

	require.NoError(t, err)
	assert.Equal(t, "new reason", updated.Reason)
	assert.Equal(t, appointment.ID, updated.ID)
	repo.AssertExpectations(t)
}

func TestAppointmentService_Update_Failures(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	at := futureTime()
	appointment := scheduled(owner, "Dr. Smith", at)
	otherSlot := at.Add(2 * time.Hour)

	tests := []struct {
		name          string
		callerID      uuid.UUID
		newTime       time.Time
		setupMock     func(*MockAppointmentRepository)
		expectedError error
	}{
		{
			name:     "not owner",
			callerID: stranger,
			newTime:  otherSlot,
			setupMock: func(m *MockAppointmentRepository) {
				m.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
			},
			expectedError: apperrors.ErrForbidden,
		},
		{
			name:     "new time in the past",
			callerID: owner,
			newTime:  time.Now().Add(-time.Hour),
			setupMock: func(m *MockAppointmentRepository) {
				m.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
			},
			expectedError: apperrors.ErrPastAppointment,
		},
		{
			name:     "target slot taken by someone else",
			callerID: owner,
			newTime:  otherSlot,
			setupMock: func(m *MockAppointmentRepository) {
				m.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
				m.On("SlotTaken", mock.Anything, "Dr. Smith", otherSlot, appointment.ID).Return(true, nil)
			},
			expectedError: apperrors.ErrSlotTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockAppointmentRepository)
			tt.setupMock(repo)

			svc := NewAppointmentService(repo, nil)
			_, err := svc.Update(context.Background(), appointment.ID, tt.callerID, "Dr. Smith", tt.newTime, "reason")

			assert.ErrorIs(t, err, tt.expectedError)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			repo.AssertExpectations(t)
		})
	}
}

func TestAppointmentService_Cancel(t *testing.T) {
	owner := uuid.New()
	appointment := scheduled(owner, "Dr. Smith", futureTime())

	repo := new(MockAppointmentRepository)
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
		return a.Status == model.AppointmentStatusCancelled && a.SlotKey == nil
	})).Return(nil)

	svc := NewAppointmentService(repo, nil)

	require.NoError(t, svc.Cancel(context.Background(), appointment.ID, owner))
	assert.Equal(t, model.AppointmentStatusCancelled, appointment.Status)
	assert.Nil(t, appointment.SlotKey)
	repo.AssertExpectations(t)
}

// Cancelling an already-cancelled appointment is a documented no-op.
func TestAppointmentService_Cancel_Idempotent(t *testing.T) {
	owner := uuid.New()
	appointment := scheduled(owner, "Dr. Smith", futureTime())
	appointment.Status = model.AppointmentStatusCancelled
	appointment.SyncSlotKey()

	repo := new(MockAppointmentRepository)
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)

	svc := NewAppointmentService(repo, nil)

	require.NoError(t, svc.Cancel(context.Background(), appointment.ID, owner))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAppointmentService_Cancel_Authorization(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	appointment := scheduled(owner, "Dr. Smith", futureTime())

	repo := new(MockAppointmentRepository)
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	missingID := uuid.New()
	repo.On("FindByID", mock.Anything, missingID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewAppointmentService(repo, nil)

	assert.ErrorIs(t, svc.Cancel(context.Background(), appointment.ID, stranger), apperrors.ErrForbidden)
	assert.ErrorIs(t, svc.Cancel(context.Background(), missingID, owner), apperrors.ErrAppointmentNotFound)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// After a cancellation frees the slot, booking the same doctor/time again
// succeeds.
func TestAppointmentService_RebookAfterCancel(t *testing.T) {
	owner := uuid.New()
	at := futureTime()
	appointment := scheduled(owner, "Dr. Smith", at)

	repo := new(MockAppointmentRepository)
	repo.On("FindByID", mock.Anything, appointment.ID).Return(appointment, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)
	// cancelled appointments are status-aware excluded from occupancy
	repo.On("SlotTaken", mock.Anything, "Dr. Smith", at, uuid.Nil).Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Appointment")).Return(nil)

	svc := NewAppointmentService(repo, nil)

	require.NoError(t, svc.Cancel(context.Background(), appointment.ID, owner))

	rebooked, err := svc.Create(context.Background(), owner, "Dr. Smith", at, "second try")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, rebooked.Status)
	repo.AssertExpectations(t)
}

func TestAppointmentService_ListForUser(t *testing.T) {
	userID := uuid.New()
	appointments := []model.Appointment{
		*scheduled(userID, "Dr. Smith", futureTime()),
		*scheduled(userID, "Dr. Patel", futureTime().Add(time.Hour)),
	}

	repo := new(MockAppointmentRepository)
	repo.On("FindByUser", mock.Anything, userID).Return(appointments, nil)

	svc := NewAppointmentService(repo, nil)
	got, err := svc.ListForUser(context.Background(), userID)

	require.NoError(t, err)
	assert.Len(t, got, 2)
	repo.AssertExpectations(t)
}
