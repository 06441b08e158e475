package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Yaesine/healthcare-appointment-system/internal/errors"
	"github.com/Yaesine/healthcare-appointment-system/internal/middleware"
	"github.com/Yaesine/healthcare-appointment-system/internal/model"
	"github.com/Yaesine/healthcare-appointment-system/internal/service"
)

// AppointmentHandler handles appointment endpoints.
type AppointmentHandler struct {
	appointmentService service.AppointmentService
}

// NewAppointmentHandler creates a new appointment handler.
func NewAppointmentHandler(appointmentService service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: appointmentService}
}

// AppointmentRequest represents a create or update appointment request.
type AppointmentRequest struct {
	DoctorName          string    `json:"doctorName" validate:"required,max=255"`
	AppointmentDateTime time.Time `json:"appointmentDateTime" validate:"required"`
	Reason              string    `json:"reason" validate:"max=1024"`
}

// AppointmentResponse represents an appointment in API responses.
type AppointmentResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	DoctorName          string    `json:"doctorName"`
	AppointmentDateTime time.Time `json:"appointmentDateTime"`
	Reason              string    `json:"reason,omitempty"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
}

func toAppointmentResponse(a *model.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:                  a.ID.String(),
		UserID:              a.UserID.String(),
		DoctorName:          a.DoctorName,
		AppointmentDateTime: a.AppointmentDateTime,
		Reason:              a.Reason,
		Status:              string(a.Status),
		CreatedAt:           a.CreatedAt,
	}
}

// identity pulls the authenticated user id out of the request context. The
// id never comes from request payloads.
func identity(c echo.Context) (uuid.UUID, error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		httpErr := errors.MapErrorToHTTP(errors.ErrMissingCredential)
		return uuid.Nil, echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return userID, nil
}

func bindAppointmentRequest(c echo.Context) (*AppointmentRequest, error) {
	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}
	return &req, nil
}

func appointmentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid appointment id",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

// Create godoc
// @Summary Book a new appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AppointmentRequest true "Appointment data"
// @Success 201 {object} AppointmentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	userID, err := identity(c)
	if err != nil {
		return err
	}

	req, err := bindAppointmentRequest(c)
	if err != nil {
		return err
	}

	appointment, err := h.appointmentService.Create(
		c.Request().Context(), userID, req.DoctorName, req.AppointmentDateTime, req.Reason,
	)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, toAppointmentResponse(appointment))
}

// List godoc
// @Summary List the caller's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AppointmentResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	userID, err := identity(c)
	if err != nil {
		return err
	}

	appointments, err := h.appointmentService.ListForUser(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	responses := make([]AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, toAppointmentResponse(&appointments[i]))
	}
	return c.JSON(http.StatusOK, responses)
}

// Get godoc
// @Summary Get one of the caller's appointments
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 200 {object} AppointmentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c echo.Context) error {
	userID, err := identity(c)
	if err != nil {
		return err
	}

	id, err := appointmentID(c)
	if err != nil {
		return err
	}

	appointment, err := h.appointmentService.GetByID(c.Request().Context(), id, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, toAppointmentResponse(appointment))
}

// Update godoc
// @Summary Reschedule or edit an appointment
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body AppointmentRequest true "Appointment data"
// @Success 200 {object} AppointmentResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c echo.Context) error {
	userID, err := identity(c)
	if err != nil {
		return err
	}

	id, err := appointmentID(c)
	if err != nil {
		return err
	}

	req, err := bindAppointmentRequest(c)
	if err != nil {
		return err
	}

	appointment, err := h.appointmentService.Update(
		c.Request().Context(), id, userID, req.DoctorName, req.AppointmentDateTime, req.Reason,
	)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, toAppointmentResponse(appointment))
}

// Cancel godoc
// @Summary Cancel an appointment
// @Tags appointments
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204 "No Content"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	userID, err := identity(c)
	if err != nil {
		return err
	}

	id, err := appointmentID(c)
	if err != nil {
		return err
	}

	if err := h.appointmentService.Cancel(c.Request().Context(), id, userID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.NoContent(http.StatusNoContent)
}
