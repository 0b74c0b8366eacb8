package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type AppointmentService struct {
	repo        appointment.Repository
	patientRepo patient.Repository
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewAppointmentService(
	repo appointment.Repository,
	patientRepo patient.Repository,
	m *metrics.Collector,
	log *zap.Logger,
) *AppointmentService {
	return &AppointmentService{repo: repo, patientRepo: patientRepo, metrics: m, log: log}
}

func (s *AppointmentService) List(ctx context.Context, page domain.Page) ([]*appointment.Appointment, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page)
}

func (s *AppointmentService) GetByID(ctx context.Context, id uint) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByPatient returns every appointment of the patient in ascending id
// order. It fails with patient.ErrPatientNotFound for an unknown patient.
func (s *AppointmentService) ListByPatient(ctx context.Context, patientID uint) ([]*appointment.Appointment, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *AppointmentService) Create(ctx context.Context, cmd *appointment.CreateAppointmentCommand) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Create")
	defer span.End()

	if cmd.Status == "" {
		cmd.Status = appointment.StatusScheduled
	}

	var errs fieldErrors
	if err := validateStruct(cmd); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		errs = verr.Fields
	}
	checkStatus(&errs, cmd.Status)
	if err := errs.err(); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		if !errors.Is(err, patient.ErrPatientNotFound) {
			s.log.Error("failed to verify patient", zap.Uint("patient_id", cmd.PatientID), zap.Error(err))
		}
		return nil, err
	}

	a := &appointment.Appointment{
		PatientID:   cmd.PatientID,
		ScheduledAt: cmd.ScheduledAt.Time,
		Reason:      cmd.Reason,
		Status:      cmd.Status,
		Notes:       cmd.Notes,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		// The patient was deleted between the check and the insert.
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		s.log.Error("failed to create appointment", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("creating appointment: %w", err)
	}

	s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	span.SetAttributes(
		attribute.Int64("appointment.id", int64(a.ID)),
		attribute.Int64("patient.id", int64(a.PatientID)),
	)
	s.log.Info("appointment created",
		zap.Uint("appointment_id", a.ID),
		zap.Uint("patient_id", a.PatientID),
		zap.String("status", string(a.Status)),
	)

	return a, nil
}

func (s *AppointmentService) Update(ctx context.Context, id uint, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "AppointmentService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("appointment.id", int64(id)))

	if err := validateUpdateAppointment(cmd); err != nil {
		return nil, err
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := a.Status
	cmd.Apply(a)
	now := time.Now().UTC()
	a.UpdatedAt = &now

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, appointment.ErrAppointmentNotFound) {
			return nil, err
		}
		s.log.Error("failed to update appointment", zap.Uint("appointment_id", id), zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	if a.Status != previous {
		s.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
		s.log.Info("appointment status changed",
			zap.Uint("appointment_id", a.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(a.Status)),
		)
	}

	return a, nil
}

func (s *AppointmentService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("failed to delete appointment", zap.Uint("appointment_id", id), zap.Error(err))
		return false, fmt.Errorf("deleting appointment: %w", err)
	}
	return deleted, nil
}

func checkStatus(errs *fieldErrors, st appointment.Status) {
	if !st.IsValid() {
		errs.add(fmt.Sprintf("estado %q must be one of programada, confirmada, completada, cancelada", string(st)))
	}
}

func validateUpdateAppointment(cmd *appointment.UpdateAppointmentCommand) error {
	var errs fieldErrors

	checkRequired(&errs, "fecha_hora", cmd.ScheduledAt)
	checkRequired(&errs, "motivo", cmd.Reason)
	checkRequired(&errs, "estado", cmd.Status)
	checkMaxLen(&errs, "motivo", cmd.Reason, 255)

	if cmd.Status.HasValue() {
		checkStatus(&errs, cmd.Status.Value)
	}

	return errs.err()
}
