package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service")

type PatientService struct {
	repo    patient.Repository
	metrics *metrics.Collector
	log     *zap.Logger
}

func NewPatientService(repo patient.Repository, m *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:    repo,
		metrics: m,
		log:     log,
	}
}

func (s *PatientService) List(ctx context.Context, page domain.Page) ([]*patient.Patient, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page)
}

func (s *PatientService) GetByID(ctx context.Context, id uint) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PatientService) GetByEmail(ctx context.Context, email string) (*patient.Patient, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *PatientService) Create(ctx context.Context, cmd *patient.CreatePatientCommand) (*patient.Patient, error) {
	ctx, span := tracer.Start(ctx, "PatientService.Create")
	defer span.End()

	if err := validateStruct(cmd); err != nil {
		return nil, err
	}

	if err := s.ensureEmailAvailable(ctx, cmd.Email, 0); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		FirstName: cmd.FirstName,
		LastName:  cmd.LastName,
		Email:     cmd.Email,
		Phone:     cmd.Phone,
		BirthDate: cmd.BirthDate,
		Address:   cmd.Address,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// Lost a race with a concurrent create of the same email.
		if errors.Is(err, patient.ErrDuplicateEmail) {
			return nil, err
		}
		s.log.Error("failed to create patient", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.metrics.PatientsCreatedTotal.Inc()
	span.SetAttributes(attribute.Int64("patient.id", int64(p.ID)))
	s.log.Info("patient created", zap.Uint("patient_id", p.ID))

	return p, nil
}

func (s *PatientService) Update(ctx context.Context, id uint, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	ctx, span := tracer.Start(ctx, "PatientService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("patient.id", int64(id)))

	if err := validateUpdatePatient(cmd); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cmd.Email.Set && cmd.Email.Value != p.Email {
		if err := s.ensureEmailAvailable(ctx, cmd.Email.Value, p.ID); err != nil {
			return nil, err
		}
	}

	cmd.Apply(p)
	now := time.Now().UTC()
	p.UpdatedAt = &now

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, patient.ErrDuplicateEmail) || errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		s.log.Error("failed to update patient", zap.Uint("patient_id", id), zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("updating patient: %w", err)
	}

	return p, nil
}

// Delete removes the patient and, atomically, its appointments and results.
// It reports false when no such patient exists.
func (s *PatientService) Delete(ctx context.Context, id uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "PatientService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("patient.id", int64(id)))

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("failed to delete patient", zap.Uint("patient_id", id), zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("deleting patient: %w", err)
	}
	if deleted {
		s.metrics.PatientsDeletedTotal.Inc()
		s.log.Info("patient deleted", zap.Uint("patient_id", id))
	}
	return deleted, nil
}

// ensureEmailAvailable fails with ErrDuplicateEmail if a patient other than
// ownerID already uses email. ownerID 0 means no owner.
func (s *PatientService) ensureEmailAvailable(ctx context.Context, email string, ownerID uint) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, patient.ErrPatientNotFound):
		return nil
	case err != nil:
		s.log.Error("failed to check email uniqueness", zap.Error(err))
		return fmt.Errorf("checking email uniqueness: %w", err)
	case existing.ID != ownerID:
		return patient.ErrDuplicateEmail
	}
	return nil
}

func validateUpdatePatient(cmd *patient.UpdatePatientCommand) error {
	var errs fieldErrors

	checkRequired(&errs, "nombre", cmd.FirstName)
	checkRequired(&errs, "apellido", cmd.LastName)
	checkRequired(&errs, "email", cmd.Email)

	checkMaxLen(&errs, "nombre", cmd.FirstName, 100)
	checkMaxLen(&errs, "apellido", cmd.LastName, 100)
	checkMaxLen(&errs, "telefono", cmd.Phone, 20)
	checkMaxLen(&errs, "direccion", cmd.Address, 255)

	if cmd.Email.HasValue() {
		if !isEmail(cmd.Email.Value) {
			errs.add("email must be a valid email address")
		}
		checkMaxLen(&errs, "email", cmd.Email, 255)
	}

	return errs.err()
}
