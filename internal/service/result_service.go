package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/result"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type ResultService struct {
	repo        result.Repository
	patientRepo patient.Repository
	metrics     *metrics.Collector
	log         *zap.Logger
}

func NewResultService(
	repo result.Repository,
	patientRepo patient.Repository,
	m *metrics.Collector,
	log *zap.Logger,
) *ResultService {
	return &ResultService{repo: repo, patientRepo: patientRepo, metrics: m, log: log}
}

func (s *ResultService) List(ctx context.Context, page domain.Page) ([]*result.Result, error) {
	if err := validatePage(page); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page)
}

func (s *ResultService) GetByID(ctx context.Context, id uint) (*result.Result, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ResultService) ListByPatient(ctx context.Context, patientID uint) ([]*result.Result, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, err
	}
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *ResultService) Create(ctx context.Context, cmd *result.CreateResultCommand) (*result.Result, error) {
	ctx, span := tracer.Start(ctx, "ResultService.Create")
	defer span.End()

	if err := validateStruct(cmd); err != nil {
		return nil, err
	}

	if _, err := s.patientRepo.GetByID(ctx, cmd.PatientID); err != nil {
		if !errors.Is(err, patient.ErrPatientNotFound) {
			s.log.Error("failed to verify patient", zap.Uint("patient_id", cmd.PatientID), zap.Error(err))
		}
		return nil, err
	}

	r := &result.Result{
		PatientID:    cmd.PatientID,
		ExamType:     cmd.ExamType,
		ExamDate:     cmd.ExamDate.Time,
		Outcome:      cmd.Outcome,
		Observations: cmd.Observations,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return nil, err
		}
		s.log.Error("failed to record result", zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("recording result: %w", err)
	}

	s.metrics.ResultsRecordedTotal.Inc()
	span.SetAttributes(attribute.Int64("result.id", int64(r.ID)))
	s.log.Info("result recorded",
		zap.Uint("result_id", r.ID),
		zap.Uint("patient_id", r.PatientID),
		zap.String("exam_type", r.ExamType),
	)

	return r, nil
}

func (s *ResultService) Update(ctx context.Context, id uint, cmd *result.UpdateResultCommand) (*result.Result, error) {
	ctx, span := tracer.Start(ctx, "ResultService.Update")
	defer span.End()

	var errs fieldErrors
	checkRequired(&errs, "tipo_examen", cmd.ExamType)
	checkRequired(&errs, "fecha_examen", cmd.ExamDate)
	checkRequired(&errs, "resultado", cmd.Outcome)
	checkMaxLen(&errs, "tipo_examen", cmd.ExamType, 100)
	if err := errs.err(); err != nil {
		return nil, err
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cmd.Apply(r)
	now := time.Now().UTC()
	r.UpdatedAt = &now

	if err := s.repo.Update(ctx, r); err != nil {
		if errors.Is(err, result.ErrResultNotFound) {
			return nil, err
		}
		s.log.Error("failed to update result", zap.Uint("result_id", id), zap.Error(err))
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("updating result: %w", err)
	}

	return r, nil
}

func (s *ResultService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.log.Error("failed to delete result", zap.Uint("result_id", id), zap.Error(err))
		return false, fmt.Errorf("deleting result: %w", err)
	}
	return deleted, nil
}
