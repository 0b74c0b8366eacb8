package service_test

import (
	"testing"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/testutil"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
)

type services struct {
	patients     *service.PatientService
	appointments *service.AppointmentService
	results      *service.ResultService
	metrics      *metrics.Collector
}

func newServices(t *testing.T) services {
	t.Helper()

	db := testutil.NewDB(t)
	m, _ := testutil.NewMetrics(t)
	log := zap.NewNop()

	patientRepo := repository.NewPatientRepository(db)
	return services{
		patients:     service.NewPatientService(patientRepo, m, log),
		appointments: service.NewAppointmentService(repository.NewAppointmentRepository(db), patientRepo, m, log),
		results:      service.NewResultService(repository.NewResultRepository(db), patientRepo, m, log),
		metrics:      m,
	}
}

func ptr[T any](v T) *T {
	return &v
}
