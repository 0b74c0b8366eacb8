package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/config"
	v1 "github.com/dmehra2102/prod-golang-projects/vitalapp/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/repository"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/testutil"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "VitalApp Backend", Environment: "test", Version: "1.0.0"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         time.Hour,
		},
		Tracing: config.TracingConfig{ServiceName: "vitalapp-test"},
		API:     config.APIConfig{Prefix: "/api/v1", MaxPageSize: 3},
	}
}

type server struct {
	router  *gin.Engine
	metrics *metrics.Collector
}

func newServer(t *testing.T, mutate ...func(*v1.RouterDeps)) *server {
	t.Helper()

	db := testutil.NewDB(t)
	m, reg := testutil.NewMetrics(t)
	log := zap.NewNop()
	patientRepo := repository.NewPatientRepository(db)

	deps := v1.RouterDeps{
		Config:       testConfig(),
		Log:          log,
		Metrics:      m,
		Gatherer:     reg,
		Ping:         func(context.Context) error { return nil },
		Patients:     service.NewPatientService(patientRepo, m, log),
		Appointments: service.NewAppointmentService(repository.NewAppointmentRepository(db), patientRepo, m, log),
		Results:      service.NewResultService(repository.NewResultRepository(db), patientRepo, m, log),
	}
	for _, fn := range mutate {
		fn(&deps)
	}
	return &server{router: v1.NewRouter(deps), metrics: m}
}

func (s *server) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type patientBody struct {
	ID        uint    `json:"id"`
	Nombre    string  `json:"nombre"`
	Apellido  string  `json:"apellido"`
	Email     string  `json:"email"`
	Telefono  *string `json:"telefono"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt *string `json:"updated_at"`
}

type appointmentBody struct {
	ID         uint      `json:"id"`
	PacienteID uint      `json:"paciente_id"`
	Estado     string    `json:"estado"`
	Motivo     string    `json:"motivo"`
	FechaHora  time.Time `json:"fecha_hora"`
}

type resultBody struct {
	ID            uint    `json:"id"`
	TipoExamen    string  `json:"tipo_examen"`
	Observaciones *string `json:"observaciones"`
}

func createPatient(t *testing.T, s *server, email string) patientBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/pacientes/",
		fmt.Sprintf(`{"nombre":"Juan","apellido":"Perez","email":%q}`, email))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeData[patientBody](t, rec)
}

func TestAmbientEndpoints(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome to VitalApp Backend")

	rec = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","app":"VitalApp Backend","version":"1.0.0"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.do(t, http.MethodGet, "/api/v1/pacientes/", "")
	rec = s.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vitalapp_test_http_requests_total")
}

func TestReady_DatabaseDown(t *testing.T) {
	s := newServer(t, func(d *v1.RouterDeps) {
		d.Ping = func(context.Context) error { return errors.New("dial tcp: refused") }
	})
	rec := s.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPatientEndpoints(t *testing.T) {
	s := newServer(t)

	p := createPatient(t, s, "juan@example.com")
	assert.NotZero(t, p.ID)
	assert.NotEmpty(t, p.CreatedAt)
	assert.Nil(t, p.UpdatedAt)

	rec := s.do(t, http.MethodPost, "/api/v1/pacientes/", `{"nombre":"Otro","apellido":"X","email":"juan@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Juan", decodeData[patientBody](t, rec).Nombre)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), `{"telefono":"555-0100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeData[patientBody](t, rec)
	assert.Equal(t, "Perez", updated.Apellido)
	require.NotNil(t, updated.Telefono)
	assert.Equal(t, "555-0100", *updated.Telefono)
	assert.NotNil(t, updated.UpdatedAt)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), `{"telefono":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decodeData[patientBody](t, rec).Telefono)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatientEndpoints_ClientErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid email", http.MethodPost, "/api/v1/pacientes/", `{"nombre":"J","apellido":"P","email":"nope"}`, http.StatusUnprocessableEntity},
		{"missing fields", http.MethodPost, "/api/v1/pacientes/", `{}`, http.StatusUnprocessableEntity},
		{"malformed json", http.MethodPost, "/api/v1/pacientes/", `{"nombre":`, http.StatusUnprocessableEntity},
		{"wrong type", http.MethodPost, "/api/v1/pacientes/", `{"nombre":1,"apellido":"P","email":"a@example.com"}`, http.StatusUnprocessableEntity},
		{"bad birth date", http.MethodPost, "/api/v1/pacientes/", `{"nombre":"J","apellido":"P","email":"a@example.com","fecha_nacimiento":"12/01/1990"}`, http.StatusUnprocessableEntity},
		{"non-numeric id", http.MethodGet, "/api/v1/pacientes/abc", "", http.StatusUnprocessableEntity},
		{"zero id", http.MethodGet, "/api/v1/pacientes/0", "", http.StatusUnprocessableEntity},
		{"unknown id", http.MethodGet, "/api/v1/pacientes/999", "", http.StatusNotFound},
		{"update unknown", http.MethodPatch, "/api/v1/pacientes/999", `{"nombre":"X"}`, http.StatusNotFound},
		{"negative skip", http.MethodGet, "/api/v1/pacientes/?skip=-1", "", http.StatusUnprocessableEntity},
		{"bad limit", http.MethodGet, "/api/v1/pacientes/?limit=ten", "", http.StatusUnprocessableEntity},
		{"unknown route", http.MethodGet, "/api/v1/medicos/", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestPatientList_Paging(t *testing.T) {
	s := newServer(t)
	for i := range 5 {
		createPatient(t, s, fmt.Sprintf("p%d@example.com", i))
	}

	rec := s.do(t, http.MethodGet, "/api/v1/pacientes/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	// Capped by API.MaxPageSize.
	assert.Len(t, decodeData[[]patientBody](t, rec), 3)

	rec = s.do(t, http.MethodGet, "/api/v1/pacientes/?skip=3&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeData[[]patientBody](t, rec)
	require.Len(t, page, 2)
	assert.Equal(t, "p3@example.com", page[0].Email)
	assert.Equal(t, "p4@example.com", page[1].Email)

	rec = s.do(t, http.MethodGet, "/api/v1/pacientes/?skip=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestAppointmentEndpoints(t *testing.T) {
	s := newServer(t)
	p := createPatient(t, s, "juan@example.com")

	when := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	rec := s.do(t, http.MethodPost, "/api/v1/citas/",
		fmt.Sprintf(`{"paciente_id":%d,"fecha_hora":%q,"motivo":"checkup"}`, p.ID, when))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a := decodeData[appointmentBody](t, rec)
	assert.Equal(t, "programada", a.Estado)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/citas/%d", a.ID), `{"estado":"confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "confirmada", decodeData[appointmentBody](t, rec).Estado)

	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/citas/%d", a.ID), `{"estado":"postponed"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/citas/paciente/%d", p.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeData[[]appointmentBody](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	rec = s.do(t, http.MethodGet, "/api/v1/citas/paciente/9999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/citas/",
		fmt.Sprintf(`{"paciente_id":9999,"fecha_hora":%q,"motivo":"checkup"}`, when))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/citas/",
		fmt.Sprintf(`{"paciente_id":%d,"fecha_hora":"tomorrow","motivo":"checkup"}`, p.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/pacientes/%d", p.ID), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/citas/%d", a.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResultEndpoints(t *testing.T) {
	s := newServer(t)
	p := createPatient(t, s, "juan@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/resultados/",
		fmt.Sprintf(`{"paciente_id":%d,"tipo_examen":"hemograma","fecha_examen":"2026-01-10T08:00:00Z","resultado":"normal"}`, p.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeData[resultBody](t, rec)
	assert.Nil(t, created.Observaciones)

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/api/v1/resultados/%d", created.ID), `{"observaciones":"control anual"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeData[resultBody](t, rec)
	require.NotNil(t, updated.Observaciones)
	assert.Equal(t, "control anual", *updated.Observaciones)
	assert.Equal(t, "hemograma", updated.TipoExamen)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/resultados/paciente/%d", p.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/resultados/", fmt.Sprintf(`{"paciente_id":%d}`, p.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/resultados/%d", created.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/resultados/%d", created.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, func(d *v1.RouterDeps) {
		d.Config.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2}
	})

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/pacientes/", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/pacientes/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, http.MethodGet, "/api/v1/pacientes/", "").Code)

	// Probes stay outside the limiter.
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "").Code)
}

func TestPanickingHandler_IsMeasuredAndLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := newServer(t, func(d *v1.RouterDeps) {
		d.Log = zap.New(core)
	})
	s.router.GET("/boom", func(*gin.Context) { panic("boom") })

	for range 3 {
		rec := s.do(t, http.MethodGet, "/boom", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}

	assert.Zero(t, promtest.ToFloat64(s.metrics.InFlightGauge))
	assert.Equal(t, 3.0, promtest.ToFloat64(s.metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500")))

	accessLogs := logs.FilterMessage("http request").All()
	require.Len(t, accessLogs, 3)
	for _, entry := range accessLogs {
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.EqualValues(t, http.StatusInternalServerError, entry.ContextMap()["status"])
	}
}

func TestTimestamps_AcceptZonelessISO8601(t *testing.T) {
	s := newServer(t)
	p := createPatient(t, s, "juan@example.com")

	for _, ts := range []string{"2026-10-15T10:00:00.123456", "2026-10-15T10:00:00", "2026-10-15T10:00:00-03:00"} {
		t.Run(ts, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/v1/citas/",
				fmt.Sprintf(`{"paciente_id":%d,"fecha_hora":%q,"motivo":"checkup"}`, p.ID, ts))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			a := decodeData[appointmentBody](t, rec)

			rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/citas/%d", a.ID), fmt.Sprintf(`{"fecha_hora":%q}`, ts))
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			rec = s.do(t, http.MethodPost, "/api/v1/resultados/",
				fmt.Sprintf(`{"paciente_id":%d,"tipo_examen":"hemograma","fecha_examen":%q,"resultado":"normal"}`, p.ID, ts))
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
			r := decodeData[resultBody](t, rec)

			rec = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/resultados/%d", r.ID), fmt.Sprintf(`{"fecha_examen":%q}`, ts))
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func TestZonelessTimestamp_IsStoredAsUTC(t *testing.T) {
	s := newServer(t)
	p := createPatient(t, s, "juan@example.com")

	rec := s.do(t, http.MethodPost, "/api/v1/citas/",
		fmt.Sprintf(`{"paciente_id":%d,"fecha_hora":"2026-10-15T10:00:00","motivo":"checkup"}`, p.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	a := decodeData[appointmentBody](t, rec)
	assert.True(t, time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC).Equal(a.FechaHora), a.FechaHora)
}

func TestInvalidBody_ReportsFieldNames(t *testing.T) {
	s := newServer(t)
	p := createPatient(t, s, "juan@example.com")

	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{"wrong type", "/api/v1/pacientes/", `{"nombre":1,"apellido":"P","email":"a@example.com"}`, "nombre has an invalid value"},
		{"bad birth date", "/api/v1/pacientes/", `{"nombre":"J","apellido":"P","email":"a@example.com","fecha_nacimiento":"12/01/1990"}`, "fecha_nacimiento has an invalid value"},
		{"bad timestamp", "/api/v1/citas/", fmt.Sprintf(`{"paciente_id":%d,"fecha_hora":"tomorrow","motivo":"x"}`, p.ID), "fecha_hora has an invalid value"},
		{"malformed", "/api/v1/pacientes/", `{"nombre":`, "request body is not valid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, tt.path, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var body v1.ValidationErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, []string{tt.want}, body.Fields)
			assert.NotContains(t, rec.Body.String(), "2006-01-02")
			assert.NotContains(t, rec.Body.String(), "Go value")
		})
	}
}
