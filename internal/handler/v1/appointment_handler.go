package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AppointmentHandler struct {
	svc         *service.AppointmentService
	maxPageSize int
	log         *zap.Logger
}

func NewAppointmentHandler(svc *service.AppointmentService, maxPageSize int, log *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, maxPageSize: maxPageSize, log: log}
}

func (h *AppointmentHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/citas")
	g.GET("/", h.List)
	g.POST("/", h.Create)
	g.GET("/paciente/:paciente_id", h.ListByPatient)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	page, ok := parsePage(c, h.maxPageSize)
	if !ok {
		return
	}
	appointments, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, appointments)
}

func (h *AppointmentHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseID(c, "paciente_id")
	if !ok {
		return
	}
	appointments, err := h.svc.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, appointments)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var cmd appointment.CreateAppointmentCommand
	if !bindJSON(c, &cmd) {
		return
	}
	a, err := h.svc.Create(c.Request.Context(), &cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd appointment.UpdateAppointmentCommand
	if !bindJSON(c, &cmd) {
		return
	}
	a, err := h.svc.Update(c.Request.Context(), id, &cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if !deleted {
		respondServiceError(c, h.log, appointment.ErrAppointmentNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
