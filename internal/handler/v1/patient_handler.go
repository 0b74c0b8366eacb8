package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PatientHandler struct {
	svc         *service.PatientService
	maxPageSize int
	log         *zap.Logger
}

func NewPatientHandler(svc *service.PatientService, maxPageSize int, log *zap.Logger) *PatientHandler {
	return &PatientHandler{svc: svc, maxPageSize: maxPageSize, log: log}
}

func (h *PatientHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/pacientes")
	g.GET("/", h.List)
	g.POST("/", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *PatientHandler) List(c *gin.Context) {
	page, ok := parsePage(c, h.maxPageSize)
	if !ok {
		return
	}
	patients, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, patients)
}

func (h *PatientHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Create(c *gin.Context) {
	var cmd patient.CreatePatientCommand
	if !bindJSON(c, &cmd) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), &cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, p)
}

func (h *PatientHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd patient.UpdatePatientCommand
	if !bindJSON(c, &cmd) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, &cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, p)
}

func (h *PatientHandler) Delete(c *gin.Context) {
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
		respondServiceError(c, h.log, patient.ErrPatientNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
