package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/result"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ResultHandler struct {
	svc         *service.ResultService
	maxPageSize int
	log         *zap.Logger
}

func NewResultHandler(svc *service.ResultService, maxPageSize int, log *zap.Logger) *ResultHandler {
	return &ResultHandler{svc: svc, maxPageSize: maxPageSize, log: log}
}

func (h *ResultHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/resultados")
	g.GET("/", h.List)
	g.POST("/", h.Create)
	g.GET("/paciente/:paciente_id", h.ListByPatient)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *ResultHandler) List(c *gin.Context) {
	page, ok := parsePage(c, h.maxPageSize)
	if !ok {
		return
	}
	results, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, results)
}

func (h *ResultHandler) ListByPatient(c *gin.Context) {
	patientID, ok := parseID(c, "paciente_id")
	if !ok {
		return
	}
	results, err := h.svc.ListByPatient(c.Request.Context(), patientID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, results)
}

func (h *ResultHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, r)
}

func (h *ResultHandler) Create(c *gin.Context) {
	var cmd result.CreateResultCommand
	if !bindJSON(c, &cmd) {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), &cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondCreated(c, r)
}

func (h *ResultHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd result.UpdateResultCommand
	if !bindJSON(c, &cmd) {
		return
	}
	r, err := h.svc.Update(c.Request.Context(), id, &cmd)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	respondOK(c, r)
}

func (h *ResultHandler) Delete(c *gin.Context) {
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
		respondServiceError(c, h.log, result.ErrResultNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}
