package v1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/result"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/middleware"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message, RequestID: middleware.GetRequestID(c)})
}

func respondValidation(c *gin.Context, fields ...string) {
	c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
}

func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		respondValidation(c, validErr.Fields...)
		return
	}

	switch {
	case errors.Is(err, patient.ErrPatientNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, result.ErrResultNotFound):
		respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, patient.ErrDuplicateEmail):
		respondError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, appointment.ErrInvalidStatus):
		respondValidation(c, err.Error())

	default:
		_ = c.Error(err)
		log.Error("request failed",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// bindJSON decodes the body into obj. Malformed JSON and type mismatches are
// reported as 422, like field validation failures.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondValidation(c, describeBindError(err))
		return false
	}
	return true
}

func describeBindError(err error) string {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		timeErr   *time.ParseError
	)
	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return "request body has an invalid value"
		}
		return typeErr.Field + " has an invalid value"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is not valid JSON"
	case errors.Is(err, io.EOF):
		return "request body is required"
	case errors.As(err, &timeErr):
		return "request body has an invalid date or time"
	}
	return "invalid request body"
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 0)
	if err != nil || id == 0 {
		respondValidation(c, param+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// parsePage reads skip and limit, defaulting to 0 and 100. limit is capped at
// maxLimit.
func parsePage(c *gin.Context, maxLimit int) (domain.Page, bool) {
	page := domain.DefaultPage()

	var fields []string
	if raw, ok := c.GetQuery("skip"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			fields = append(fields, "skip must be a non-negative integer")
		}
		page.Offset = v
	}
	if raw, ok := c.GetQuery("limit"); ok {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			fields = append(fields, "limit must be a non-negative integer")
		}
		page.Limit = v
	}
	if len(fields) > 0 {
		respondValidation(c, fields...)
		return page, false
	}

	if maxLimit > 0 && page.Limit > maxLimit {
		page.Limit = maxLimit
	}
	return page, true
}
