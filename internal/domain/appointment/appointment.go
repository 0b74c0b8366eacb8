package appointment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
)

// Status values are the strings already stored in citas.estado.
//
// Intended progressions (not enforced):
//
//	scheduled → confirmed → completed
//	scheduled → cancelled
type Status string

const (
	StatusScheduled Status = "programada"
	StatusConfirmed Status = "confirmada"
	StatusCompleted Status = "completada"
	StatusCancelled Status = "cancelada"
)

var statusAliases = map[string]Status{
	"scheduled": StatusScheduled,
	"confirmed": StatusConfirmed,
	"completed": StatusCompleted,
	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus accepts either the stored value or its English name.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if s.IsValid() {
		return s, nil
	}
	if alias, ok := statusAliases[string(s)]; ok {
		return alias, nil
	}
	return "", ErrInvalidStatus
}

// UnmarshalJSON keeps the raw string so that validation can report an
// unknown status as a field error instead of a decode failure.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if parsed, err := ParseStatus(raw); err == nil {
		*s = parsed
		return nil
	}
	*s = Status(raw)
	return nil
}

type Appointment struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`

	PatientID   uint      `gorm:"column:paciente_id;not null;index" json:"paciente_id"`
	ScheduledAt time.Time `gorm:"column:fecha_hora;not null" json:"fecha_hora"`
	Reason      string    `gorm:"column:motivo;type:varchar(255);not null" json:"motivo"`
	Status      Status    `gorm:"column:estado;type:varchar(50);not null;default:'programada'" json:"estado"`
	Notes       *string   `gorm:"column:notas;type:text" json:"notas"`

	// Patient exists only to declare the foreign key; it is never loaded.
	Patient *patient.Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Appointment) TableName() string {
	return "citas"
}

type CreateAppointmentCommand struct {
	PatientID   uint            `json:"paciente_id" validate:"required"`
	ScheduledAt domain.DateTime `json:"fecha_hora" validate:"required"`
	Reason      string          `json:"motivo" validate:"required,max=255"`
	// Empty means StatusScheduled.
	Status Status  `json:"estado"`
	Notes  *string `json:"notas"`
}

// UpdateAppointmentCommand is a sparse patch. The owning patient cannot be changed.
type UpdateAppointmentCommand struct {
	ScheduledAt domain.Optional[domain.DateTime] `json:"fecha_hora"`
	Reason      domain.Optional[string]          `json:"motivo"`
	Status      domain.Optional[Status]          `json:"estado"`
	Notes       domain.Optional[string]          `json:"notas"`
}

// Apply copies every supplied field onto a. Callers validate cmd first.
func (cmd *UpdateAppointmentCommand) Apply(a *Appointment) {
	if cmd.ScheduledAt.Set {
		a.ScheduledAt = cmd.ScheduledAt.Value.Time
	}
	if cmd.Reason.Set {
		a.Reason = cmd.Reason.Value
	}
	if cmd.Status.Set {
		a.Status = cmd.Status.Value
	}
	if cmd.Notes.Set {
		a.Notes = cmd.Notes.Ptr()
	}
}
