package result

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
)

// Result is a recorded clinical test outcome.
type Result struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`

	PatientID    uint      `gorm:"column:paciente_id;not null;index" json:"paciente_id"`
	ExamType     string    `gorm:"column:tipo_examen;type:varchar(100);not null" json:"tipo_examen"`
	ExamDate     time.Time `gorm:"column:fecha_examen;not null" json:"fecha_examen"`
	Outcome      string    `gorm:"column:resultado;type:text;not null" json:"resultado"`
	Observations *string   `gorm:"column:observaciones;type:text" json:"observaciones"`

	Patient *patient.Patient `gorm:"foreignKey:PatientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Result) TableName() string {
	return "resultados"
}

type CreateResultCommand struct {
	PatientID    uint            `json:"paciente_id" validate:"required"`
	ExamType     string          `json:"tipo_examen" validate:"required,max=100"`
	ExamDate     domain.DateTime `json:"fecha_examen" validate:"required"`
	Outcome      string          `json:"resultado" validate:"required"`
	Observations *string         `json:"observaciones"`
}

type UpdateResultCommand struct {
	ExamType     domain.Optional[string]          `json:"tipo_examen"`
	ExamDate     domain.Optional[domain.DateTime] `json:"fecha_examen"`
	Outcome      domain.Optional[string]          `json:"resultado"`
	Observations domain.Optional[string]          `json:"observaciones"`
}

func (cmd *UpdateResultCommand) Apply(r *Result) {
	if cmd.ExamType.Set {
		r.ExamType = cmd.ExamType.Value
	}
	if cmd.ExamDate.Set {
		r.ExamDate = cmd.ExamDate.Value.Time
	}
	if cmd.Outcome.Set {
		r.Outcome = cmd.Outcome.Value
	}
	if cmd.Observations.Set {
		r.Observations = cmd.Observations.Ptr()
	}
}
