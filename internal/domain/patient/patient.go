package patient

import (
	"time"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
)

type Patient struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime;not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`

	FirstName string       `gorm:"column:nombre;type:varchar(100);not null" json:"nombre"`
	LastName  string       `gorm:"column:apellido;type:varchar(100);not null" json:"apellido"`
	Email     string       `gorm:"column:email;type:varchar(255);uniqueIndex:ix_pacientes_email;not null" json:"email"`
	Phone     *string      `gorm:"column:telefono;type:varchar(20)" json:"telefono"`
	BirthDate *domain.Date `gorm:"column:fecha_nacimiento" json:"fecha_nacimiento"`
	Address   *string      `gorm:"column:direccion;type:varchar(255)" json:"direccion"`
}

func (Patient) TableName() string {
	return "pacientes"
}

type CreatePatientCommand struct {
	FirstName string       `json:"nombre" validate:"required,max=100"`
	LastName  string       `json:"apellido" validate:"required,max=100"`
	Email     string       `json:"email" validate:"required,email,max=255"`
	Phone     *string      `json:"telefono" validate:"omitempty,max=20"`
	BirthDate *domain.Date `json:"fecha_nacimiento"`
	Address   *string      `json:"direccion" validate:"omitempty,max=255"`
}

// UpdatePatientCommand is a sparse patch; only fields with Set are applied.
type UpdatePatientCommand struct {
	FirstName domain.Optional[string]      `json:"nombre"`
	LastName  domain.Optional[string]      `json:"apellido"`
	Email     domain.Optional[string]      `json:"email"`
	Phone     domain.Optional[string]      `json:"telefono"`
	BirthDate domain.Optional[domain.Date] `json:"fecha_nacimiento"`
	Address   domain.Optional[string]      `json:"direccion"`
}

// Apply copies every supplied field onto p. Callers validate cmd first.
func (cmd *UpdatePatientCommand) Apply(p *Patient) {
	if cmd.FirstName.Set {
		p.FirstName = cmd.FirstName.Value
	}
	if cmd.LastName.Set {
		p.LastName = cmd.LastName.Value
	}
	if cmd.Email.Set {
		p.Email = cmd.Email.Value
	}
	if cmd.Phone.Set {
		p.Phone = cmd.Phone.Ptr()
	}
	if cmd.BirthDate.Set {
		p.BirthDate = cmd.BirthDate.Ptr()
	}
	if cmd.Address.Set {
		p.Address = cmd.Address.Ptr()
	}
}
