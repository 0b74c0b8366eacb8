package appointment

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
)

type Repository interface {
	// Create returns patient.ErrPatientNotFound when the foreign key is violated.
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uint) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, page domain.Page) ([]*Appointment, error)

	// ListByPatient returns every appointment of the patient in ascending id order.
	ListByPatient(ctx context.Context, patientID uint) ([]*Appointment, error)
}
