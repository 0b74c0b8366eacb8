package patient

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
)

type Repository interface {
	// Create inserts p and fills its ID and CreatedAt. Returns ErrDuplicateEmail on a unique violation.
	Create(ctx context.Context, p *Patient) error

	// GetByID returns ErrPatientNotFound if no row matches.
	GetByID(ctx context.Context, id uint) (*Patient, error)

	// GetByEmail matches email exactly. Returns ErrPatientNotFound if no row matches.
	GetByEmail(ctx context.Context, email string) (*Patient, error)

	// Update overwrites the stored row with p, keyed by p.ID.
	Update(ctx context.Context, p *Patient) error

	// Delete removes the patient together with its appointments and results
	// in a single transaction. Returns false if the patient does not exist.
	Delete(ctx context.Context, id uint) (bool, error)

	// List returns a window of patients in ascending id order.
	List(ctx context.Context, page domain.Page) ([]*Patient, error)
}
