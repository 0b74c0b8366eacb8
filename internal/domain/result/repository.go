package result

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, r *Result) error
	GetByID(ctx context.Context, id uint) (*Result, error)
	Update(ctx context.Context, r *Result) error
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, page domain.Page) ([]*Result, error)
	ListByPatient(ctx context.Context, patientID uint) ([]*Result, error)
}
