package repository

import (
	"context"
	"errors"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/result"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
	return translate(err, nil, patient.ErrDuplicateEmail, nil)
}

func (r *PatientRepository) GetByID(ctx context.Context, id uint) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, patient.ErrPatientNotFound, nil, nil)
	}
	return &p, nil
}

func (r *PatientRepository) GetByEmail(ctx context.Context, email string) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&p).Error; err != nil {
		return nil, translate(err, patient.ErrPatientNotFound, nil, nil)
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	res := r.db.WithContext(ctx).
		Model(p).
		Select("*").
		Omit("id", "created_at").
		Updates(p)
	if res.Error != nil {
		return translate(res.Error, nil, patient.ErrDuplicateEmail, nil)
	}
	if res.RowsAffected == 0 {
		return patient.ErrPatientNotFound
	}
	return nil
}

// Delete removes results, then appointments, then the patient, in one
// transaction. The ON DELETE CASCADE foreign keys would do the same; the
// explicit order keeps the operation correct on schemas created without them.
func (r *PatientRepository) Delete(ctx context.Context, id uint) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing patient.Patient
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if err := tx.Where("paciente_id = ?", id).Delete(&result.Result{}).Error; err != nil {
			return err
		}
		if err := tx.Where("paciente_id = ?", id).Delete(&appointment.Appointment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&patient.Patient{}, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PatientRepository) List(ctx context.Context, page domain.Page) ([]*patient.Patient, error) {
	patients := make([]*patient.Patient, 0)
	err := r.db.WithContext(ctx).
		Scopes(pageScope(page.Offset, page.Limit)).
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}
