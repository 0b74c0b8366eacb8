package repository

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/result"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

var _ result.Repository = (*ResultRepository)(nil)

func (r *ResultRepository) Create(ctx context.Context, res *result.Result) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(res).Error
	return translate(err, nil, nil, patient.ErrPatientNotFound)
}

func (r *ResultRepository) GetByID(ctx context.Context, id uint) (*result.Result, error) {
	var res result.Result
	if err := r.db.WithContext(ctx).First(&res, id).Error; err != nil {
		return nil, translate(err, result.ErrResultNotFound, nil, nil)
	}
	return &res, nil
}

func (r *ResultRepository) Update(ctx context.Context, res *result.Result) error {
	tx := r.db.WithContext(ctx).
		Model(res).
		Select("*").
		Omit("id", "created_at", "paciente_id", clause.Associations).
		Updates(res)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return result.ErrResultNotFound
	}
	return nil
}

func (r *ResultRepository) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&result.Result{}, id)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *ResultRepository) List(ctx context.Context, page domain.Page) ([]*result.Result, error) {
	results := make([]*result.Result, 0)
	err := r.db.WithContext(ctx).
		Scopes(pageScope(page.Offset, page.Limit)).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultRepository) ListByPatient(ctx context.Context, patientID uint) ([]*result.Result, error) {
	results := make([]*result.Result, 0)
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", patientID).
		Order("id ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
