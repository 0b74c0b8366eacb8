package repository

import (
	"context"

	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/vitalapp/internal/domain/patient"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

var _ appointment.Repository = (*AppointmentRepository)(nil)

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
	return translate(err, nil, nil, patient.ErrPatientNotFound)
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uint) (*appointment.Appointment, error) {
	var a appointment.Appointment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, translate(err, appointment.ErrAppointmentNotFound, nil, nil)
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(a).
		Select("*").
		Omit("id", "created_at", "paciente_id", clause.Associations).
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *AppointmentRepository) List(ctx context.Context, page domain.Page) ([]*appointment.Appointment, error) {
	appointments := make([]*appointment.Appointment, 0)
	err := r.db.WithContext(ctx).
		Scopes(pageScope(page.Offset, page.Limit)).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID uint) ([]*appointment.Appointment, error) {
	appointments := make([]*appointment.Appointment, 0)
	err := r.db.WithContext(ctx).
		Where("paciente_id = ?", patientID).
		Order("id ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}
