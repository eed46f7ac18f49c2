package repository

import (
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) Update(enrollment *model.Enrollment) error {
	return r.DB.Save(enrollment).Error
}

func (r *EnrollmentRepository) FindBySessionAndUser(sessionID, userID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// HasActive reports whether the student holds an active enrollment in the session.
func (r *EnrollmentRepository) HasActive(sessionID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("session_id = ? AND user_id = ? AND status = ?", sessionID, userID, model.EnrollmentStatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) ListBySession(sessionID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("session_id = ?", sessionID).Order("id").Find(&enrollments).Error
	return enrollments, err
}

func (r *EnrollmentRepository) ListActiveSessionIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND status = ?", userID, model.EnrollmentStatusActive).
		Pluck("session_id", &ids).Error
	return ids, err
}
