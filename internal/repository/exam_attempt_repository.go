package repository

import (
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type ExamAttemptRepository struct {
	DB *gorm.DB
}

func NewExamAttemptRepository(db *gorm.DB) *ExamAttemptRepository {
	return &ExamAttemptRepository{DB: db}
}

func (r *ExamAttemptRepository) Create(tx *gorm.DB, attempt *model.ExamAttempt) error {
	return tx.Create(attempt).Error
}

func (r *ExamAttemptRepository) Update(tx *gorm.DB, attempt *model.ExamAttempt) error {
	return tx.Save(attempt).Error
}

func (r *ExamAttemptRepository) FindByID(id uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	if err := r.DB.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CountByUserAndExam 统计某学生在某考试下已占用的尝试数（任何状态都占名额）。
func (r *ExamAttemptRepository) CountByUserAndExam(tx *gorm.DB, userID, examID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.ExamAttempt{}).
		Where("user_id = ? AND exam_id = ?", userID, examID).
		Count(&count).Error
	return count, err
}

func (r *ExamAttemptRepository) FindInProgress(tx *gorm.DB, userID, examID uint) (*model.ExamAttempt, error) {
	var attempt model.ExamAttempt
	err := tx.Where("user_id = ? AND exam_id = ? AND status = ?", userID, examID, model.AttemptStatusInProgress).
		First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ListSubmittedByExam 返回某考试下所有已提交（待人工评分或已评分）的尝试，按提交时间升序。
func (r *ExamAttemptRepository) ListSubmittedByExam(examID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("exam_id = ? AND status = ?", examID, model.AttemptStatusSubmitted).
		Order("ended_at").Find(&attempts).Error
	return attempts, err
}

func (r *ExamAttemptRepository) ListByUser(userID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("user_id = ?", userID).Order("started_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *ExamAttemptRepository) ListByExam(examID uint) ([]model.ExamAttempt, error) {
	var attempts []model.ExamAttempt
	err := r.DB.Where("exam_id = ?", examID).Order("started_at").Find(&attempts).Error
	return attempts, err
}
