package repository

import (
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Exam{}, id).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.DB.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) ListBySession(sessionID uint, status string) ([]model.Exam, error) {
	query := r.DB.Where("session_id = ?", sessionID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var exams []model.Exam
	err := query.Order("id").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) ListPublishedForSessions(sessionIDs []uint) ([]model.Exam, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var exams []model.Exam
	err := r.DB.Where("session_id IN ? AND status = ?", sessionIDs, model.ExamStatusPublished).
		Order("id").Find(&exams).Error
	return exams, err
}

func (r *ExamRepository) CreateQuestion(q *model.ExamQuestion) error {
	return r.DB.Create(q).Error
}

func (r *ExamRepository) UpdateQuestion(q *model.ExamQuestion) error {
	return r.DB.Save(q).Error
}

func (r *ExamRepository) DeleteQuestion(id uint) error {
	return r.DB.Delete(&model.ExamQuestion{}, id).Error
}

func (r *ExamRepository) FindQuestionByID(id uint) (*model.ExamQuestion, error) {
	var q model.ExamQuestion
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ExamRepository) GetQuestionsByExam(examID uint) ([]model.ExamQuestion, error) {
	var questions []model.ExamQuestion
	err := r.DB.Where("exam_id = ?", examID).Order("`order`, id").Find(&questions).Error
	return questions, err
}
