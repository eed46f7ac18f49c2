package repository

import (
	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(page, limit int, teacherID uint) ([]model.Course, int64, error) {
	query := r.DB.Model(&model.Course{})
	if teacherID > 0 {
		query = query.Where("teacher_id = ?", teacherID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var courses []model.Course
	err := query.Order("id").Offset((page - 1) * limit).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) CreateSession(session *model.CourseSession) error {
	return r.DB.Create(session).Error
}

func (r *CourseRepository) UpdateSession(session *model.CourseSession) error {
	return r.DB.Save(session).Error
}

func (r *CourseRepository) FindSessionByID(id uint) (*model.CourseSession, error) {
	var session model.CourseSession
	if err := r.DB.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *CourseRepository) ListSessions(courseID uint) ([]model.CourseSession, error) {
	var sessions []model.CourseSession
	err := r.DB.Where("course_id = ?", courseID).Order("id").Find(&sessions).Error
	return sessions, err
}
