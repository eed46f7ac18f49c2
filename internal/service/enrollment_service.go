package service

import (
	"errors"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
}

func NewEnrollmentService(enrollmentRepo *repository.EnrollmentRepository, courseRepo *repository.CourseRepository) *EnrollmentService {
	return &EnrollmentService{EnrollmentRepo: enrollmentRepo, CourseRepo: courseRepo}
}

// Enroll 学生选入一个学期。退课后重新选课复用同一条记录，
// 唯一索引保证同一 (学期,学生) 只有一行。
func (s *EnrollmentService) Enroll(userID, sessionID uint) (*model.Enrollment, error) {
	session, err := s.CourseRepo.FindSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.Archived {
		return nil, util.ErrSessionArchived
	}

	existing, err := s.EnrollmentRepo.FindBySessionAndUser(sessionID, userID)
	if err == nil {
		if existing.Status == model.EnrollmentStatusActive {
			return nil, util.ErrAlreadyEnrolled
		}
		existing.Status = model.EnrollmentStatusActive
		existing.EnrolledAt = time.Now()
		if err := s.EnrollmentRepo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	enrollment := &model.Enrollment{
		SessionID:  sessionID,
		UserID:     userID,
		Status:     model.EnrollmentStatusActive,
		EnrolledAt: time.Now(),
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Drop 退课。进行中的考试尝试不受影响，照常按截止时间结算。
func (s *EnrollmentService) Drop(userID, sessionID uint) error {
	enrollment, err := s.EnrollmentRepo.FindBySessionAndUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEnrolled
		}
		return err
	}
	if enrollment.Status != model.EnrollmentStatusActive {
		return util.ErrNotEnrolled
	}
	enrollment.Status = model.EnrollmentStatusDropped
	return s.EnrollmentRepo.Update(enrollment)
}

func (s *EnrollmentService) ListBySession(sessionID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListBySession(sessionID)
}
