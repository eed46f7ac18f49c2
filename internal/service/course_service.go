package service

import (
	"errors"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"

	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

func (s *CourseService) Create(teacherID uint, code, title, description string) (*model.Course, error) {
	course := &model.Course{
		Code:        code,
		Title:       title,
		Description: description,
		TeacherID:   teacherID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Get(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(actorID uint, actorRole model.UserRole, id uint, title, description string) (*model.Course, error) {
	course, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if actorRole != model.Admin && course.TeacherID != actorID {
		return nil, util.ErrPermissionDenied
	}
	if title != "" {
		course.Title = title
	}
	if description != "" {
		course.Description = description
	}
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) List(page, limit int, teacherID uint) ([]model.Course, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.CourseRepo.List(page, limit, teacherID)
}

func (s *CourseService) CreateSession(actorID uint, actorRole model.UserRole, courseID uint, session *model.CourseSession) (*model.CourseSession, error) {
	course, err := s.Get(courseID)
	if err != nil {
		return nil, err
	}
	if actorRole != model.Admin && course.TeacherID != actorID {
		return nil, util.ErrPermissionDenied
	}
	session.CourseID = courseID
	if err := s.CourseRepo.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *CourseService) GetSession(id uint) (*model.CourseSession, error) {
	session, err := s.CourseRepo.FindSessionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (s *CourseService) ListSessions(courseID uint) ([]model.CourseSession, error) {
	if _, err := s.Get(courseID); err != nil {
		return nil, err
	}
	return s.CourseRepo.ListSessions(courseID)
}

// ArchiveSession 归档学期。归档后不再接受新选课，存量考试不受影响。
func (s *CourseService) ArchiveSession(actorID uint, actorRole model.UserRole, sessionID uint) (*model.CourseSession, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	course, err := s.Get(session.CourseID)
	if err != nil {
		return nil, err
	}
	if actorRole != model.Admin && course.TeacherID != actorID {
		return nil, util.ErrPermissionDenied
	}
	session.Archived = true
	if err := s.CourseRepo.UpdateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}
