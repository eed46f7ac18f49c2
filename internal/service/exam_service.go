package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"

	"gorm.io/gorm"
)

// ExamService 管理考试定义的生命周期：draft → published → closed（可重开）。
// 只有 draft 状态允许改题；发布后题目冻结，在读端由尝试快照进一步兜底。
type ExamService struct {
	ExamRepo       *repository.ExamRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
}

func NewExamService(
	examRepo *repository.ExamRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
) *ExamService {
	return &ExamService{
		ExamRepo:       examRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
	}
}

func (s *ExamService) Get(id uint) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

// canManage 考试创建者和管理员可以管理；其他教师不行。
func (s *ExamService) canManage(actorID uint, actorRole model.UserRole, exam *model.Exam) bool {
	return actorRole == model.Admin || exam.CreatorID == actorID
}

func (s *ExamService) Create(actorID uint, actorRole model.UserRole, sessionID uint, exam *model.Exam) (*model.Exam, error) {
	session, err := s.CourseRepo.FindSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(session.CourseID)
	if err != nil {
		return nil, err
	}
	if actorRole != model.Admin && course.TeacherID != actorID {
		return nil, util.ErrPermissionDenied
	}

	if exam.DurationMinutes <= 0 {
		exam.DurationMinutes = 60
	}
	if exam.MaxAttempts <= 0 {
		exam.MaxAttempts = 1
	}
	exam.SessionID = sessionID
	exam.CreatorID = actorID
	exam.Status = model.ExamStatusDraft
	exam.TotalPoints = 0
	if err := s.ExamRepo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) Update(actorID uint, actorRole model.UserRole, examID uint, patch *model.Exam) (*model.Exam, error) {
	exam, err := s.Get(examID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return nil, util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, util.ErrExamNotEditable
	}

	if patch.Title != "" {
		exam.Title = patch.Title
	}
	if patch.Description != "" {
		exam.Description = patch.Description
	}
	if patch.CoverURL != "" {
		exam.CoverURL = patch.CoverURL
	}
	if patch.DurationMinutes > 0 {
		exam.DurationMinutes = patch.DurationMinutes
	}
	if patch.MaxAttempts > 0 {
		exam.MaxAttempts = patch.MaxAttempts
	}
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) Delete(actorID uint, actorRole model.UserRole, examID uint) error {
	exam, err := s.Get(examID)
	if err != nil {
		return err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusDraft {
		return util.ErrExamNotEditable
	}
	return s.ExamRepo.Delete(examID)
}

// Publish 冻结考试并对学生可见。空卷不允许发布。
func (s *ExamService) Publish(actorID uint, actorRole model.UserRole, examID uint) (*model.Exam, error) {
	exam, err := s.Get(examID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return nil, util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, util.ErrExamNotDraft
	}

	questions, err := s.ExamRepo.GetQuestionsByExam(examID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, util.ErrExamNoQuestions
	}
	for i := range questions {
		if err := validateQuestion(&questions[i]); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	exam.Status = model.ExamStatusPublished
	exam.PublishedAt = &now
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Close 停止接收新尝试。进行中的尝试不被打断，按各自截止时间结算。
func (s *ExamService) Close(actorID uint, actorRole model.UserRole, examID uint) (*model.Exam, error) {
	exam, err := s.Get(examID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return nil, util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusPublished {
		return nil, util.ErrExamNotPublished
	}
	now := time.Now()
	exam.Status = model.ExamStatusClosed
	exam.ClosedAt = &now
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// Reopen 重新开放已关闭的考试，不回 draft，题目保持冻结。
func (s *ExamService) Reopen(actorID uint, actorRole model.UserRole, examID uint) (*model.Exam, error) {
	exam, err := s.Get(examID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return nil, util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusClosed {
		return nil, util.ErrExamNotClosed
	}
	exam.Status = model.ExamStatusPublished
	exam.ClosedAt = nil
	if err := s.ExamRepo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) ListBySession(sessionID uint, status string) ([]model.Exam, error) {
	return s.ExamRepo.ListBySession(sessionID, status)
}

// ListForStudent 学生视角：其有效选课学期下所有已发布的考试。
func (s *ExamService) ListForStudent(userID uint) ([]model.Exam, error) {
	sessionIDs, err := s.EnrollmentRepo.ListActiveSessionIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.ExamRepo.ListPublishedForSessions(sessionIDs)
}

func (s *ExamService) GetQuestions(examID uint) ([]model.ExamQuestion, error) {
	if _, err := s.Get(examID); err != nil {
		return nil, err
	}
	return s.ExamRepo.GetQuestionsByExam(examID)
}

func (s *ExamService) AddQuestion(actorID uint, actorRole model.UserRole, examID uint, q *model.ExamQuestion) (*model.ExamQuestion, error) {
	exam, err := s.Get(examID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return nil, util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, util.ErrExamNotEditable
	}

	q.ExamID = examID
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.ExamRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.recomputeTotalPoints(exam); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ExamService) UpdateQuestion(actorID uint, actorRole model.UserRole, questionID uint, patch *model.ExamQuestion) (*model.ExamQuestion, error) {
	q, err := s.ExamRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	exam, err := s.Get(q.ExamID)
	if err != nil {
		return nil, err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return nil, util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusDraft {
		return nil, util.ErrExamNotEditable
	}

	if patch.Content != "" {
		q.Content = patch.Content
	}
	if patch.Options != "" {
		q.Options = patch.Options
	}
	if patch.CorrectAnswer != "" {
		q.CorrectAnswer = patch.CorrectAnswer
	}
	if patch.Points > 0 {
		q.Points = patch.Points
	}
	if patch.Order > 0 {
		q.Order = patch.Order
	}
	if patch.Explanation != "" {
		q.Explanation = patch.Explanation
	}
	if err := validateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.ExamRepo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.recomputeTotalPoints(exam); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ExamService) DeleteQuestion(actorID uint, actorRole model.UserRole, questionID uint) error {
	q, err := s.ExamRepo.FindQuestionByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuestionNotFound
		}
		return err
	}
	exam, err := s.Get(q.ExamID)
	if err != nil {
		return err
	}
	if !s.canManage(actorID, actorRole, exam) {
		return util.ErrPermissionDenied
	}
	if exam.Status != model.ExamStatusDraft {
		return util.ErrExamNotEditable
	}
	if err := s.ExamRepo.DeleteQuestion(questionID); err != nil {
		return err
	}
	return s.recomputeTotalPoints(exam)
}

// recomputeTotalPoints 题目变更后重算满分，保证 TotalPoints 恒等于各题分值之和。
func (s *ExamService) recomputeTotalPoints(exam *model.Exam) error {
	questions, err := s.ExamRepo.GetQuestionsByExam(exam.ID)
	if err != nil {
		return err
	}
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	exam.TotalPoints = total
	return s.ExamRepo.Update(exam)
}

// validateQuestion 入库前的静态校验：
// 单选题至少两个选项且正确答案必须是其中一个选项的 ID，
// 判断题答案只能是 true/false，主观题不携带标准答案。
func validateQuestion(q *model.ExamQuestion) error {
	if q.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", util.ErrInvalidQuestion)
	}
	switch q.QuestionType {
	case model.QuestionTypeSingleChoice:
		var options []model.QuestionOption
		if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
			return fmt.Errorf("%w: options is not a valid JSON array", util.ErrInvalidQuestion)
		}
		if len(options) < 2 {
			return fmt.Errorf("%w: single choice question needs at least 2 options", util.ErrInvalidQuestion)
		}
		found := false
		for _, opt := range options {
			if opt.ID == q.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: correct answer does not match any option", util.ErrInvalidQuestion)
		}
	case model.QuestionTypeTrueFalse:
		answer := strings.ToLower(strings.TrimSpace(q.CorrectAnswer))
		if answer != "true" && answer != "false" {
			return fmt.Errorf("%w: true/false answer must be \"true\" or \"false\"", util.ErrInvalidQuestion)
		}
		q.CorrectAnswer = answer
	case model.QuestionTypeOpenEnded:
		q.CorrectAnswer = ""
	default:
		return fmt.Errorf("%w: unsupported question type %q", util.ErrInvalidQuestion, q.QuestionType)
	}
	return nil
}
