package service

import (
	"errors"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// GradingService 维护人工评分队列：列出待评分的尝试，
// 逐题录入主观题得分，最后一道判定完成时整卷出分。
type GradingService struct {
	ExamRepo    *repository.ExamRepository
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.ExamAttemptRepository
	AnswerRepo  *repository.AttemptAnswerRepository
	Results     *ResultService
	DB          *gorm.DB
	Keys        *KeyMutex
}

func NewGradingService(
	examRepo *repository.ExamRepository,
	userRepo *repository.UserRepository,
	attemptRepo *repository.ExamAttemptRepository,
	answerRepo *repository.AttemptAnswerRepository,
	results *ResultService,
	db *gorm.DB,
	keys *KeyMutex,
) *GradingService {
	return &GradingService{
		ExamRepo:    examRepo,
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		Results:     results,
		DB:          db,
		Keys:        keys,
	}
}

// PendingAttempt 评分队列里的一项
type PendingAttempt struct {
	AttemptID       uint      `json:"attemptId"`
	ExamID          uint      `json:"examId"`
	UserID          uint      `json:"userId"`
	UserName        string    `json:"userName"`
	SubmittedAt     time.Time `json:"submittedAt"`
	UnresolvedCount int64     `json:"unresolvedCount"`
}

// ListPending 返回某考试下等待人工评分的尝试，先交卷的排前面。
func (s *GradingService) ListPending(graderID uint, graderRole model.UserRole, examID uint) ([]PendingAttempt, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if graderRole != model.Admin && exam.CreatorID != graderID {
		return nil, util.ErrPermissionDenied
	}

	attempts, err := s.AttemptRepo.ListSubmittedByExam(examID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return []PendingAttempt{}, nil
	}

	// 未判定数和考生姓名各用一条查询批量取回，不随队列长度增长
	attemptIDs := make([]uint, 0, len(attempts))
	userIDs := make([]uint, 0, len(attempts))
	for _, attempt := range attempts {
		attemptIDs = append(attemptIDs, attempt.ID)
		userIDs = append(userIDs, attempt.UserID)
	}
	counts, err := s.AnswerRepo.CountUnresolvedByAttempts(s.DB, attemptIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.UserRepo.ListByIDs(userIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	pending := make([]PendingAttempt, 0, len(attempts))
	for _, attempt := range attempts {
		item := PendingAttempt{
			AttemptID:       attempt.ID,
			ExamID:          attempt.ExamID,
			UserID:          attempt.UserID,
			UserName:        names[attempt.UserID],
			UnresolvedCount: counts[attempt.ID],
		}
		if attempt.EndedAt != nil {
			item.SubmittedAt = *attempt.EndedAt
		}
		pending = append(pending, item)
	}
	return pending, nil
}

// Resolve 为一道主观题录入人工评分。分数必须落在 [0, 题目快照分值] 内，
// 当该尝试不再有未判定作答时整卷转为 graded 并汇总总分。
func (s *GradingService) Resolve(graderID uint, graderRole model.UserRole, attemptID, questionID uint, points int, feedback string) (*model.ExamAttempt, error) {
	unlock := s.Keys.Lock(attemptKey(attemptID))
	defer unlock()

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}

	exam, err := s.ExamRepo.FindByID(attempt.ExamID)
	if err != nil {
		return nil, err
	}
	if graderRole != model.Admin && exam.CreatorID != graderID {
		return nil, util.ErrPermissionDenied
	}

	if attempt.Status != model.AttemptStatusSubmitted {
		return nil, util.ErrAttemptNotSubmitted
	}

	snapshot, err := attempt.Snapshot()
	if err != nil {
		return nil, err
	}
	var question *model.QuestionSnapshot
	for i := range snapshot {
		if snapshot[i].QuestionID == questionID {
			question = &snapshot[i]
			break
		}
	}
	if question == nil {
		return nil, util.ErrUnknownQuestion
	}
	if model.AutoGradable(question.QuestionType) {
		return nil, util.ErrNotManualQuestion
	}
	if points < 0 || points > question.Points {
		return nil, util.ErrPointsOutOfRange
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		answer, err := s.AnswerRepo.FindByAttemptAndQuestion(tx, attemptID, questionID)
		if err != nil {
			// 交卷时为每道题都落了记录，这里找不到属于数据异常
			return err
		}

		now := time.Now()
		awarded := points
		answer.Resolution = model.ResolutionManualGraded
		answer.AwardedPoints = &awarded
		answer.Feedback = feedback
		answer.GraderID = graderID
		answer.GradedAt = &now
		if err := s.AnswerRepo.Save(tx, answer); err != nil {
			return err
		}

		remaining, err := s.AnswerRepo.CountUnresolved(tx, attemptID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			total, err := s.AnswerRepo.SumAwardedPoints(tx, attemptID)
			if err != nil {
				return err
			}
			attempt.Score = &total
			attempt.Status = model.AttemptStatusGraded
			return s.AttemptRepo.Update(tx, attempt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.AnswersScored.WithLabelValues(model.ResolutionManualGraded).Inc()
	if attempt.Status == model.AttemptStatusGraded {
		monitoring.AttemptsGraded.Inc()
	}
	if s.Results != nil {
		s.Results.Invalidate(attemptID)
	}
	return attempt, nil
}
