package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/scoring"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// AttemptService 负责考试尝试的生命周期：
// in_progress → submitted → graded，状态只进不退。
// 截止时间是派生属性（开始时间+时长），没有后台定时器；
// 首个观察到超时的读写操作触发隐式交卷。
type AttemptService struct {
	ExamRepo       *repository.ExamRepository
	EnrollmentRepo *repository.EnrollmentRepository
	AttemptRepo    *repository.ExamAttemptRepository
	AnswerRepo     *repository.AttemptAnswerRepository
	DB             *gorm.DB
	Keys           *KeyMutex
}

func NewAttemptService(
	examRepo *repository.ExamRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	attemptRepo *repository.ExamAttemptRepository,
	answerRepo *repository.AttemptAnswerRepository,
	db *gorm.DB,
	keys *KeyMutex,
) *AttemptService {
	return &AttemptService{
		ExamRepo:       examRepo,
		EnrollmentRepo: enrollmentRepo,
		AttemptRepo:    attemptRepo,
		AnswerRepo:     answerRepo,
		DB:             db,
		Keys:           keys,
	}
}

// AttemptQuestion 发给学生作答的题目视图，不含正确答案
type AttemptQuestion struct {
	QuestionID   uint            `json:"questionId"`
	QuestionType string          `json:"questionType"`
	Content      string          `json:"content"`
	Options      json.RawMessage `json:"options,omitempty"`
	Points       int             `json:"points"`
	Order        int             `json:"order"`
}

type StartAttemptResult struct {
	Attempt   *model.ExamAttempt `json:"attempt"`
	Questions []AttemptQuestion  `json:"questions"`
}

type AttemptState struct {
	Attempt   *model.ExamAttempt `json:"attempt"`
	Questions []AttemptQuestion  `json:"questions"`
	Answers   map[uint]string    `json:"answers"`
}

func attemptKey(attemptID uint) string {
	return fmt.Sprintf("attempt:%d", attemptID)
}

// StartAttempt 为学生开启一次新尝试并固化题目快照。
// 同一 (学生,考试) 的并发开考请求串行执行，名额检查和插入在同一事务内完成。
func (s *AttemptService) StartAttempt(userID, examID uint) (*StartAttemptResult, error) {
	unlock := s.Keys.Lock(fmt.Sprintf("start:%d:%d", userID, examID))
	defer unlock()

	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}

	// 遗留的超时未交尝试先隐式交卷，不占用进行中名额。
	// 走 FinalizeIfExpired 拿该尝试的锁，与其上在途的答题/交卷串行。
	if existing, err := s.AttemptRepo.FindInProgress(s.DB, userID, examID); err == nil {
		if existing.Expired(time.Now()) {
			if _, err := s.FinalizeIfExpired(existing.ID); err != nil {
				return nil, err
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if exam.Status != model.ExamStatusPublished {
		return nil, util.ErrExamNotPublished
	}

	enrolled, err := s.EnrollmentRepo.HasActive(exam.SessionID, userID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	questions, err := s.ExamRepo.GetQuestionsByExam(examID)
	if err != nil {
		return nil, err
	}

	snapshot := make([]model.QuestionSnapshot, 0, len(questions))
	for _, q := range questions {
		snap := model.QuestionSnapshot{
			QuestionID:    q.ID,
			QuestionType:  q.QuestionType,
			Content:       q.Content,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Order:         q.Order,
		}
		// 主观题和判断题没有选项，留 nil 序列化成 null
		if q.Options != "" {
			snap.Options = json.RawMessage(q.Options)
		}
		snapshot = append(snapshot, snap)
	}
	snapshotBytes, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	var attempt *model.ExamAttempt
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		count, err := s.AttemptRepo.CountByUserAndExam(tx, userID, examID)
		if err != nil {
			return err
		}
		if exam.MaxAttempts > 0 && count >= int64(exam.MaxAttempts) {
			return util.ErrAttemptLimitExceeded
		}

		if _, err := s.AttemptRepo.FindInProgress(tx, userID, examID); err == nil {
			return util.ErrAttemptAlreadyInProgress
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now()
		attempt = &model.ExamAttempt{
			ExamID:           examID,
			UserID:           userID,
			Status:           model.AttemptStatusInProgress,
			StartedAt:        now,
			Deadline:         now.Add(time.Duration(exam.DurationMinutes) * time.Minute),
			QuestionSnapshot: string(snapshotBytes),
		}
		return s.AttemptRepo.Create(tx, attempt)
	})
	if err != nil {
		return nil, err
	}

	monitoring.AttemptsStarted.Inc()

	return &StartAttemptResult{
		Attempt:   attempt,
		Questions: sanitizeSnapshot(snapshot),
	}, nil
}

// SubmitAnswer 幂等地记录/覆盖一道题的作答。
// 截止后到达的提交触发隐式交卷并返回 DeadlineExceeded。
func (s *AttemptService) SubmitAnswer(userID, attemptID, questionID uint, value string) error {
	unlock := s.Keys.Lock(attemptKey(attemptID))
	defer unlock()

	attempt, err := s.loadOwned(userID, attemptID)
	if err != nil {
		return err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return util.ErrAttemptNotActive
	}
	if attempt.Expired(time.Now()) {
		if err := s.finalize(attempt, attempt.Deadline, "deadline"); err != nil {
			return err
		}
		return util.ErrDeadlineExceeded
	}

	snapshot, err := attempt.Snapshot()
	if err != nil {
		return err
	}
	if !snapshotContains(snapshot, questionID) {
		return util.ErrUnknownQuestion
	}

	return s.AnswerRepo.Upsert(s.DB, attemptID, questionID, value)
}

// SubmitAttempt 显式交卷。重复交卷返回 AttemptNotActive 而不是静默成功，
// 客户端由此能察觉双重提交。
func (s *AttemptService) SubmitAttempt(userID, attemptID uint) (*model.ExamAttempt, error) {
	unlock := s.Keys.Lock(attemptKey(attemptID))
	defer unlock()

	attempt, err := s.loadOwned(userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, util.ErrAttemptNotActive
	}
	if attempt.Expired(time.Now()) {
		if err := s.finalize(attempt, attempt.Deadline, "deadline"); err != nil {
			return nil, err
		}
		return nil, util.ErrDeadlineExceeded
	}

	if err := s.finalize(attempt, time.Now(), "explicit"); err != nil {
		return nil, err
	}
	return attempt, nil
}

// GetAttempt 返回作答现场（题目+已提交答案）。读取同样会触发超时隐式交卷。
func (s *AttemptService) GetAttempt(userID, attemptID uint, staff bool) (*AttemptState, error) {
	attempt, err := s.FinalizeIfExpired(attemptID)
	if err != nil {
		return nil, err
	}
	if !staff && attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}

	snapshot, err := attempt.Snapshot()
	if err != nil {
		return nil, err
	}
	answers, err := s.AnswerRepo.ListByAttempt(s.DB, attemptID)
	if err != nil {
		return nil, err
	}
	values := make(map[uint]string, len(answers))
	for _, a := range answers {
		values[a.QuestionID] = a.Value
	}

	return &AttemptState{
		Attempt:   attempt,
		Questions: sanitizeSnapshot(snapshot),
		Answers:   values,
	}, nil
}

func (s *AttemptService) ListByUser(userID uint) ([]model.ExamAttempt, error) {
	return s.AttemptRepo.ListByUser(userID)
}

// FinalizeIfExpired 加载尝试，若其仍在进行但已超时则先隐式交卷，返回最新状态。
func (s *AttemptService) FinalizeIfExpired(attemptID uint) (*model.ExamAttempt, error) {
	unlock := s.Keys.Lock(attemptKey(attemptID))
	defer unlock()

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.Status == model.AttemptStatusInProgress && attempt.Expired(time.Now()) {
		if err := s.finalize(attempt, attempt.Deadline, "deadline"); err != nil {
			return nil, err
		}
	}
	return attempt, nil
}

func (s *AttemptService) loadOwned(userID, attemptID uint) (*model.ExamAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	// 他人的尝试与不存在同样对待，不泄漏存在性
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

// finalize 执行交卷转换：写入结束时间、对客观题自动判分、
// 给未作答题目补记录，并在无待人工题时直接出分。调用方必须持有尝试锁。
func (s *AttemptService) finalize(attempt *model.ExamAttempt, endAt time.Time, trigger string) error {
	snapshot, err := attempt.Snapshot()
	if err != nil {
		return err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		answers, err := s.AnswerRepo.ListByAttempt(tx, attempt.ID)
		if err != nil {
			return err
		}
		byQuestion := make(map[uint]*model.AttemptAnswer, len(answers))
		for i := range answers {
			byQuestion[answers[i].QuestionID] = &answers[i]
		}

		total := 0
		unresolved := 0
		for _, q := range snapshot {
			answer, answered := byQuestion[q.QuestionID]

			if model.AutoGradable(q.QuestionType) {
				verdict := scoring.Verdict{Resolution: model.ResolutionAutoIncorrect, Points: 0}
				if answered {
					verdict = scoring.Score(q, answer.Value)
				}
				points := verdict.Points
				if answered {
					answer.Resolution = verdict.Resolution
					answer.AwardedPoints = &points
					if err := s.AnswerRepo.Save(tx, answer); err != nil {
						return err
					}
				} else {
					// 未作答的客观题按 0 分落一条记录
					missing := &model.AttemptAnswer{
						AttemptID:     attempt.ID,
						QuestionID:    q.QuestionID,
						Resolution:    model.ResolutionAutoIncorrect,
						AwardedPoints: &points,
					}
					if err := s.AnswerRepo.Create(tx, missing); err != nil {
						return err
					}
				}
				total += verdict.Points
				monitoring.AnswersScored.WithLabelValues(verdict.Resolution).Inc()
				continue
			}

			// 主观题留给人工评分；未作答的也补一条记录让阅卷人看到
			if !answered {
				blank := &model.AttemptAnswer{
					AttemptID:  attempt.ID,
					QuestionID: q.QuestionID,
					Resolution: model.ResolutionUnresolved,
				}
				if err := s.AnswerRepo.Create(tx, blank); err != nil {
					return err
				}
			}
			unresolved++
		}

		end := endAt
		attempt.EndedAt = &end
		attempt.Status = model.AttemptStatusSubmitted
		if unresolved == 0 {
			score := total
			attempt.Score = &score
			attempt.Status = model.AttemptStatusGraded
		}
		return s.AttemptRepo.Update(tx, attempt)
	})
	if err != nil {
		return err
	}

	monitoring.AttemptsSubmitted.WithLabelValues(trigger).Inc()
	if attempt.Status == model.AttemptStatusGraded {
		monitoring.AttemptsGraded.Inc()
	}
	return nil
}

func sanitizeSnapshot(snapshot []model.QuestionSnapshot) []AttemptQuestion {
	out := make([]AttemptQuestion, 0, len(snapshot))
	for _, q := range snapshot {
		out = append(out, AttemptQuestion{
			QuestionID:   q.QuestionID,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			Options:      q.Options,
			Points:       q.Points,
			Order:        q.Order,
		})
	}
	return out
}

func snapshotContains(snapshot []model.QuestionSnapshot, questionID uint) bool {
	for _, q := range snapshot {
		if q.QuestionID == questionID {
			return true
		}
	}
	return false
}
