package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"
	"examhub_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResultService 把尝试、快照和作答记录汇聚成成绩视图。
// graded 状态的视图不可变，缓存进 Redis；评分进展会使缓存失效。
type ResultService struct {
	AttemptRepo *repository.ExamAttemptRepository
	AnswerRepo  *repository.AttemptAnswerRepository
	ExamRepo    *repository.ExamRepository
	Attempts    *AttemptService
	DB          *gorm.DB
	Redis       *redis.Client
	CacheTTL    time.Duration
}

func NewResultService(
	attemptRepo *repository.ExamAttemptRepository,
	answerRepo *repository.AttemptAnswerRepository,
	examRepo *repository.ExamRepository,
	attempts *AttemptService,
	db *gorm.DB,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *ResultService {
	return &ResultService{
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		ExamRepo:    examRepo,
		Attempts:    attempts,
		DB:          db,
		Redis:       rdb,
		CacheTTL:    cacheTTL,
	}
}

// ResultQuestion 成绩视图里的逐题明细
type ResultQuestion struct {
	QuestionID    uint   `json:"questionId"`
	QuestionType  string `json:"questionType"`
	Content       string `json:"content"`
	Points        int    `json:"points"`
	Value         string `json:"value"`
	Resolution    string `json:"resolution"`
	AwardedPoints int    `json:"awardedPoints"`
	Feedback      string `json:"feedback,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

type ResultView struct {
	AttemptID   uint             `json:"attemptId"`
	ExamID      uint             `json:"examId"`
	Status      string           `json:"status"`
	Available   bool             `json:"available"`
	Score       int              `json:"score"`
	MaxScore    int              `json:"maxScore"`
	Percentage  float64          `json:"percentage"`
	StartedAt   time.Time        `json:"startedAt"`
	SubmittedAt *time.Time       `json:"submittedAt,omitempty"`
	Questions   []ResultQuestion `json:"questions,omitempty"`
}

func resultCacheKey(attemptID uint) string {
	return fmt.Sprintf("result:%d", attemptID)
}

// GetResult 返回一次尝试的成绩视图。读取会触发超时隐式交卷，
// 因此超过截止时间后学生看成绩永远不会撞上"仍在进行"的尝试。
// 尚未出分的尝试返回 available=false 的占位视图，不含逐题明细。
func (s *ResultService) GetResult(userID uint, attemptID uint, staff bool) (*ResultView, error) {
	attempt, err := s.Attempts.FinalizeIfExpired(attemptID)
	if err != nil {
		return nil, err
	}
	if !staff && attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}

	if attempt.Status != model.AttemptStatusGraded {
		return &ResultView{
			AttemptID:   attempt.ID,
			ExamID:      attempt.ExamID,
			Status:      attempt.Status,
			Available:   false,
			StartedAt:   attempt.StartedAt,
			SubmittedAt: attempt.EndedAt,
		}, nil
	}

	if cached := s.cacheGet(attemptID); cached != nil {
		return cached, nil
	}

	view, err := s.buildView(attempt)
	if err != nil {
		return nil, err
	}
	s.cacheSet(attemptID, view)
	return view, nil
}

// Invalidate 在评分推进后丢弃旧的成绩视图缓存。
func (s *ResultService) Invalidate(attemptID uint) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(context.Background(), resultCacheKey(attemptID)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate result cache",
			zap.Uint("attempt_id", attemptID), zap.Error(err))
	}
}

func (s *ResultService) buildView(attempt *model.ExamAttempt) (*ResultView, error) {
	snapshot, err := attempt.Snapshot()
	if err != nil {
		return nil, err
	}
	answers, err := s.AnswerRepo.ListByAttempt(s.DB, attempt.ID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[uint]*model.AttemptAnswer, len(answers))
	for i := range answers {
		byQuestion[answers[i].QuestionID] = &answers[i]
	}

	view := &ResultView{
		AttemptID:   attempt.ID,
		ExamID:      attempt.ExamID,
		Status:      attempt.Status,
		Available:   true,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: attempt.EndedAt,
		Questions:   make([]ResultQuestion, 0, len(snapshot)),
	}
	if attempt.Score != nil {
		view.Score = *attempt.Score
	}

	for _, q := range snapshot {
		item := ResultQuestion{
			QuestionID:    q.QuestionID,
			QuestionType:  q.QuestionType,
			Content:       q.Content,
			Points:        q.Points,
			Resolution:    model.ResolutionUnresolved,
			CorrectAnswer: q.CorrectAnswer,
		}
		if answer, ok := byQuestion[q.QuestionID]; ok {
			item.Value = answer.Value
			item.Resolution = answer.Resolution
			item.Feedback = answer.Feedback
			if answer.AwardedPoints != nil {
				item.AwardedPoints = *answer.AwardedPoints
			}
		}
		view.MaxScore += q.Points
		view.Questions = append(view.Questions, item)
	}
	if view.MaxScore > 0 {
		view.Percentage = float64(view.Score) / float64(view.MaxScore) * 100
	}
	return view, nil
}

func (s *ResultService) cacheGet(attemptID uint) *ResultView {
	if s.Redis == nil {
		return nil
	}
	data, err := s.Redis.Get(context.Background(), resultCacheKey(attemptID)).Bytes()
	if err != nil {
		return nil
	}
	var view ResultView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil
	}
	return &view
}

func (s *ResultService) cacheSet(attemptID uint, view *ResultView) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	ttl := s.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if err := s.Redis.Set(context.Background(), resultCacheKey(attemptID), data, ttl).Err(); err != nil {
		logger.Log.Warn("failed to cache result view",
			zap.Uint("attempt_id", attemptID), zap.Error(err))
	}
}
