package repository

import (
	"errors"

	"examhub_backend/internal/model"

	"gorm.io/gorm"
)

// AttemptAnswerRepository 按 (attempt_id, question_id) 维护作答记录，
// 重复提交覆盖旧值，不会产生第二行。
type AttemptAnswerRepository struct {
	DB *gorm.DB
}

func NewAttemptAnswerRepository(db *gorm.DB) *AttemptAnswerRepository {
	return &AttemptAnswerRepository{DB: db}
}

func (r *AttemptAnswerRepository) Upsert(tx *gorm.DB, attemptID, questionID uint, value string) error {
	var existing model.AttemptAnswer
	err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		answer := model.AttemptAnswer{
			AttemptID:  attemptID,
			QuestionID: questionID,
			Value:      value,
			Resolution: model.ResolutionUnresolved,
		}
		return tx.Create(&answer).Error
	}
	existing.Value = value
	existing.Resolution = model.ResolutionUnresolved
	existing.AwardedPoints = nil
	return tx.Save(&existing).Error
}

func (r *AttemptAnswerRepository) Save(tx *gorm.DB, answer *model.AttemptAnswer) error {
	return tx.Save(answer).Error
}

func (r *AttemptAnswerRepository) Create(tx *gorm.DB, answer *model.AttemptAnswer) error {
	return tx.Create(answer).Error
}

func (r *AttemptAnswerRepository) FindByAttemptAndQuestion(tx *gorm.DB, attemptID, questionID uint) (*model.AttemptAnswer, error) {
	var answer model.AttemptAnswer
	err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *AttemptAnswerRepository) ListByAttempt(tx *gorm.DB, attemptID uint) ([]model.AttemptAnswer, error) {
	var answers []model.AttemptAnswer
	err := tx.Where("attempt_id = ?", attemptID).Order("question_id").Find(&answers).Error
	return answers, err
}

func (r *AttemptAnswerRepository) CountUnresolved(tx *gorm.DB, attemptID uint) (int64, error) {
	var count int64
	err := tx.Model(&model.AttemptAnswer{}).
		Where("attempt_id = ? AND resolution = ?", attemptID, model.ResolutionUnresolved).
		Count(&count).Error
	return count, err
}

// CountUnresolvedByAttempts 一次查询统计多份尝试各自的未判定作答数。
// 没有未判定作答的尝试不出现在结果里。
func (r *AttemptAnswerRepository) CountUnresolvedByAttempts(tx *gorm.DB, attemptIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(attemptIDs))
	if len(attemptIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AttemptID uint
		Total     int64
	}
	err := tx.Model(&model.AttemptAnswer{}).
		Select("attempt_id, COUNT(*) AS total").
		Where("attempt_id IN ? AND resolution = ?", attemptIDs, model.ResolutionUnresolved).
		Group("attempt_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.AttemptID] = row.Total
	}
	return counts, nil
}

// SumAwardedPoints 汇总一次尝试所有已判定作答的得分。
func (r *AttemptAnswerRepository) SumAwardedPoints(tx *gorm.DB, attemptID uint) (int, error) {
	var total *int
	err := tx.Model(&model.AttemptAnswer{}).
		Where("attempt_id = ?", attemptID).
		Select("SUM(awarded_points)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// DeleteByAttempt 尝试被删除时级联清理其作答记录。
func (r *AttemptAnswerRepository) DeleteByAttempt(tx *gorm.DB, attemptID uint) error {
	return tx.Where("attempt_id = ?", attemptID).Delete(&model.AttemptAnswer{}).Error
}
