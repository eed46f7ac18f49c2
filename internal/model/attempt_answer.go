package model

import "time"

const (
	ResolutionUnresolved    = "unresolved"
	ResolutionAutoCorrect   = "auto_correct"
	ResolutionAutoIncorrect = "auto_incorrect"
	ResolutionManualGraded  = "manual_graded"
)

// AttemptAnswer 一次尝试中单个题目的作答记录（attempt_id + question_id 唯一）
// swagger:model AttemptAnswer
type AttemptAnswer struct {
	BaseModel

	AttemptID     uint       `gorm:"index;uniqueIndex:uq_attempt_question" json:"attemptId"`
	QuestionID    uint       `gorm:"uniqueIndex:uq_attempt_question" json:"questionId"`
	Value         string     `gorm:"type:text" json:"value"`
	Resolution    string     `gorm:"size:20;default:'unresolved'" json:"resolution"`
	AwardedPoints *int       `json:"awardedPoints,omitempty"`
	Feedback      string     `gorm:"type:text" json:"feedback,omitempty"`
	GraderID      uint       `json:"graderId,omitempty"`
	GradedAt      *time.Time `json:"gradedAt,omitempty"`
}

func (AttemptAnswer) TableName() string {
	return "attempt_answers"
}
