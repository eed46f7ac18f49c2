package model

import (
	"encoding/json"
	"time"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
	AttemptStatusGraded     = "graded"
)

// ExamAttempt 学生对一场考试的一次限时作答。
// QuestionSnapshot 在开始时固化题目定义，之后试卷被重新打开编辑也不影响进行中的作答。
// swagger:model ExamAttempt
type ExamAttempt struct {
	BaseModel

	ExamID    uint       `gorm:"index" json:"examId"`
	UserID    uint       `gorm:"index" json:"userId"`
	Status    string     `gorm:"size:20;default:'in_progress'" json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	Deadline  time.Time  `json:"deadline"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Score     *int       `json:"score,omitempty"`

	QuestionSnapshot string `gorm:"type:json" json:"-"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// QuestionSnapshot 固化在尝试上的单个题目定义
type QuestionSnapshot struct {
	QuestionID    uint            `json:"questionId"`
	QuestionType  string          `json:"questionType"`
	Content       string          `json:"content"`
	Options       json.RawMessage `json:"options,omitempty"`
	CorrectAnswer string          `json:"correctAnswer,omitempty"`
	Points        int             `json:"points"`
	Order         int             `json:"order"`
}

// Snapshot 反序列化固化的题目集
func (a *ExamAttempt) Snapshot() ([]QuestionSnapshot, error) {
	var qs []QuestionSnapshot
	if err := json.Unmarshal([]byte(a.QuestionSnapshot), &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// Expired reports whether the attempt's time limit has passed.
func (a *ExamAttempt) Expired(now time.Time) bool {
	return now.After(a.Deadline)
}
