package model

import "time"

const (
	ExamStatusDraft     = "draft"
	ExamStatusPublished = "published"
	ExamStatusClosed    = "closed"
)

// swagger:model Exam
type Exam struct {
	BaseModel

	SessionID       uint       `gorm:"index" json:"sessionId"`
	CreatorID       uint       `gorm:"index" json:"creatorId"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	CoverURL        string     `gorm:"size:255" json:"coverUrl"`
	DurationMinutes int        `gorm:"default:60" json:"durationMinutes"`
	MaxAttempts     int        `gorm:"default:1" json:"maxAttempts"`
	TotalPoints     int        `gorm:"default:0" json:"totalPoints"`
	Status          string     `gorm:"size:20;default:'draft'" json:"status"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	ClosedAt        *time.Time `json:"closedAt,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}
