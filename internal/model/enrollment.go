package model

import "time"

const (
	EnrollmentStatusActive  = "active"
	EnrollmentStatusDropped = "dropped"
)

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	SessionID  uint      `gorm:"index;uniqueIndex:uq_session_student" json:"sessionId"`
	UserID     uint      `gorm:"index;uniqueIndex:uq_session_student" json:"userId"`
	Status     string    `gorm:"size:20;default:'active'" json:"status"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
