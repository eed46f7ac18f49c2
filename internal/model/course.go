package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	TeacherID   uint   `gorm:"index" json:"teacherId"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseSession 一门课程的一个开课学期（如 2026 春季班）
// swagger:model CourseSession
type CourseSession struct {
	BaseModel
	CourseID uint       `gorm:"index" json:"courseId"`
	Name     string     `gorm:"size:100;not null" json:"name"`
	StartsAt *time.Time `json:"startsAt,omitempty"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`
	Archived bool       `gorm:"default:false" json:"archived"`
}

func (CourseSession) TableName() string {
	return "course_sessions"
}
