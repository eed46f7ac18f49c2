package util

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotEnrolled      = errors.New("student not enrolled in this session")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("account disabled")
	ErrUserNotFound       = errors.New("user not found")

	ErrCourseNotFound  = errors.New("course not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionArchived = errors.New("session is archived")
	ErrAlreadyEnrolled = errors.New("student already enrolled in this session")

	ErrExamNotFound     = errors.New("exam not found")
	ErrExamNotEditable  = errors.New("exam is published and can no longer be edited")
	ErrExamNotPublished = errors.New("exam not published")
	ErrExamNotDraft     = errors.New("exam is not in draft status")
	ErrExamNotClosed    = errors.New("exam is not closed")
	ErrExamNoQuestions  = errors.New("exam has no questions")
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidQuestion  = errors.New("invalid question payload")

	ErrAttemptNotFound          = errors.New("attempt not found")
	ErrAttemptLimitExceeded     = errors.New("attempt limit exceeded")
	ErrAttemptAlreadyInProgress = errors.New("an attempt is already in progress")
	ErrAttemptNotActive         = errors.New("attempt is not active")
	ErrAttemptNotSubmitted      = errors.New("attempt is not submitted")
	ErrDeadlineExceeded         = errors.New("attempt deadline exceeded")
	ErrUnknownQuestion          = errors.New("question does not belong to this attempt")
	ErrNotManualQuestion        = errors.New("question is auto-graded and cannot be graded manually")
	ErrPointsOutOfRange         = errors.New("awarded points out of range")
)

// HTTPStatus 将错误归类为 HTTP 状态码。
// 未列出的错误一律视为基础设施故障（可重试），由 HandleError 统一转为 503。
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrExamNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrCourseNotFound),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrNotEnrolled),
		errors.Is(err, ErrUserDisabled):
		return http.StatusForbidden
	case errors.Is(err, ErrUnknownQuestion),
		errors.Is(err, ErrPointsOutOfRange),
		errors.Is(err, ErrInvalidQuestion):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrSessionArchived),
		errors.Is(err, ErrAlreadyEnrolled),
		errors.Is(err, ErrExamNotPublished),
		errors.Is(err, ErrExamNotEditable),
		errors.Is(err, ErrExamNotDraft),
		errors.Is(err, ErrExamNotClosed),
		errors.Is(err, ErrExamNoQuestions),
		errors.Is(err, ErrAttemptLimitExceeded),
		errors.Is(err, ErrAttemptAlreadyInProgress),
		errors.Is(err, ErrAttemptNotActive),
		errors.Is(err, ErrAttemptNotSubmitted),
		errors.Is(err, ErrNotManualQuestion),
		errors.Is(err, ErrDeadlineExceeded):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}
