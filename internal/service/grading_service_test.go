package service

import (
	"errors"
	"testing"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
)

// 完整人工评分流程：客观题 5 分答对，主观题 10 分得 7，总分 12
func TestResolve_FullGradingFlow(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, singleChoice(5, "b"), openEnded(10))

	result, err := env.attempts.StartAttempt(env.student.ID, exam.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := result.Attempt.ID
	mcqID := result.Questions[0].QuestionID
	openID := result.Questions[1].QuestionID

	if err := env.attempts.SubmitAnswer(env.student.ID, attemptID, mcqID, "b"); err != nil {
		t.Fatalf("SubmitAnswer mcq: %v", err)
	}
	if err := env.attempts.SubmitAnswer(env.student.ID, attemptID, openID, "goroutine 由运行时调度"); err != nil {
		t.Fatalf("SubmitAnswer open: %v", err)
	}
	attempt, err := env.attempts.SubmitAttempt(env.student.ID, attemptID)
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if attempt.Status != model.AttemptStatusSubmitted {
		t.Fatalf("status = %q, want submitted", attempt.Status)
	}

	pending, err := env.grading.ListPending(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("%d pending attempts, want 1", len(pending))
	}
	if pending[0].AttemptID != attemptID || pending[0].UnresolvedCount != 1 {
		t.Fatalf("pending = %+v, want attempt %d with 1 unresolved", pending[0], attemptID)
	}
	if pending[0].UserName != env.student.Name {
		t.Fatalf("pending user name = %q, want %q", pending[0].UserName, env.student.Name)
	}

	graded, err := env.grading.Resolve(env.teacher.ID, model.Teacher, attemptID, openID, 7, "要点齐全但缺例子")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if graded.Status != model.AttemptStatusGraded {
		t.Fatalf("status = %q, want graded", graded.Status)
	}
	if graded.Score == nil || *graded.Score != 12 {
		t.Fatalf("score = %v, want 12", graded.Score)
	}

	var answer model.AttemptAnswer
	env.db.Where("attempt_id = ? AND question_id = ?", attemptID, openID).First(&answer)
	if answer.Resolution != model.ResolutionManualGraded {
		t.Fatalf("resolution = %q, want manual_graded", answer.Resolution)
	}
	if answer.GraderID != env.teacher.ID || answer.GradedAt == nil {
		t.Fatalf("grader audit fields missing: graderID=%d gradedAt=%v", answer.GraderID, answer.GradedAt)
	}

	// 评完后队列清空
	pending, err = env.grading.ListPending(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("ListPending after grading: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("%d pending attempts after grading, want 0", len(pending))
	}
}

func TestResolve_Validation(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 2, singleChoice(5, "b"), openEnded(10))

	result, err := env.attempts.StartAttempt(env.student.ID, exam.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := result.Attempt.ID
	mcqID := result.Questions[0].QuestionID
	openID := result.Questions[1].QuestionID

	otherTeacher := model.User{Name: "李老师", Email: "other-teacher@example.com", Password: "x", Role: model.Teacher}
	mustCreate(t, env.db, &otherTeacher)

	// 尝试还在进行中
	_, err = env.grading.Resolve(env.teacher.ID, model.Teacher, attemptID, openID, 5, "")
	if !errors.Is(err, util.ErrAttemptNotSubmitted) {
		t.Fatalf("Resolve on in_progress err = %v, want ErrAttemptNotSubmitted", err)
	}

	if _, err := env.attempts.SubmitAttempt(env.student.ID, attemptID); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}

	tests := []struct {
		name       string
		graderID   uint
		role       model.UserRole
		questionID uint
		points     int
		wantErr    error
	}{
		{"attempt not found", env.teacher.ID, model.Teacher, 0, 5, util.ErrAttemptNotFound},
		{"foreign teacher", otherTeacher.ID, model.Teacher, openID, 5, util.ErrPermissionDenied},
		{"unknown question", env.teacher.ID, model.Teacher, 9999, 5, util.ErrUnknownQuestion},
		{"objective question", env.teacher.ID, model.Teacher, mcqID, 5, util.ErrNotManualQuestion},
		{"points below range", env.teacher.ID, model.Teacher, openID, -1, util.ErrPointsOutOfRange},
		{"points above range", env.teacher.ID, model.Teacher, openID, 11, util.ErrPointsOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targetAttempt := attemptID
			if tt.name == "attempt not found" {
				targetAttempt = 9999
			}
			_, err := env.grading.Resolve(tt.graderID, tt.role, targetAttempt, tt.questionID, tt.points, "")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// 管理员不受创建者限制
	if _, err := env.grading.Resolve(otherTeacher.ID, model.Admin, attemptID, openID, 10, ""); err != nil {
		t.Fatalf("Resolve as admin: %v", err)
	}
}

func TestResolve_GradedAttemptRejectsRegrade(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, openEnded(10))

	result, err := env.attempts.StartAttempt(env.student.ID, exam.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := result.Attempt.ID
	openID := result.Questions[0].QuestionID

	if _, err := env.attempts.SubmitAttempt(env.student.ID, attemptID); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if _, err := env.grading.Resolve(env.teacher.ID, model.Teacher, attemptID, openID, 6, ""); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	_, err = env.grading.Resolve(env.teacher.ID, model.Teacher, attemptID, openID, 8, "")
	if !errors.Is(err, util.ErrAttemptNotSubmitted) {
		t.Fatalf("regrade err = %v, want ErrAttemptNotSubmitted", err)
	}
}

func TestListPending_OrderedBySubmitTime(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, openEnded(10))
	second := env.addStudent(t, "小红", "hong@example.com")

	submit := func(userID uint) uint {
		result, err := env.attempts.StartAttempt(userID, exam.ID)
		if err != nil {
			t.Fatalf("StartAttempt: %v", err)
		}
		if _, err := env.attempts.SubmitAttempt(userID, result.Attempt.ID); err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
		return result.Attempt.ID
	}

	firstAttempt := submit(env.student.ID)
	secondAttempt := submit(second.ID)

	// 把第二个人的交卷时间改早，队列应按交卷时间重排
	earlier := time.Now().Add(-time.Hour)
	err := env.db.Model(&model.ExamAttempt{}).Where("id = ?", secondAttempt).
		Update("ended_at", earlier).Error
	if err != nil {
		t.Fatalf("backdate ended_at: %v", err)
	}

	pending, err := env.grading.ListPending(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("%d pending, want 2", len(pending))
	}
	if pending[0].AttemptID != secondAttempt || pending[1].AttemptID != firstAttempt {
		t.Fatalf("queue order = [%d %d], want [%d %d]",
			pending[0].AttemptID, pending[1].AttemptID, secondAttempt, firstAttempt)
	}
}

// 一次列出多份尝试时，各自的未判定数和考生姓名互不串扰
func TestListPending_PerAttemptCountsAndNames(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, openEnded(10), openEnded(5))
	second := env.addStudent(t, "小红", "hong@example.com")

	submit := func(userID uint) (uint, uint) {
		result, err := env.attempts.StartAttempt(userID, exam.ID)
		if err != nil {
			t.Fatalf("StartAttempt: %v", err)
		}
		if _, err := env.attempts.SubmitAttempt(userID, result.Attempt.ID); err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
		return result.Attempt.ID, result.Questions[0].QuestionID
	}

	firstAttempt, firstQuestion := submit(env.student.ID)
	secondAttempt, _ := submit(second.ID)

	// 第一份尝试评掉一道，剩 1 道未判定；第二份仍是 2 道
	if _, err := env.grading.Resolve(env.teacher.ID, model.Teacher, firstAttempt, firstQuestion, 8, ""); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	pending, err := env.grading.ListPending(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("%d pending, want 2", len(pending))
	}

	byAttempt := make(map[uint]PendingAttempt, len(pending))
	for _, p := range pending {
		byAttempt[p.AttemptID] = p
	}
	if got := byAttempt[firstAttempt]; got.UnresolvedCount != 1 || got.UserName != env.student.Name {
		t.Fatalf("first attempt = %+v, want 1 unresolved for %q", got, env.student.Name)
	}
	if got := byAttempt[secondAttempt]; got.UnresolvedCount != 2 || got.UserName != second.Name {
		t.Fatalf("second attempt = %+v, want 2 unresolved for %q", got, second.Name)
	}
}

func TestListPending_PermissionAndMissingExam(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, openEnded(10))
	otherTeacher := model.User{Name: "李老师", Email: "other-teacher@example.com", Password: "x", Role: model.Teacher}
	mustCreate(t, env.db, &otherTeacher)

	if _, err := env.grading.ListPending(env.teacher.ID, model.Teacher, 9999); !errors.Is(err, util.ErrExamNotFound) {
		t.Fatalf("missing exam err = %v, want ErrExamNotFound", err)
	}
	if _, err := env.grading.ListPending(otherTeacher.ID, model.Teacher, exam.ID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("foreign teacher err = %v, want ErrPermissionDenied", err)
	}
	if _, err := env.grading.ListPending(otherTeacher.ID, model.Admin, exam.ID); err != nil {
		t.Fatalf("admin ListPending: %v", err)
	}
}
