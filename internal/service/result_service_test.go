package service

import (
	"errors"
	"testing"

	"examhub_backend/internal/model"
	"examhub_backend/internal/util"
)

func TestGetResult_PendingWhileUngraded(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, singleChoice(5, "b"), openEnded(10))

	result, err := env.attempts.StartAttempt(env.student.ID, exam.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := result.Attempt.ID

	// 进行中
	view, err := env.results.GetResult(env.student.ID, attemptID, false)
	if err != nil {
		t.Fatalf("GetResult in progress: %v", err)
	}
	if view.Available {
		t.Fatal("result available during attempt, want placeholder")
	}
	if len(view.Questions) != 0 {
		t.Fatal("placeholder view must not leak the breakdown")
	}

	// 已交卷但主观题未评
	if _, err := env.attempts.SubmitAttempt(env.student.ID, attemptID); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	view, err = env.results.GetResult(env.student.ID, attemptID, false)
	if err != nil {
		t.Fatalf("GetResult submitted: %v", err)
	}
	if view.Available {
		t.Fatal("result available before manual grading finished")
	}
	if view.Status != model.AttemptStatusSubmitted {
		t.Fatalf("status = %q, want submitted", view.Status)
	}
}

func TestGetResult_GradedBreakdown(t *testing.T) {
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
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if err := env.attempts.SubmitAnswer(env.student.ID, attemptID, openID, "自由作答"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if _, err := env.attempts.SubmitAttempt(env.student.ID, attemptID); err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if _, err := env.grading.Resolve(env.teacher.ID, model.Teacher, attemptID, openID, 7, "不错"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	view, err := env.results.GetResult(env.student.ID, attemptID, false)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if !view.Available {
		t.Fatal("graded result not available")
	}
	if view.Score != 12 || view.MaxScore != 15 {
		t.Fatalf("score = %d/%d, want 12/15", view.Score, view.MaxScore)
	}
	if view.Percentage != 80 {
		t.Fatalf("percentage = %v, want 80", view.Percentage)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("%d question rows, want 2", len(view.Questions))
	}

	mcq := view.Questions[0]
	if mcq.Resolution != model.ResolutionAutoCorrect || mcq.AwardedPoints != 5 {
		t.Fatalf("mcq row = %+v, want auto_correct 5 points", mcq)
	}
	if mcq.CorrectAnswer != "b" {
		t.Fatalf("graded view should reveal the correct answer, got %q", mcq.CorrectAnswer)
	}
	open := view.Questions[1]
	if open.Resolution != model.ResolutionManualGraded || open.AwardedPoints != 7 || open.Feedback != "不错" {
		t.Fatalf("open row = %+v, want manual_graded 7 points with feedback", open)
	}
}

func TestGetResult_OwnershipHiding(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, singleChoice(5, "b"))
	other := env.addStudent(t, "小红", "hong@example.com")

	result, err := env.attempts.StartAttempt(env.student.ID, exam.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	// 别人的尝试与不存在不可区分
	_, err = env.results.GetResult(other.ID, result.Attempt.ID, false)
	if !errors.Is(err, util.ErrAttemptNotFound) {
		t.Fatalf("foreign GetResult err = %v, want ErrAttemptNotFound", err)
	}

	// 教师/管理员走 staff 通道
	if _, err := env.results.GetResult(env.teacher.ID, result.Attempt.ID, true); err != nil {
		t.Fatalf("staff GetResult: %v", err)
	}
}

// 超时的尝试在成绩读取时被隐式结算，全客观卷直接出分
func TestGetResult_ExpiryFinalizesAttempt(t *testing.T) {
	env := newTestEnv(t)
	exam := env.publishExam(t, 1, singleChoice(5, "b"), trueFalse(3, "true"))

	result, err := env.attempts.StartAttempt(env.student.ID, exam.ID)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	attemptID := result.Attempt.ID

	if err := env.attempts.SubmitAnswer(env.student.ID, attemptID, result.Questions[0].QuestionID, "b"); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	env.backdateDeadline(t, attemptID)

	view, err := env.results.GetResult(env.student.ID, attemptID, false)
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if !view.Available {
		t.Fatal("expired all-objective attempt should be graded on read")
	}
	if view.Score != 5 || view.MaxScore != 8 {
		t.Fatalf("score = %d/%d, want 5/8", view.Score, view.MaxScore)
	}
}
