package service

import (
	"errors"
	"testing"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"
	"examhub_backend/internal/util"

	"gorm.io/gorm"
)

type examEnv struct {
	db      *gorm.DB
	exams   *ExamService
	teacher model.User
	session model.CourseSession
}

func newExamEnv(t *testing.T) *examEnv {
	t.Helper()
	db := newTestDB(t)
	exams := NewExamService(
		repository.NewExamRepository(db),
		repository.NewCourseRepository(db),
		repository.NewEnrollmentRepository(db),
	)

	env := &examEnv{db: db, exams: exams}
	env.teacher = model.User{Name: "王老师", Email: "teacher@example.com", Password: "x", Role: model.Teacher}
	mustCreate(t, db, &env.teacher)
	course := model.Course{Code: "CS101", Title: "计算机导论", TeacherID: env.teacher.ID}
	mustCreate(t, db, &course)
	env.session = model.CourseSession{CourseID: course.ID, Name: "2026春"}
	mustCreate(t, db, &env.session)
	return env
}

func (e *examEnv) draftExam(t *testing.T) *model.Exam {
	t.Helper()
	exam, err := e.exams.Create(e.teacher.ID, model.Teacher, e.session.ID, &model.Exam{Title: "期中考试"})
	if err != nil {
		t.Fatalf("Create exam: %v", err)
	}
	return exam
}

func TestExamLifecycle(t *testing.T) {
	env := newExamEnv(t)
	exam := env.draftExam(t)

	// 空卷不允许发布
	if _, err := env.exams.Publish(env.teacher.ID, model.Teacher, exam.ID); !errors.Is(err, util.ErrExamNoQuestions) {
		t.Fatalf("publish empty exam err = %v, want ErrExamNoQuestions", err)
	}

	q := singleChoice(5, "b")
	if _, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, exam.ID, &q); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	published, err := env.exams.Publish(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if published.Status != model.ExamStatusPublished || published.PublishedAt == nil {
		t.Fatalf("after publish: status=%q publishedAt=%v", published.Status, published.PublishedAt)
	}

	// 发布后冻结
	if _, err := env.exams.Update(env.teacher.ID, model.Teacher, exam.ID, &model.Exam{Title: "改名"}); !errors.Is(err, util.ErrExamNotEditable) {
		t.Fatalf("update published err = %v, want ErrExamNotEditable", err)
	}
	q2 := trueFalse(3, "true")
	if _, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, exam.ID, &q2); !errors.Is(err, util.ErrExamNotEditable) {
		t.Fatalf("add question to published err = %v, want ErrExamNotEditable", err)
	}
	if _, err := env.exams.Publish(env.teacher.ID, model.Teacher, exam.ID); !errors.Is(err, util.ErrExamNotDraft) {
		t.Fatalf("double publish err = %v, want ErrExamNotDraft", err)
	}

	closed, err := env.exams.Close(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != model.ExamStatusClosed || closed.ClosedAt == nil {
		t.Fatalf("after close: status=%q closedAt=%v", closed.Status, closed.ClosedAt)
	}

	reopened, err := env.exams.Reopen(env.teacher.ID, model.Teacher, exam.ID)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.Status != model.ExamStatusPublished || reopened.ClosedAt != nil {
		t.Fatalf("after reopen: status=%q closedAt=%v", reopened.Status, reopened.ClosedAt)
	}
	if _, err := env.exams.Reopen(env.teacher.ID, model.Teacher, exam.ID); !errors.Is(err, util.ErrExamNotClosed) {
		t.Fatalf("reopen published err = %v, want ErrExamNotClosed", err)
	}
}

func TestExamTotalPointsTracksQuestions(t *testing.T) {
	env := newExamEnv(t)
	exam := env.draftExam(t)

	q1 := singleChoice(5, "b")
	if _, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, exam.ID, &q1); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	q2 := openEnded(10)
	if _, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, exam.ID, &q2); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}

	got, err := env.exams.Get(exam.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalPoints != 15 {
		t.Fatalf("total points = %d, want 15", got.TotalPoints)
	}

	if _, err := env.exams.UpdateQuestion(env.teacher.ID, model.Teacher, q2.ID, &model.ExamQuestion{Points: 20}); err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	got, _ = env.exams.Get(exam.ID)
	if got.TotalPoints != 25 {
		t.Fatalf("total points after update = %d, want 25", got.TotalPoints)
	}

	if err := env.exams.DeleteQuestion(env.teacher.ID, model.Teacher, q1.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	got, _ = env.exams.Get(exam.ID)
	if got.TotalPoints != 20 {
		t.Fatalf("total points after delete = %d, want 20", got.TotalPoints)
	}
}

func TestAddQuestion_Validation(t *testing.T) {
	env := newExamEnv(t)
	exam := env.draftExam(t)

	tests := []struct {
		name string
		q    model.ExamQuestion
	}{
		{"zero points", model.ExamQuestion{QuestionType: model.QuestionTypeOpenEnded, Content: "x", Points: 0}},
		{"bad options json", model.ExamQuestion{QuestionType: model.QuestionTypeSingleChoice, Content: "x", Options: "not json", CorrectAnswer: "a", Points: 5}},
		{"single option", model.ExamQuestion{QuestionType: model.QuestionTypeSingleChoice, Content: "x", Options: `[{"id":"a","text":"仅一项"}]`, CorrectAnswer: "a", Points: 5}},
		{"answer not an option", model.ExamQuestion{QuestionType: model.QuestionTypeSingleChoice, Content: "x", Options: `[{"id":"a","text":"甲"},{"id":"b","text":"乙"}]`, CorrectAnswer: "z", Points: 5}},
		{"bad boolean answer", model.ExamQuestion{QuestionType: model.QuestionTypeTrueFalse, Content: "x", CorrectAnswer: "yes", Points: 5}},
		{"unknown type", model.ExamQuestion{QuestionType: "essay", Content: "x", Points: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q
			_, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, exam.ID, &q)
			if !errors.Is(err, util.ErrInvalidQuestion) {
				t.Fatalf("AddQuestion err = %v, want ErrInvalidQuestion", err)
			}
		})
	}

	// 判断题答案大小写与空白被归一化
	q := model.ExamQuestion{QuestionType: model.QuestionTypeTrueFalse, Content: "x", CorrectAnswer: " True ", Points: 5}
	if _, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, exam.ID, &q); err != nil {
		t.Fatalf("AddQuestion normalized tf: %v", err)
	}
	if q.CorrectAnswer != "true" {
		t.Fatalf("normalized answer = %q, want %q", q.CorrectAnswer, "true")
	}
}

func TestListForStudent_OnlyEnrolledPublished(t *testing.T) {
	env := newExamEnv(t)

	student := model.User{Name: "小明", Email: "student@example.com", Password: "x", Role: model.Student}
	mustCreate(t, env.db, &student)
	mustCreate(t, env.db, &model.Enrollment{
		SessionID: env.session.ID, UserID: student.ID,
		Status: model.EnrollmentStatusActive, EnrolledAt: time.Now(),
	})

	// 已发布 + 未发布各一场
	draft := env.draftExam(t)
	published := env.draftExam(t)
	q := singleChoice(5, "b")
	if _, err := env.exams.AddQuestion(env.teacher.ID, model.Teacher, published.ID, &q); err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if _, err := env.exams.Publish(env.teacher.ID, model.Teacher, published.ID); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	exams, err := env.exams.ListForStudent(student.ID)
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if len(exams) != 1 || exams[0].ID != published.ID {
		t.Fatalf("student sees %d exams (draft %d should be hidden)", len(exams), draft.ID)
	}

	// 未选课的学生什么都看不到
	loner := model.User{Name: "路人", Email: "loner@example.com", Password: "x", Role: model.Student}
	mustCreate(t, env.db, &loner)
	exams, err = env.exams.ListForStudent(loner.ID)
	if err != nil {
		t.Fatalf("ListForStudent loner: %v", err)
	}
	if len(exams) != 0 {
		t.Fatalf("unenrolled student sees %d exams, want 0", len(exams))
	}
}
