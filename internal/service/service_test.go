package service

import (
	"testing"
	"time"

	"examhub_backend/internal/model"
	"examhub_backend/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("raw db: %v", err)
	}
	// 内存库随连接销毁，收紧到单连接保证所有会话看到同一份数据
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseSession{},
		&model.Enrollment{},
		&model.Exam{},
		&model.ExamQuestion{},
		&model.ExamAttempt{},
		&model.AttemptAnswer{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db       *gorm.DB
	attempts *AttemptService
	grading  *GradingService
	results  *ResultService
	teacher  model.User
	student  model.User
	session  model.CourseSession
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	keys := NewKeyMutex()
	userRepo := repository.NewUserRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	examRepo := repository.NewExamRepository(db)
	attemptRepo := repository.NewExamAttemptRepository(db)
	answerRepo := repository.NewAttemptAnswerRepository(db)

	attempts := NewAttemptService(examRepo, enrollmentRepo, attemptRepo, answerRepo, db, keys)
	results := NewResultService(attemptRepo, answerRepo, examRepo, attempts, db, nil, 0)
	grading := NewGradingService(examRepo, userRepo, attemptRepo, answerRepo, results, db, keys)

	env := &testEnv{
		db:       db,
		attempts: attempts,
		grading:  grading,
		results:  results,
	}

	env.teacher = model.User{Name: "王老师", Email: "teacher@example.com", Password: "x", Role: model.Teacher}
	env.student = model.User{Name: "小明", Email: "student@example.com", Password: "x", Role: model.Student}
	mustCreate(t, db, &env.teacher)
	mustCreate(t, db, &env.student)

	course := model.Course{Code: "CS101", Title: "计算机导论", TeacherID: env.teacher.ID}
	mustCreate(t, db, &course)
	env.session = model.CourseSession{CourseID: course.ID, Name: "2026春"}
	mustCreate(t, db, &env.session)
	env.enroll(t, env.student.ID)

	return env
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func (e *testEnv) enroll(t *testing.T, userID uint) {
	t.Helper()
	mustCreate(t, e.db, &model.Enrollment{
		SessionID:  e.session.ID,
		UserID:     userID,
		Status:     model.EnrollmentStatusActive,
		EnrolledAt: time.Now(),
	})
}

func (e *testEnv) addStudent(t *testing.T, name, email string) model.User {
	t.Helper()
	user := model.User{Name: name, Email: email, Password: "x", Role: model.Student}
	mustCreate(t, e.db, &user)
	e.enroll(t, user.ID)
	return user
}

// publishExam 直接落库一场已发布的考试，跳过 draft 流程
func (e *testEnv) publishExam(t *testing.T, maxAttempts int, questions ...model.ExamQuestion) model.Exam {
	t.Helper()
	now := time.Now()
	exam := model.Exam{
		SessionID:       e.session.ID,
		CreatorID:       e.teacher.ID,
		Title:           "期中考试",
		DurationMinutes: 30,
		MaxAttempts:     maxAttempts,
		Status:          model.ExamStatusPublished,
		PublishedAt:     &now,
	}
	mustCreate(t, e.db, &exam)

	total := 0
	for i := range questions {
		questions[i].ExamID = exam.ID
		questions[i].Order = i + 1
		mustCreate(t, e.db, &questions[i])
		total += questions[i].Points
	}
	exam.TotalPoints = total
	if err := e.db.Save(&exam).Error; err != nil {
		t.Fatalf("save exam: %v", err)
	}
	return exam
}

// backdateDeadline 把截止时间改到过去，模拟超时
func (e *testEnv) backdateDeadline(t *testing.T, attemptID uint) time.Time {
	t.Helper()
	past := time.Now().Add(-time.Minute).Truncate(time.Second)
	err := e.db.Model(&model.ExamAttempt{}).Where("id = ?", attemptID).
		Update("deadline", past).Error
	if err != nil {
		t.Fatalf("backdate deadline: %v", err)
	}
	return past
}

func singleChoice(points int, correct string) model.ExamQuestion {
	return model.ExamQuestion{
		QuestionType:  model.QuestionTypeSingleChoice,
		Content:       "下列哪项正确？",
		Options:       `[{"id":"a","text":"甲"},{"id":"b","text":"乙"},{"id":"c","text":"丙"}]`,
		CorrectAnswer: correct,
		Points:        points,
	}
}

func trueFalse(points int, correct string) model.ExamQuestion {
	return model.ExamQuestion{
		QuestionType:  model.QuestionTypeTrueFalse,
		Content:       "Go 的 map 是并发安全的。",
		CorrectAnswer: correct,
		Points:        points,
	}
}

func openEnded(points int) model.ExamQuestion {
	return model.ExamQuestion{
		QuestionType: model.QuestionTypeOpenEnded,
		Content:      "简述 goroutine 与线程的区别。",
		Points:       points,
	}
}
