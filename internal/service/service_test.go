package service

import (
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/pkg/database"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

// newTestDB 每个测试一个独立的内存 sqlite 库，表结构与生产迁移一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Certificate: config.CertificateConfig{
			PassRatio:     0.7,
			QuizPassScore: 70,
		},
	}
}

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	enrollments *EnrollmentService
	progress    *ProgressService
	certs       *CertificateService
	catalog     *CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)

	certs := NewCertificateService(certificateRepo, courseRepo, lessonRepo, progressRepo, cfg)

	return &testEnv{
		db:          db,
		cfg:         cfg,
		enrollments: NewEnrollmentService(enrollmentRepo, courseRepo, userRepo),
		progress:    NewProgressService(progressRepo, lessonRepo, courseRepo, enrollmentRepo, certs, cfg),
		certs:       certs,
		catalog:     NewCatalogService(courseRepo, lessonRepo, enrollmentRepo, userRepo, nil, cfg),
	}
}

func (e *testEnv) createUser(t *testing.T, name string, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@test.local", name),
		Password: "hashed",
		Role:     role,
	}
	require.NoError(t, e.db.Create(user).Error)
	return user
}

// createCourse 建一门已发布课程，带 lessonTypes 指定类型的课时（order 从 1 起）
func (e *testEnv) createCourse(t *testing.T, teacher *model.User, lessonTypes ...model.LessonType) (*model.Course, []model.Lesson) {
	t.Helper()

	course := &model.Course{
		Title:     "Go 进阶",
		Published: true,
		TeacherID: teacher.ID,
	}
	require.NoError(t, e.db.Create(course).Error)

	lessons := make([]model.Lesson, 0, len(lessonTypes))
	for i, lt := range lessonTypes {
		lesson := model.Lesson{
			CourseID:  course.ID,
			Title:     fmt.Sprintf("第 %d 课", i+1),
			Type:      lt,
			SortOrder: i + 1,
		}
		if lt == model.LessonText {
			lesson.Content = "内容"
		}
		require.NoError(t, e.db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func (e *testEnv) enroll(t *testing.T, user *model.User, course *model.Course) {
	t.Helper()

	_, err := e.enrollments.Enroll(user.ID, course.ID)
	require.NoError(t, err)
}

func intPtr(v int) *int { return &v }
