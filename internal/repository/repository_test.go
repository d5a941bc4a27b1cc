package repository

import (
	"fmt"
	"lms_backend/internal/model"
	"lms_backend/pkg/database"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))
	return db
}

// seedUserAndCourse 一个学生和一门带单课时的已发布课程，唯一性测试的底料
func seedUserAndCourse(t *testing.T, db *gorm.DB) (*model.User, *model.Course, *model.Lesson) {
	t.Helper()

	user := &model.User{Name: "学生", Email: "student@test.local", Password: "hashed", Role: model.Student}
	require.NoError(t, db.Create(user).Error)

	course := &model.Course{Title: "测试课程", Published: true, TeacherID: user.ID}
	require.NoError(t, db.Create(course).Error)

	lesson := &model.Lesson{CourseID: course.ID, Title: "第 1 课", Type: model.LessonText, SortOrder: 1, Content: "内容"}
	require.NoError(t, db.Create(lesson).Error)

	return user, course, lesson
}
