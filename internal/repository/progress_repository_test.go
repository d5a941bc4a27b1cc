package repository

import (
	"lms_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 两个首次上报赛跑时，后写的 Create 撞 (user_id, lesson_id) 唯一索引，
// Save 要改走更新而不是报错，最终只留一行
func TestProgressSave_DuplicateKeyFallsBackToUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewProgressRepository(db)
	user, course, lesson := seedUserAndCourse(t, db)

	first := &model.LessonProgress{
		UserID:    user.ID,
		LessonID:  lesson.ID,
		CourseID:  course.ID,
		TimeSpent: 60,
	}
	require.NoError(t, repo.Save(first))
	require.NotZero(t, first.ID)

	// ID 为零模拟另一个请求协程各自构造的新行
	racer := &model.LessonProgress{
		UserID:    user.ID,
		LessonID:  lesson.ID,
		CourseID:  course.ID,
		TimeSpent: 90,
		Completed: true,
	}
	require.NoError(t, repo.Save(racer))
	assert.Equal(t, first.ID, racer.ID) // 回填已存在行的主键

	var count int64
	db.Model(&model.LessonProgress{}).Where("user_id = ? AND lesson_id = ?", user.ID, lesson.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindByUserAndLesson(user.ID, lesson.ID)
	require.NoError(t, err)
	assert.True(t, stored.Completed)
	assert.Equal(t, 90, stored.TimeSpent)
}
