package service

import (
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordCompletion_RequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	_, lessons := env.createCourse(t, teacher, model.LessonText)

	_, err := env.progress.RecordCompletion(student.ID, lessons[0].ID, RecordCompletionRequest{Completed: true})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestRecordCompletion_Validation(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonText, model.LessonQuiz)
	env.enroll(t, student, course)

	_, err := env.progress.RecordCompletion(student.ID, lessons[0].ID, RecordCompletionRequest{TimeSpent: -1})
	assert.ErrorIs(t, err, util.ErrNegativeTimeSpent)

	_, err = env.progress.RecordCompletion(student.ID, lessons[1].ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(101)})
	assert.ErrorIs(t, err, util.ErrScoreOutOfRange)

	// 测验课时标完成必须带分数
	_, err = env.progress.RecordCompletion(student.ID, lessons[1].ID, RecordCompletionRequest{Completed: true})
	assert.ErrorIs(t, err, util.ErrQuizScoreRequired)

	_, err = env.progress.RecordCompletion(student.ID, 9999, RecordCompletionRequest{Completed: true})
	assert.ErrorIs(t, err, util.ErrLessonNotFound)
}

func TestRecordCompletion_QuizGating(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonQuiz)
	env.enroll(t, student, course)

	quiz := lessons[0]

	// 不及格：留分数，不算完成
	result, err := env.progress.RecordCompletion(student.ID, quiz.ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(65)})
	require.NoError(t, err)
	assert.False(t, result.Progress.Completed)
	assert.Nil(t, result.Progress.CompletedAt)
	require.NotNil(t, result.Progress.QuizScore)
	assert.Equal(t, 65, *result.Progress.QuizScore)
	assert.Equal(t, 0, result.CourseProgress.CompletedLessons)

	// 重考及格：翻成完成，completedAt 由服务端落在第二次调用
	result, err = env.progress.RecordCompletion(student.ID, quiz.ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(75)})
	require.NoError(t, err)
	assert.True(t, result.Progress.Completed)
	require.NotNil(t, result.Progress.CompletedAt)
	assert.Equal(t, 75, *result.Progress.QuizScore)
	assert.Equal(t, 1, result.CourseProgress.CompletedLessons)
}

func TestRecordCompletion_QuizScoreKeepsLastAttempt(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonQuiz)
	env.enroll(t, student, course)

	quiz := lessons[0]

	_, err := env.progress.RecordCompletion(student.ID, quiz.ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(90)})
	require.NoError(t, err)

	// 及格后再提交较低的分数：覆盖分数，完成状态不回退
	result, err := env.progress.RecordCompletion(student.ID, quiz.ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(72)})
	require.NoError(t, err)
	assert.True(t, result.Progress.Completed)
	assert.Equal(t, 72, *result.Progress.QuizScore)

	var count int64
	env.db.Model(&model.LessonProgress{}).Where("user_id = ? AND lesson_id = ?", student.ID, quiz.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRecordCompletion_MonotonicAndAccumulatesTime(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonText)
	env.enroll(t, student, course)

	lesson := lessons[0]

	result, err := env.progress.RecordCompletion(student.ID, lesson.ID, RecordCompletionRequest{Completed: true, TimeSpent: 120})
	require.NoError(t, err)
	require.NotNil(t, result.Progress.CompletedAt)
	firstCompletedAt := *result.Progress.CompletedAt

	// 已完成后提交 completed=false：完成状态不回退，时间继续累计
	result, err = env.progress.RecordCompletion(student.ID, lesson.ID, RecordCompletionRequest{Completed: false, TimeSpent: 30})
	require.NoError(t, err)
	assert.True(t, result.Progress.Completed)
	require.NotNil(t, result.Progress.CompletedAt)
	assert.Equal(t, firstCompletedAt.Unix(), result.Progress.CompletedAt.Unix())
	assert.Equal(t, 150, result.Progress.TimeSpent)
}

func TestRecordCompletion_ThresholdHotReload(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonQuiz, model.LessonQuiz)
	env.enroll(t, student, course)

	// 默认分数线 70：75 分及格
	result, err := env.progress.RecordCompletion(student.ID, lessons[0].ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(75)})
	require.NoError(t, err)
	assert.True(t, result.Progress.Completed)

	// 热更新分数线到 90：同样的 75 分不再及格
	env.cfg.SetCertificateRules(config.CertificateConfig{PassRatio: 0.7, QuizPassScore: 90})

	result, err = env.progress.RecordCompletion(student.ID, lessons[1].ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(75)})
	require.NoError(t, err)
	assert.False(t, result.Progress.Completed)
}

// 配置监听协程发布新阈值的同时请求协程在读，不能有数据竞争
func TestRecordCompletion_ConcurrentThresholdReload(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonQuiz)
	env.enroll(t, student, course)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			env.cfg.SetCertificateRules(config.CertificateConfig{PassRatio: 0.7, QuizPassScore: 70 + i%20})
		}
	}()

	for i := 0; i < 50; i++ {
		_, err := env.progress.RecordCompletion(student.ID, lessons[0].ID, RecordCompletionRequest{Completed: true, QuizScore: intPtr(95)})
		require.NoError(t, err)
	}
	<-done

	// 95 分在任何发布过的分数线下都及格
	progress, err := env.progress.GetCourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CompletedLessons)
}

func TestGetCourseProgress_Summary(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonText, model.LessonText, model.LessonText)
	env.enroll(t, student, course)

	_, err := env.progress.RecordCompletion(student.ID, lessons[0].ID, RecordCompletionRequest{Completed: true, TimeSpent: 60})
	require.NoError(t, err)

	summary, err := env.progress.GetCourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalLessons)
	assert.Equal(t, 1, summary.CompletedLessons)
	assert.Equal(t, 33, summary.Percent) // 1/3 四舍五入
	assert.Equal(t, int64(60), summary.TimeSpent)
	require.Len(t, summary.Lessons, 3)
	assert.True(t, summary.Lessons[0].Completed)
	assert.False(t, summary.Lessons[1].Completed)
}

func TestGetCourseProgress_NotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)

	_, err := env.progress.GetCourseProgress(student.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestGetOverallProgress_ZeroLessonCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, _ := env.createCourse(t, teacher) // 没有课时
	env.enroll(t, student, course)

	overviews, err := env.progress.GetOverallProgress(student.ID)
	require.NoError(t, err)
	require.Len(t, overviews, 1)
	assert.Equal(t, 0, overviews[0].TotalLessons)
	assert.Equal(t, 0, overviews[0].Percent)
	assert.False(t, overviews[0].Certified)
}

func TestRoundPercent(t *testing.T) {
	assert.Equal(t, 0, RoundPercent(0, 0))
	assert.Equal(t, 33, RoundPercent(1, 3))
	assert.Equal(t, 67, RoundPercent(2, 3))
	assert.Equal(t, 38, RoundPercent(3, 8)) // 37.5 向上取
	assert.Equal(t, 100, RoundPercent(5, 5))
}
