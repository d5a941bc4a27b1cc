package service

import (
	"context"
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse_StudentForbidden(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "student", model.Student)

	_, err := env.catalog.CreateCourse(student.ID, CourseRequest{Title: "学生建课"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestGetCourse_HidesUnpublishedFromStudents(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)

	course, err := env.catalog.CreateCourse(teacher.ID, CourseRequest{Title: "草稿课", Published: false})
	require.NoError(t, err)

	// 未发布课程对学生表现为不存在，不暴露草稿
	_, _, err = env.catalog.GetCourse(student.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)

	got, _, err := env.catalog.GetCourse(teacher.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, got.ID)
}

func TestListPublished_ExcludesDrafts(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)

	_, err := env.catalog.CreateCourse(teacher.ID, CourseRequest{Title: "已发布", Published: true})
	require.NoError(t, err)
	_, err = env.catalog.CreateCourse(teacher.ID, CourseRequest{Title: "草稿", Published: false})
	require.NoError(t, err)

	courses, err := env.catalog.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "已发布", courses[0].Title)
}

func TestUpdateCourse_OnlyOwnerOrAdmin(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", model.Teacher)
	other := env.createUser(t, "other", model.Teacher)
	admin := env.createUser(t, "admin", model.Admin)
	course, _ := env.createCourse(t, owner, model.LessonText)

	req := CourseRequest{Title: "改名", Published: true}

	_, err := env.catalog.UpdateCourse(other.ID, course.ID, req)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	updated, err := env.catalog.UpdateCourse(admin.ID, course.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "改名", updated.Title)
}

func TestDeleteCourse_BlockedByEnrollments(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)
	env.enroll(t, student, course)

	err := env.catalog.DeleteCourse(teacher.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseHasStudents)

	require.NoError(t, env.enrollments.Unenroll(student.ID, course.ID, student.ID))
	assert.NoError(t, env.catalog.DeleteCourse(teacher.ID, course.ID))
}

func TestCreateLesson_PayloadMustMatchType(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	course, _ := env.createCourse(t, teacher)

	// 文本课时不允许带视频地址
	_, err := env.catalog.CreateLesson(teacher.ID, course.ID, LessonRequest{
		Title:    "串类型",
		Type:     model.LessonText,
		Order:    1,
		Content:  "内容",
		VideoURL: "/uploads/x.mp4",
	})
	assert.ErrorIs(t, err, util.ErrBadLessonPayload)

	// 测验至少一道题，选项至少两个且正确下标有效
	_, err = env.catalog.CreateLesson(teacher.ID, course.ID, LessonRequest{
		Title: "空测验",
		Type:  model.LessonQuiz,
		Order: 1,
	})
	assert.ErrorIs(t, err, util.ErrBadLessonPayload)

	_, err = env.catalog.CreateLesson(teacher.ID, course.ID, LessonRequest{
		Title: "坏下标",
		Type:  model.LessonQuiz,
		Order: 1,
		Questions: []QuizQuestionRequest{
			{Text: "题", Options: []string{"a", "b"}, CorrectIndex: 2},
		},
	})
	assert.ErrorIs(t, err, util.ErrBadLessonPayload)

	lesson, err := env.catalog.CreateLesson(teacher.ID, course.ID, LessonRequest{
		Title: "正经测验",
		Type:  model.LessonQuiz,
		Order: 1,
		Questions: []QuizQuestionRequest{
			{Text: "题", Options: []string{"a", "b", "c"}, CorrectIndex: 1, Order: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, lesson.Questions, 1)
}

func TestCreateLesson_OrderTaken(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	course, _ := env.createCourse(t, teacher, model.LessonText)

	_, err := env.catalog.CreateLesson(teacher.ID, course.ID, LessonRequest{
		Title:   "重复序号",
		Type:    model.LessonText,
		Order:   1, // createCourse 已经用掉 1
		Content: "内容",
	})
	assert.ErrorIs(t, err, util.ErrLessonOrderTaken)

	// 序号允许不连续
	lesson, err := env.catalog.CreateLesson(teacher.ID, course.ID, LessonRequest{
		Title:   "跳号",
		Type:    model.LessonText,
		Order:   10,
		Content: "内容",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, lesson.SortOrder)
}

func TestUpdateLesson_KeepOwnOrderAllowed(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	_, lessons := env.createCourse(t, teacher, model.LessonText, model.LessonText)

	// 序号不变的更新不应撞自己
	updated, err := env.catalog.UpdateLesson(teacher.ID, lessons[0].ID, LessonRequest{
		Title:   "改标题",
		Type:    model.LessonText,
		Order:   lessons[0].SortOrder,
		Content: "新内容",
	})
	require.NoError(t, err)
	assert.Equal(t, "改标题", updated.Title)

	// 改成别人的序号要报冲突
	_, err = env.catalog.UpdateLesson(teacher.ID, lessons[0].ID, LessonRequest{
		Title:   "撞号",
		Type:    model.LessonText,
		Order:   lessons[1].SortOrder,
		Content: "新内容",
	})
	assert.ErrorIs(t, err, util.ErrLessonOrderTaken)
}

func TestSetLessonVideo_OnlyVideoLessons(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	_, lessons := env.createCourse(t, teacher, model.LessonText, model.LessonVideo)

	_, err := env.catalog.SetLessonVideo(teacher.ID, lessons[0].ID, "/uploads/a.mp4", 12.5)
	assert.ErrorIs(t, err, util.ErrBadLessonPayload)

	updated, err := env.catalog.SetLessonVideo(teacher.ID, lessons[1].ID, "/uploads/a.mp4", 12.5)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a.mp4", updated.VideoURL)
	assert.Equal(t, 12.5, updated.VideoDuration)
}

func TestRoster_ManagerOnly(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)
	env.enroll(t, student, course)

	_, err := env.catalog.Roster(student.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	roster, err := env.catalog.Roster(teacher.ID, course.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, student.ID, roster[0].UserID)
}
