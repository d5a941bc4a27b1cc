package service

import (
	"lms_backend/internal/model"
	"lms_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnroll_DuplicateReportsConflict(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)

	enrollment, err := env.enrollments.Enroll(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, enrollment.UserID)
	assert.False(t, enrollment.EnrolledAt.IsZero())

	_, err = env.enrollments.Enroll(student.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyEnrolled)

	// 冲突不会多写记录
	var count int64
	env.db.Model(&model.Enrollment{}).Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestEnroll_UnpublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)

	course := &model.Course{Title: "草稿课", Published: false, TeacherID: teacher.ID}
	require.NoError(t, env.db.Create(course).Error)

	_, err := env.enrollments.Enroll(student.ID, course.ID)
	assert.ErrorIs(t, err, util.ErrCourseNotPublished)

	// 教师和管理员不受发布状态限制
	_, err = env.enrollments.Enroll(teacher.ID, course.ID)
	assert.NoError(t, err)
}

func TestEnroll_MissingCourse(t *testing.T) {
	env := newTestEnv(t)
	student := env.createUser(t, "student", model.Student)

	_, err := env.enrollments.Enroll(student.ID, 9999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestBatchEnroll_PartialOutcomes(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	a := env.createUser(t, "alice", model.Student)
	b := env.createUser(t, "bob", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)

	// b 已经选过课
	env.enroll(t, b, course)

	outcomes, err := env.enrollments.BatchEnroll(teacher.ID, course.ID, []uint{a.ID, b.ID, 9999})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.Equal(t, BatchCreated, outcomes[0].Status)
	assert.Equal(t, BatchSkipped, outcomes[1].Status)
	assert.Equal(t, BatchFailed, outcomes[2].Status)
	assert.Equal(t, uint(9999), outcomes[2].UserID)
}

func TestBatchEnroll_DeduplicatesTargets(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	a := env.createUser(t, "alice", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)

	outcomes, err := env.enrollments.BatchEnroll(teacher.ID, course.ID, []uint{a.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)
	assert.Equal(t, BatchCreated, outcomes[0].Status)
	assert.Equal(t, BatchSkipped, outcomes[1].Status)
}

func TestBatchEnroll_RequiresCourseManager(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createUser(t, "owner", model.Teacher)
	other := env.createUser(t, "other", model.Teacher)
	admin := env.createUser(t, "admin", model.Admin)
	a := env.createUser(t, "alice", model.Student)
	course, _ := env.createCourse(t, owner, model.LessonText)

	_, err := env.enrollments.BatchEnroll(other.ID, course.ID, []uint{a.ID})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 管理员不限课程归属
	outcomes, err := env.enrollments.BatchEnroll(admin.ID, course.ID, []uint{a.ID})
	require.NoError(t, err)
	assert.Equal(t, BatchCreated, outcomes[0].Status)
}

func TestUnenroll_CascadesProgressKeepsCertificate(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, lessons := env.createCourse(t, teacher, model.LessonText, model.LessonText)
	env.enroll(t, student, course)

	// 完成全部课时，拿到证书
	for _, lesson := range lessons {
		_, err := env.progress.RecordCompletion(student.ID, lesson.ID, RecordCompletionRequest{Completed: true, TimeSpent: 60})
		require.NoError(t, err)
	}
	certified, err := env.certs.CertificateRepo.Exists(student.ID, course.ID)
	require.NoError(t, err)
	require.True(t, certified)

	require.NoError(t, env.enrollments.Unenroll(student.ID, course.ID, student.ID))

	var progressCount int64
	env.db.Model(&model.LessonProgress{}).Where("user_id = ? AND course_id = ?", student.ID, course.ID).Count(&progressCount)
	assert.Equal(t, int64(0), progressCount)

	// 证书签发后不撤销
	certified, err = env.certs.CertificateRepo.Exists(student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, certified)

	// 退课后可以重新选课，进度从零开始
	env.enroll(t, student, course)
	summary, err := env.progress.GetCourseProgress(student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CompletedLessons)
}

func TestUnenroll_NotEnrolled(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	student := env.createUser(t, "student", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)

	err := env.enrollments.Unenroll(student.ID, course.ID, student.ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestUnenroll_StudentCannotRemoveOthers(t *testing.T) {
	env := newTestEnv(t)
	teacher := env.createUser(t, "teacher", model.Teacher)
	a := env.createUser(t, "alice", model.Student)
	b := env.createUser(t, "bob", model.Student)
	course, _ := env.createCourse(t, teacher, model.LessonText)
	env.enroll(t, b, course)

	err := env.enrollments.Unenroll(a.ID, course.ID, b.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	// 课程教师可以移除学生
	err = env.enrollments.Unenroll(teacher.ID, course.ID, b.ID)
	assert.NoError(t, err)
}
