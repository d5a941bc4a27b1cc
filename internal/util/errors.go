package util

import "errors"

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrCourseNotPublished = errors.New("course not published")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrCourseHasStudents  = errors.New("course still has enrolled students")
	ErrQuizScoreRequired  = errors.New("quiz score is required for quiz lessons")
	ErrScoreOutOfRange    = errors.New("quiz score must be between 0 and 100")
	ErrNegativeTimeSpent  = errors.New("time spent cannot be negative")
	ErrLessonOrderTaken   = errors.New("lesson order already used in this course")
	ErrBadLessonPayload   = errors.New("lesson content does not match lesson type")
	ErrCertificateMissing = errors.New("certificate not found")
)
