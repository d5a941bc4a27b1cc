package service

import (
	"lms_backend/internal/model"
)

// 能力检查集中在这里，各操作入口调用一次，
// 不在 handler 里散落角色字符串比较。

// canManageCourse 管理员放行；教师仅限自己名下的课程
func canManageCourse(actor *model.User, course *model.Course) bool {
	if actor == nil {
		return false
	}
	if actor.Role == model.Admin {
		return true
	}
	return actor.Role == model.Teacher && course.TeacherID == actor.ID
}

// canActForStudent 本人，或对课程有管理权的教师/管理员
func canActForStudent(actor *model.User, targetUserID uint, course *model.Course) bool {
	if actor == nil {
		return false
	}
	if actor.ID == targetUserID {
		return true
	}
	return canManageCourse(actor, course)
}
