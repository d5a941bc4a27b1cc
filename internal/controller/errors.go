package controller

import (
	"errors"
	"lms_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleServiceError 服务层哨兵错误到 HTTP 状态码的统一映射。
// 校验/权限类错误在任何写入前就被服务层拒绝，这里只做翻译
func handleServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrLessonNotFound),
		errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrCertificateMissing):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNotEnrolled):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAlreadyEnrolled),
		errors.Is(err, util.ErrCourseHasStudents),
		errors.Is(err, util.ErrLessonOrderTaken),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrCourseNotPublished),
		errors.Is(err, util.ErrQuizScoreRequired),
		errors.Is(err, util.ErrScoreOutOfRange),
		errors.Is(err, util.ErrNegativeTimeSpent),
		errors.Is(err, util.ErrBadLessonPayload):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
