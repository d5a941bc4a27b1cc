package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

type BatchEnrollRequest struct {
	UserIDs []uint `json:"userIds" binding:"required"`
}

// @Summary 选课
// @Description 当前用户报名课程，重复报名返回冲突
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, courseID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// @Summary 退课
// @Description 当前用户退出课程，该课程的学习进度一并清除
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/enroll [delete]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	if err := c.EnrollmentService.Unenroll(claims.UserID, courseID, claims.UserID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "unenrolled"})
}

// @Summary 批量选课
// @Description 课程管理者批量添加学生，逐个返回 created/skipped/failed
// @Tags 选课
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body BatchEnrollRequest true "学生ID列表"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/students [post]
func (c *EnrollmentController) BatchEnroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req BatchEnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	outcomes, err := c.EnrollmentService.BatchEnroll(claims.UserID, courseID, req.UserIDs)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, outcomes)
}

// @Summary 移除学生
// @Description 课程管理者将学生移出课程
// @Tags 选课
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param studentId path int true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/students/{studentId} [delete]
func (c *EnrollmentController) RemoveStudent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	studentID := util.MustParseUint(ctx.Param("studentId"))
	if err := c.EnrollmentService.Unenroll(claims.UserID, courseID, studentID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "student removed"})
}
