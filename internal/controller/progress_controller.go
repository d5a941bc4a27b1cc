package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary 记录课时进度
// @Description 幂等上报课时完成/学习时长/测验分数；返回更新后的进度、
// 课程完成度，以及恰好在本次签发的证书
// @Tags 进度
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Param body body service.RecordCompletionRequest true "进度"
// @Success 200 {object} util.Response
// @Router /api/progress/{lessonId} [put]
func (c *ProgressController) RecordProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.RecordCompletionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	result, err := c.ProgressService.RecordCompletion(claims.UserID, lessonID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 我的学习进度
// @Description 当前用户全部选课的进度汇总
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/progress [get]
func (c *ProgressController) GetMyProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	overviews, err := c.ProgressService.GetOverallProgress(claims.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, overviews)
}

// @Summary 课程进度详情
// @Description 按课时顺序返回完成标记与课程完成度
// @Tags 进度
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	progress, err := c.ProgressService.GetCourseProgress(claims.UserID, courseID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
