package controller

import (
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CatalogService *service.CatalogService
	StorageService *service.StorageService
	Config         *config.Config
}

func NewCourseController(catalogService *service.CatalogService, storageService *service.StorageService, cfg *config.Config) *CourseController {
	return &CourseController{
		CatalogService: catalogService,
		StorageService: storageService,
		Config:         cfg,
	}
}

// @Summary 课程目录
// @Description 已发布课程列表，含课时数与选课人数
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CatalogService.ListPublished(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 我的授课课程
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/teacher/courses [get]
func (c *CourseController) ListMyCourses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courses, err := c.CatalogService.ListByTeacher(claims.UserID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程详情
// @Description 课程、按顺序排列的课时与聚合数。未发布课程仅课程管理者可见
// @Tags 课程
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	var actorID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		actorID = claims.UserID
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	course, studentCount, err := c.CatalogService.GetCourse(actorID, courseID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"course":       course,
		"lessonCount":  len(course.Lessons),
		"studentCount": studentCount,
	})
}

// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body service.CourseRequest true "课程"
// @Success 201 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CatalogService.CreateCourse(claims.UserID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseRequest true "课程"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	course, err := c.CatalogService.UpdateCourse(claims.UserID, courseID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 删除课程
// @Description 仍有学生选课时返回冲突
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	if err := c.CatalogService.DeleteCourse(claims.UserID, courseID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"message": "course deleted"})
}

// @Summary 新建课时
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.LessonRequest true "课时"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/lessons [post]
func (c *CourseController) CreateLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	lesson, err := c.CatalogService.CreateLesson(claims.UserID, courseID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// @Summary 更新课时
// @Tags 课程
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Param body body service.LessonRequest true "课时"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	lesson, err := c.CatalogService.UpdateLesson(claims.UserID, lessonID, req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 上传课时视频
// @Description 校验视频类型，探测时长后回填课时
// @Tags 课程
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response
// @Router /api/lessons/{lessonId}/video [post]
func (c *CourseController) UploadLessonVideo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !slices.Contains(util.AllowedVideoExtensions, ext) {
		util.BadRequest(ctx, "unsupported video format: "+ext)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo})
	src.Close()
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	filename := fmt.Sprintf("lessons/%d/%s%s", lessonID, model.GenerateUUID(), filepath.Ext(fileHeader.Filename))

	// 先落临时文件探测时长，再交给存储后端
	tmp := filepath.Join(os.TempDir(), filepath.Base(filename))
	if err := ctx.SaveUploadedFile(fileHeader, tmp); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer os.Remove(tmp)

	var duration float64
	if info, err := util.GetVideoInfo(tmp); err == nil {
		duration = info.Duration
	}

	f, err := os.Open(tmp)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	url, err := c.StorageService.Upload(ctx.Request.Context(), filename, f, fileHeader.Size, mimeType)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	lesson, err := c.CatalogService.SetLessonVideo(claims.UserID, lessonID, url, duration)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 课程学生名单
// @Tags 课程
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/students [get]
func (c *CourseController) GetRoster(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	courseID := util.MustParseUint(ctx.Param("id"))
	roster, err := c.CatalogService.Roster(claims.UserID, courseID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, roster)
}
