package service

import (
	"context"
	"encoding/json"
	"errors"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	catalogCacheKey = "catalog:published"
	catalogCacheTTL = 5 * time.Minute
)

// CatalogService 课程/课时目录：读侧聚合 + 教师端课程维护
type CatalogService struct {
	CourseRepo     *repository.CourseRepository
	LessonRepo     *repository.LessonRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	Redis          *redis.Client
	Cfg            *config.Config
}

func NewCatalogService(
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *CatalogService {
	return &CatalogService{
		CourseRepo:     courseRepo,
		LessonRepo:     lessonRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		Redis:          rdb,
		Cfg:            cfg,
	}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`
	Published   bool   `json:"published"`
}

type QuizQuestionRequest struct {
	Text         string   `json:"text" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correctIndex"`
	Order        int      `json:"order"`
}

type LessonRequest struct {
	Title     string                `json:"title" binding:"required"`
	Type      model.LessonType      `json:"type" binding:"required"`
	Order     int                   `json:"order"`
	VideoURL  string                `json:"videoUrl"`
	Content   string                `json:"content"`
	Questions []QuizQuestionRequest `json:"questions"`
}

// ListPublished 公开目录，Redis 缓存 5 分钟，写操作时失效
func (s *CatalogService) ListPublished(ctx context.Context) ([]repository.CourseWithCounts, error) {
	if s.Redis != nil {
		cached, err := s.Redis.Get(ctx, catalogCacheKey).Result()
		if err == nil {
			var courses []repository.CourseWithCounts
			if jsonErr := json.Unmarshal([]byte(cached), &courses); jsonErr == nil {
				return courses, nil
			}
		}
	}

	courses, err := s.CourseRepo.ListPublished()
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(courses); err == nil {
			s.Redis.Set(ctx, catalogCacheKey, payload, catalogCacheTTL)
		}
	}
	return courses, nil
}

func (s *CatalogService) invalidateCatalog(ctx context.Context) {
	if s.Redis != nil {
		s.Redis.Del(ctx, catalogCacheKey)
	}
}

// GetCourse 课程详情（含有序课时与聚合数）。未发布课程仅课程管理者可见
func (s *CatalogService) GetCourse(actorID, courseID uint) (*model.Course, int64, error) {
	course, err := s.CourseRepo.FindByIDWithLessons(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, util.ErrCourseNotFound
		}
		return nil, 0, err
	}

	if !course.Published {
		actor, err := s.UserRepo.FindByID(actorID)
		if err != nil || !canManageCourse(actor, course) {
			return nil, 0, util.ErrCourseNotFound
		}
	}

	studentCount, err := s.EnrollmentRepo.CountByCourse(courseID)
	if err != nil {
		return nil, 0, err
	}
	return course, studentCount, nil
}

func (s *CatalogService) ListByTeacher(actorID uint) ([]repository.CourseWithCounts, error) {
	actor, err := s.UserRepo.FindByID(actorID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if !actor.Privileged() {
		return nil, util.ErrPermissionDenied
	}
	return s.CourseRepo.ListByTeacher(actorID)
}

func (s *CatalogService) CreateCourse(actorID uint, req CourseRequest) (*model.Course, error) {
	actor, err := s.UserRepo.FindByID(actorID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if !actor.Privileged() {
		return nil, util.ErrPermissionDenied
	}

	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Duration:    req.Duration,
		Published:   req.Published,
		TeacherID:   actor.ID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}

	s.invalidateCatalog(context.Background())
	return course, nil
}

func (s *CatalogService) UpdateCourse(actorID, courseID uint, req CourseRequest) (*model.Course, error) {
	course, _, err := s.loadManagedCourse(actorID, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Category = req.Category
	course.Duration = req.Duration
	course.Published = req.Published

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}

	s.invalidateCatalog(context.Background())
	return course, nil
}

// DeleteCourse 还有学生选课时拒绝删除
func (s *CatalogService) DeleteCourse(actorID, courseID uint) error {
	course, _, err := s.loadManagedCourse(actorID, courseID)
	if err != nil {
		return err
	}

	count, err := s.EnrollmentRepo.CountByCourse(course.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.ErrCourseHasStudents
	}

	if err := s.CourseRepo.Delete(course.ID); err != nil {
		return err
	}

	s.invalidateCatalog(context.Background())
	return nil
}

func (s *CatalogService) CreateLesson(actorID, courseID uint, req LessonRequest) (*model.Lesson, error) {
	course, _, err := s.loadManagedCourse(actorID, courseID)
	if err != nil {
		return nil, err
	}

	if err := validateLessonPayload(req); err != nil {
		return nil, err
	}

	taken, err := s.LessonRepo.OrderTaken(course.ID, req.Order, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrLessonOrderTaken
	}

	lesson := &model.Lesson{
		CourseID:  course.ID,
		Title:     req.Title,
		Type:      req.Type,
		SortOrder: req.Order,
		VideoURL:  req.VideoURL,
		Content:   req.Content,
	}
	for _, q := range req.Questions {
		lesson.Questions = append(lesson.Questions, model.QuizQuestion{
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: q.CorrectIndex,
			SortOrder:    q.Order,
		})
	}

	if err := s.LessonRepo.Create(lesson); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrLessonOrderTaken
		}
		return nil, err
	}
	return lesson, nil
}

func (s *CatalogService) UpdateLesson(actorID, lessonID uint, req LessonRequest) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	if _, _, err := s.loadManagedCourse(actorID, lesson.CourseID); err != nil {
		return nil, err
	}

	if err := validateLessonPayload(req); err != nil {
		return nil, err
	}

	taken, err := s.LessonRepo.OrderTaken(lesson.CourseID, req.Order, lesson.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, util.ErrLessonOrderTaken
	}

	lesson.Title = req.Title
	lesson.Type = req.Type
	lesson.SortOrder = req.Order
	lesson.VideoURL = req.VideoURL
	lesson.Content = req.Content

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// SetLessonVideo 视频上传完成后回填地址与探测到的时长
func (s *CatalogService) SetLessonVideo(actorID, lessonID uint, url string, duration float64) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	if lesson.Type != model.LessonVideo {
		return nil, util.ErrBadLessonPayload
	}

	if _, _, err := s.loadManagedCourse(actorID, lesson.CourseID); err != nil {
		return nil, err
	}

	lesson.VideoURL = url
	lesson.VideoDuration = duration
	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Roster 课程学生名单，课程管理者可见
func (s *CatalogService) Roster(actorID, courseID uint) ([]model.Enrollment, error) {
	if _, _, err := s.loadManagedCourse(actorID, courseID); err != nil {
		return nil, err
	}
	return s.EnrollmentRepo.ListByCourse(courseID)
}

func (s *CatalogService) loadManagedCourse(actorID, courseID uint) (*model.Course, *model.User, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrCourseNotFound
		}
		return nil, nil, err
	}

	actor, err := s.UserRepo.FindByID(actorID)
	if err != nil {
		return nil, nil, util.ErrUserNotFound
	}
	if !canManageCourse(actor, course) {
		return nil, nil, util.ErrPermissionDenied
	}
	return course, actor, nil
}

// validateLessonPayload 每种课时类型只允许对应的内容字段
func validateLessonPayload(req LessonRequest) error {
	switch req.Type {
	case model.LessonVideo:
		// 视频地址允许先空着，上传接口回填
		if req.Content != "" || len(req.Questions) > 0 {
			return util.ErrBadLessonPayload
		}
	case model.LessonText:
		if req.Content == "" || req.VideoURL != "" || len(req.Questions) > 0 {
			return util.ErrBadLessonPayload
		}
	case model.LessonQuiz:
		if req.VideoURL != "" || req.Content != "" || len(req.Questions) == 0 {
			return util.ErrBadLessonPayload
		}
		for _, q := range req.Questions {
			if len(q.Options) < 2 || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
				return util.ErrBadLessonPayload
			}
		}
	default:
		return util.ErrBadLessonPayload
	}
	return nil
}
