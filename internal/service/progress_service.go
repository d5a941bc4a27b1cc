package service

import (
	"errors"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"math"
	"time"

	"gorm.io/gorm"
)

// ProgressService 学习进度：按课时记录完成事件，派生课程完成度，
// 跨过阈值时同步触发证书签发
type ProgressService struct {
	ProgressRepo   *repository.ProgressRepository
	LessonRepo     *repository.LessonRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Certificates   *CertificateService
	Cfg            *config.Config
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	certificates *CertificateService,
	cfg *config.Config,
) *ProgressService {
	return &ProgressService{
		ProgressRepo:   progressRepo,
		LessonRepo:     lessonRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Certificates:   certificates,
		Cfg:            cfg,
	}
}

type RecordCompletionRequest struct {
	Completed bool `json:"completed"`
	TimeSpent int  `json:"timeSpent"`           // 本次增量，秒
	QuizScore *int `json:"quizScore,omitempty"` // 百分制，测验课时必填
}

type CompletionResult struct {
	Progress       *model.LessonProgress `json:"progress"`
	CourseProgress *CourseProgress       `json:"courseProgress"`
	Certificate    *model.Certificate    `json:"certificate,omitempty"` // 本次恰好签发时携带
}

type LessonStatus struct {
	LessonID  uint             `json:"lessonId"`
	Title     string           `json:"title"`
	Type      model.LessonType `json:"type"`
	Order     int              `json:"order"`
	Completed bool             `json:"completed"`
	QuizScore *int             `json:"quizScore,omitempty"`
}

type CourseProgress struct {
	CourseID         uint           `json:"courseId"`
	TotalLessons     int            `json:"totalLessons"`
	CompletedLessons int            `json:"completedLessons"`
	Percent          int            `json:"percent"`
	TimeSpent        int64          `json:"timeSpent"`
	Lessons          []LessonStatus `json:"lessons"`
}

type CourseOverview struct {
	Course           model.Course `json:"course"`
	TotalLessons     int          `json:"totalLessons"`
	CompletedLessons int          `json:"completedLessons"`
	Percent          int          `json:"percent"`
	TimeSpent        int64        `json:"timeSpent"`
	Certified        bool         `json:"certified"`
}

// RoundPercent 完成度百分数，四舍五入取整；没有课时记 0
func RoundPercent(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}

// RecordCompletion 记录一次课时完成事件（幂等 upsert）。
// 测验课时由分数线决定是否算完成，不及格只留分数、允许重考。
// 首次翻到 completed 后重算课程完成度并尝试签发证书
func (s *ProgressService) RecordCompletion(userID, lessonID uint, req RecordCompletionRequest) (*CompletionResult, error) {
	if req.TimeSpent < 0 {
		return nil, util.ErrNegativeTimeSpent
	}
	if req.QuizScore != nil && (*req.QuizScore < 0 || *req.QuizScore > 100) {
		return nil, util.ErrScoreOutOfRange
	}

	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	wantCompleted := req.Completed
	if lesson.Type == model.LessonQuiz && req.Completed {
		if req.QuizScore == nil {
			return nil, util.ErrQuizScoreRequired
		}
		wantCompleted = *req.QuizScore >= s.Cfg.CertificateRules().QuizPassScore
	}

	progress, err := s.ProgressRepo.FindByUserAndLesson(userID, lessonID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		progress = &model.LessonProgress{
			UserID:   userID,
			LessonID: lessonID,
			CourseID: lesson.CourseID,
		}
	}

	progress.TimeSpent += req.TimeSpent
	if lesson.Type == model.LessonQuiz && req.QuizScore != nil {
		// 只保留最近一次成绩，不记历史
		progress.QuizScore = req.QuizScore
	}

	// 完成是单向的：completedAt 用服务端时钟，只在 false→true 时写入，
	// 迟到的重试不会把它回拨
	newlyCompleted := wantCompleted && !progress.Completed
	if newlyCompleted {
		now := time.Now()
		progress.Completed = true
		progress.CompletedAt = &now
	}

	if err := s.ProgressRepo.Save(progress); err != nil {
		return nil, err
	}

	result := &CompletionResult{Progress: progress}

	summary, err := s.buildCourseProgress(userID, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	result.CourseProgress = summary

	if newlyCompleted {
		cert, created, err := s.Certificates.EvaluateAndIssue(userID, lesson.CourseID)
		if err != nil {
			return nil, err
		}
		if created {
			result.Certificate = cert
		}
	}

	return result, nil
}

// GetCourseProgress 课程完成度详情，要求在读学生本人已选课
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (*CourseProgress, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	return s.buildCourseProgress(userID, courseID)
}

// GetOverallProgress 当前用户全部选课的进度汇总
func (s *ProgressService) GetOverallProgress(userID uint) ([]CourseOverview, error) {
	enrollments, err := s.EnrollmentRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	overviews := make([]CourseOverview, 0, len(enrollments))
	for _, enrollment := range enrollments {
		total, err := s.LessonRepo.CountByCourse(enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		completed, err := s.ProgressRepo.CountCompleted(userID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		timeSpent, err := s.ProgressRepo.SumTimeSpent(userID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}
		certified, err := s.Certificates.CertificateRepo.Exists(userID, enrollment.CourseID)
		if err != nil {
			return nil, err
		}

		overviews = append(overviews, CourseOverview{
			Course:           enrollment.Course,
			TotalLessons:     int(total),
			CompletedLessons: int(completed),
			Percent:          RoundPercent(completed, total),
			TimeSpent:        timeSpent,
			Certified:        certified,
		})
	}
	return overviews, nil
}

func (s *ProgressService) buildCourseProgress(userID, courseID uint) (*CourseProgress, error) {
	lessons, err := s.LessonRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}

	progresses, err := s.ProgressRepo.ListByUserAndCourse(userID, courseID)
	if err != nil {
		return nil, err
	}

	byLesson := make(map[uint]*model.LessonProgress, len(progresses))
	for i := range progresses {
		byLesson[progresses[i].LessonID] = &progresses[i]
	}

	summary := &CourseProgress{
		CourseID:     courseID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonStatus, 0, len(lessons)),
	}

	for _, lesson := range lessons {
		status := LessonStatus{
			LessonID: lesson.ID,
			Title:    lesson.Title,
			Type:     lesson.Type,
			Order:    lesson.SortOrder,
		}
		if p, ok := byLesson[lesson.ID]; ok {
			status.Completed = p.Completed
			status.QuizScore = p.QuizScore
			summary.TimeSpent += int64(p.TimeSpent)
			if p.Completed {
				summary.CompletedLessons++
			}
		}
		summary.Lessons = append(summary.Lessons, status)
	}

	summary.Percent = RoundPercent(int64(summary.CompletedLessons), int64(summary.TotalLessons))
	return summary, nil
}
