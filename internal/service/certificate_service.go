package service

import (
	"errors"
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CertificateService 结课证书签发：完成比例严格大于阈值时精确一次签发
type CertificateService struct {
	CertificateRepo *repository.CertificateRepository
	CourseRepo      *repository.CourseRepository
	LessonRepo      *repository.LessonRepository
	ProgressRepo    *repository.ProgressRepository
	Cfg             *config.Config
}

func NewCertificateService(
	certificateRepo *repository.CertificateRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	progressRepo *repository.ProgressRepository,
	cfg *config.Config,
) *CertificateService {
	return &CertificateService{
		CertificateRepo: certificateRepo,
		CourseRepo:      courseRepo,
		LessonRepo:      lessonRepo,
		ProgressRepo:    progressRepo,
		Cfg:             cfg,
	}
}

// EvaluateAndIssue 重算完成比例并按需签发。永不因重复调用报错：
// 已有证书原样返回 created=false；没到阈值或课程没有课时则 (nil, false, nil)。
// 并发的重复签发由存储层唯一索引兜底（见 CertificateRepository.Create）
func (s *CertificateService) EvaluateAndIssue(userID, courseID uint) (*model.Certificate, bool, error) {
	// 已签发的短路返回，避免重复统计
	if existing, err := s.CertificateRepo.FindByUserAndCourse(userID, courseID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	total, err := s.LessonRepo.CountByCourse(courseID)
	if err != nil {
		return nil, false, err
	}
	if total == 0 {
		// 没有课时的课程永远到不了阈值，按无事发生处理
		return nil, false, nil
	}

	completed, err := s.ProgressRepo.CountCompleted(userID, courseID)
	if err != nil {
		return nil, false, err
	}

	// 阈值判定用原始比例（严格大于），不用四舍五入后的百分数
	if float64(completed)/float64(total) <= s.Cfg.CertificateRules().PassRatio {
		return nil, false, nil
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, util.ErrCourseNotFound
		}
		return nil, false, err
	}

	cert := &model.Certificate{
		UserID:   userID,
		CourseID: courseID,
		Code:     generateCertificateCode(courseID),
		Summary:  fmt.Sprintf("完成课程《%s》", course.Title),
		IssuedAt: time.Now(),
	}

	cert, created, err := s.CertificateRepo.Create(cert)
	if err != nil {
		return nil, false, err
	}
	if created {
		monitoring.CertificateCounter.Inc()
	}
	return cert, created, nil
}

// GetForCourse 证书展示页：证书 + 课程
func (s *CertificateService) GetForCourse(userID, courseID uint) (*model.Certificate, error) {
	cert, err := s.CertificateRepo.FindByUserAndCourse(userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCertificateMissing
		}
		return nil, err
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err == nil {
		cert.Course = *course
	}
	return cert, nil
}

func (s *CertificateService) ListMine(userID uint) ([]model.Certificate, error) {
	return s.CertificateRepo.ListByUser(userID)
}

// generateCertificateCode 人类可读的唯一编码，如 CERT-12-A3F09B2C
func generateCertificateCode(courseID uint) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("CERT-%d-%s", courseID, suffix)
}
