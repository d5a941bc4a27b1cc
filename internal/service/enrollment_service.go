package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// EnrollmentService 选课管理：自助选课、教师批量选课、退课
type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
	}
}

// 批量选课的单条结果状态
const (
	BatchCreated = "created"
	BatchSkipped = "skipped"
	BatchFailed  = "failed"
)

type BatchEnrollOutcome struct {
	UserID uint   `json:"userId"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Enroll 自助选课。重复选课报冲突；学生只能选已发布课程
func (s *EnrollmentService) Enroll(userID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	if !course.Published && !user.Privileged() {
		return nil, util.ErrCourseNotPublished
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, util.ErrAlreadyEnrolled
	}

	enrollment, err := s.EnrollmentRepo.Create(userID, courseID)
	if err != nil {
		// 并发下两个同样的选课请求赛跑，后到的撞唯一索引
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, err
	}

	monitoring.EnrollmentCounter.Inc()
	return enrollment, nil
}

// BatchEnroll 批量选课：单个目标失败不影响其余目标，逐个返回结果。
// 已选过的记 skipped，无效用户记 failed
func (s *EnrollmentService) BatchEnroll(actorID, courseID uint, targetIDs []uint) ([]BatchEnrollOutcome, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	actor, err := s.UserRepo.FindByID(actorID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if !canManageCourse(actor, course) {
		return nil, util.ErrPermissionDenied
	}

	known := make(map[uint]bool)
	if len(targetIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(targetIDs)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			known[u.ID] = true
		}
	}

	outcomes := make([]BatchEnrollOutcome, 0, len(targetIDs))
	seen := make(map[uint]bool)
	for _, targetID := range targetIDs {
		if seen[targetID] {
			outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchSkipped, Reason: "duplicate target"})
			continue
		}
		seen[targetID] = true

		if !known[targetID] {
			outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchFailed, Reason: "user not found"})
			continue
		}

		enrolled, err := s.EnrollmentRepo.Exists(targetID, courseID)
		if err != nil {
			outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchFailed, Reason: err.Error()})
			continue
		}
		if enrolled {
			outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchSkipped, Reason: "already enrolled"})
			continue
		}

		if _, err := s.EnrollmentRepo.Create(targetID, courseID); err != nil {
			if errors.Is(err, repository.ErrDuplicateEnrollment) {
				outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchSkipped, Reason: "already enrolled"})
			} else {
				outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchFailed, Reason: err.Error()})
			}
			continue
		}

		monitoring.EnrollmentCounter.Inc()
		outcomes = append(outcomes, BatchEnrollOutcome{UserID: targetID, Status: BatchCreated})
	}

	return outcomes, nil
}

// Unenroll 退课：本人或课程管理者。级联删除该课程的学习进度，
// 已签发的证书保留（签发后不撤销）
func (s *EnrollmentService) Unenroll(actorID, courseID, targetID uint) error {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseNotFound
		}
		return err
	}

	actor, err := s.UserRepo.FindByID(actorID)
	if err != nil {
		return util.ErrUserNotFound
	}
	if !canActForStudent(actor, targetID, course) {
		return util.ErrPermissionDenied
	}

	if err := s.EnrollmentRepo.DeleteWithProgress(targetID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrNotEnrolled
		}
		return err
	}
	return nil
}

// ListMine 当前用户的全部选课（带课程）
func (s *EnrollmentService) ListMine(userID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByUser(userID)
}
