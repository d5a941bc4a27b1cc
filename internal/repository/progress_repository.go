package repository

import (
	"errors"
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserAndLesson(userID, lessonID uint) (*model.LessonProgress, error) {
	var progress model.LessonProgress
	err := r.DB.
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// Save 新建或更新进度行。并发下首次创建撞到 (user_id, lesson_id)
// 唯一索引时改走更新，保证重复提交幂等
func (r *ProgressRepository) Save(progress *model.LessonProgress) error {
	if progress.ID != 0 {
		return r.DB.Save(progress).Error
	}
	err := r.DB.Create(progress).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	existing, ferr := r.FindByUserAndLesson(progress.UserID, progress.LessonID)
	if ferr != nil {
		return ferr
	}
	progress.ID = existing.ID
	progress.CreatedAt = existing.CreatedAt
	return r.DB.Save(progress).Error
}

func (r *ProgressRepository) CountCompleted(userID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ? AND completed = ?", userID, courseID, true).
		Count(&count).Error
	return count, err
}

func (r *ProgressRepository) ListByUserAndCourse(userID, courseID uint) ([]model.LessonProgress, error) {
	var progresses []model.LessonProgress
	err := r.DB.
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&progresses).Error
	return progresses, err
}

func (r *ProgressRepository) SumTimeSpent(userID, courseID uint) (int64, error) {
	var total int64
	err := r.DB.Model(&model.LessonProgress{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Select("COALESCE(SUM(time_spent), 0)").
		Scan(&total).Error
	return total, err
}
