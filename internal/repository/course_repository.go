package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

// CourseWithCounts 课程加聚合数（课时数 / 选课人数），目录页用
type CourseWithCounts struct {
	model.Course
	LessonCount  int64 `json:"lessonCount"`
	StudentCount int64 `json:"studentCount"`
}

const courseCountSelect = "courses.*, " +
	"(SELECT COUNT(*) FROM lessons WHERE lessons.course_id = courses.id AND lessons.deleted_at IS NULL) AS lesson_count, " +
	"(SELECT COUNT(*) FROM enrollments WHERE enrollments.course_id = courses.id) AS student_count"

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindByIDWithLessons(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Teacher").
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Preload("Lessons.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) ListPublished() ([]CourseWithCounts, error) {
	var courses []CourseWithCounts
	err := r.DB.Model(&model.Course{}).
		Select(courseCountSelect).
		Where("courses.published = ?", true).
		Order("courses.created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListByTeacher(teacherID uint) ([]CourseWithCounts, error) {
	var courses []CourseWithCounts
	err := r.DB.Model(&model.Course{}).
		Select(courseCountSelect).
		Where("courses.teacher_id = ?", teacherID).
		Order("courses.created_at DESC").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// Delete 连同课时一起软删；选课校验在服务层完成
func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}
