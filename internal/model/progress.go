package model

import "time"

// LessonProgress 每 (学生, 课时) 一行，重复提交是幂等更新。
// CourseID 冗余存储，按课程统计时不用 join lessons。
// QuizScore 只在测验课时有值，保留最近一次成绩。
// swagger:model LessonProgress
type LessonProgress struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_user_lesson" json:"userId"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_user_lesson" json:"lessonId"`
	CourseID    uint       `gorm:"index;not null" json:"courseId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeSpent   int        `gorm:"default:0" json:"timeSpent"` // 秒，累计
	QuizScore   *int       `json:"quizScore,omitempty"`        // 百分制
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (LessonProgress) TableName() string {
	return "lesson_progresses"
}
