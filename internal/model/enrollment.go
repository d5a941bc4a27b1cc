package model

import "time"

// Enrollment 选课关系。(UserID, CourseID) 存储层唯一，
// 并发重复报名落在唯一索引上。退课是物理删除，因此不带软删字段。
// swagger:model Enrollment
type Enrollment struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"userId"`
	CourseID   uint      `gorm:"not null;uniqueIndex:idx_user_course" json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
