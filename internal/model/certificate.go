package model

import "time"

// Certificate 结课证书。(UserID, CourseID) 存储层唯一，签发一次后不再变更。
// swagger:model Certificate
type Certificate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_course_cert" json:"userId"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_user_course_cert" json:"courseId"`
	Code      string    `gorm:"size:40;unique;not null" json:"code"`
	Summary   string    `gorm:"size:255" json:"summary"`
	IssuedAt  time.Time `gorm:"not null" json:"issuedAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func (Certificate) TableName() string {
	return "certificates"
}
