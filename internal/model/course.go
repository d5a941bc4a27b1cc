package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100;index" json:"category"`
	Duration    string `gorm:"size:50" json:"duration"` // 时长标签，如 "6 周"
	Published   bool   `gorm:"default:false;index" json:"published"`
	TeacherID   uint   `gorm:"index;not null" json:"teacherId"`

	Teacher User     `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
