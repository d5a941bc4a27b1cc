package model

type LessonType string

const (
	LessonVideo LessonType = "video"
	LessonText  LessonType = "text"
	LessonQuiz  LessonType = "quiz"
)

// Lesson 课时。Type 决定生效的内容字段：video -> VideoURL，text -> Content，
// quiz -> Questions。SortOrder 在课程内唯一，决定导航顺序（允许不连续）。
// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID      uint       `gorm:"not null;uniqueIndex:idx_course_sort" json:"courseId"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Type          LessonType `gorm:"size:10;not null" json:"type"`
	SortOrder     int        `gorm:"not null;uniqueIndex:idx_course_sort" json:"order"`
	VideoURL      string     `gorm:"size:255" json:"videoUrl,omitempty"`
	VideoDuration float64    `json:"videoDuration,omitempty"` // 秒，上传时探测
	Content       string     `gorm:"type:text" json:"content,omitempty"`

	Questions []QuizQuestion `gorm:"foreignKey:LessonID" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	LessonID     uint     `gorm:"index;not null" json:"lessonId"`
	Text         string   `gorm:"type:text;not null" json:"text"`
	Options      []string `gorm:"serializer:json" json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	SortOrder    int      `gorm:"not null" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
