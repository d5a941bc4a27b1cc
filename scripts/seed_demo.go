// 演示数据生成脚本
//
// 往数据库写入一批演示用的教师、学生、课程、课时和选课记录，
// 方便本地联调前端。重复执行不会产生重复账号（按邮箱去重）。
//
// 用法: go run scripts/seed_demo.go [seed 文件路径]
// seed 文件是可选的 yaml，用于覆盖默认的演示数据规模。

package main

import (
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedParams struct {
	Students         int    `yaml:"students"`
	Courses          int    `yaml:"courses"`
	LessonsPerCourse int    `yaml:"lessons_per_course"`
	Password         string `yaml:"password"`
}

func defaultParams() seedParams {
	return seedParams{
		Students:         8,
		Courses:          3,
		LessonsPerCourse: 5,
		Password:         "demo123",
	}
}

func main() {
	params := defaultParams()
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			log.Fatalf("无法读取 seed 文件: %v", err)
		}
		if err := yaml.Unmarshal(data, &params); err != nil {
			log.Fatalf("解析 seed 文件失败: %v", err)
		}
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}

	teacher := ensureUser(db, &model.User{
		Name:     "演示教师",
		Email:    "teacher@lms.local",
		Password: string(hashed),
		Role:     model.Teacher,
	})

	students := make([]*model.User, 0, params.Students)
	for i := 1; i <= params.Students; i++ {
		students = append(students, ensureUser(db, &model.User{
			Name:     fmt.Sprintf("演示学生%d", i),
			Email:    fmt.Sprintf("student%d@lms.local", i),
			Password: string(hashed),
			Role:     model.Student,
		}))
	}

	for i := 1; i <= params.Courses; i++ {
		course := ensureCourse(db, teacher, i, params.LessonsPerCourse)
		// 前一半学生选每门课
		for _, s := range students[:len(students)/2] {
			db.Where(model.Enrollment{UserID: s.ID, CourseID: course.ID}).
				FirstOrCreate(&model.Enrollment{UserID: s.ID, CourseID: course.ID})
		}
	}

	log.Printf("完成！教师账号 teacher@lms.local，学生账号 student1..%d@lms.local，密码 %s",
		params.Students, params.Password)
}

func ensureUser(db *gorm.DB, u *model.User) *model.User {
	var existing model.User
	if err := db.Where("email = ?", u.Email).First(&existing).Error; err == nil {
		return &existing
	}
	if err := db.Create(u).Error; err != nil {
		log.Fatalf("创建用户 %s 失败: %v", u.Email, err)
	}
	return u
}

func ensureCourse(db *gorm.DB, teacher *model.User, idx, lessons int) *model.Course {
	title := fmt.Sprintf("演示课程 %d", idx)
	var existing model.Course
	if err := db.Where("title = ? AND teacher_id = ?", title, teacher.ID).First(&existing).Error; err == nil {
		return &existing
	}

	course := &model.Course{
		Title:       title,
		Description: "由 seed_demo 脚本生成的演示课程",
		Category:    "Go 语言",
		Duration:    fmt.Sprintf("%d 小时", lessons),
		Published:   true,
		TeacherID:   teacher.ID,
	}
	if err := db.Create(course).Error; err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	for i := 1; i <= lessons; i++ {
		lesson := &model.Lesson{
			CourseID:  course.ID,
			Title:     fmt.Sprintf("第 %d 课", i),
			Type:      model.LessonText,
			SortOrder: i,
			Content:   fmt.Sprintf("第 %d 课的演示内容。", i),
		}
		// 最后一课做成测验
		if i == lessons {
			lesson.Type = model.LessonQuiz
			lesson.Content = ""
			lesson.Questions = []model.QuizQuestion{
				{
					Text:         "Go 的并发原语是什么？",
					Options:      []string{"goroutine", "thread", "process", "fiber"},
					CorrectIndex: 0,
				},
			}
		}
		if err := db.Create(lesson).Error; err != nil {
			log.Fatalf("创建课时失败: %v", err)
		}
	}

	return course
}
