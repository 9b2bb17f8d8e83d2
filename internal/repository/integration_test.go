//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"class-attend/backend/internal/model"
	"class-attend/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=attend password=attend_password dbname=attend_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Teacher{},
		&model.Subject{},
		&model.Class{},
		&model.Student{},
		&model.ClassEnrollment{},
		&model.Attendance{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建教师+科目+班级基础数据并返回清理函数
func setupTestData(t *testing.T) (teacher *model.Teacher, subject *model.Subject, class *model.Class, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	nano := time.Now().UnixNano()

	teacher = &model.Teacher{
		Username:     fmt.Sprintf("teacher%d", nano),
		Email:        fmt.Sprintf("teacher%d@example.com", nano),
		Name:         "测试教师",
		PasswordHash: "$2a$10$placeholder",
		Role:         "teacher",
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	subject = &model.Subject{
		Code: fmt.Sprintf("SUBJ%d", nano%1000000),
		Name: "测试科目",
	}
	if err := testDB.WithContext(ctx).Create(subject).Error; err != nil {
		t.Fatalf("创建科目失败: %v", err)
	}

	class = &model.Class{
		SubjectID: subject.SubjectID,
		Section:   fmt.Sprintf("S%d", nano%1000000),
		TeacherID: teacher.TeacherID,
		Room:      "101",
	}
	if err := testDB.WithContext(ctx).Create(class).Error; err != nil {
		t.Fatalf("创建班级失败: %v", err)
	}

	cleanup = func() {
		testDB.Where("class_id = ?", class.ClassID).Delete(&model.Attendance{})
		testDB.Where("class_id = ?", class.ClassID).Delete(&model.ClassEnrollment{})
		testDB.Where("teacher_id = ?", teacher.TeacherID).Delete(&model.Student{})
		testDB.Where("class_id = ?", class.ClassID).Delete(&model.Class{})
		testDB.Where("subject_id = ?", subject.SubjectID).Delete(&model.Subject{})
		testDB.Where("teacher_id = ?", teacher.TeacherID).Delete(&model.Teacher{})
	}
	return
}

// createStudent 创建学生并写入选课记录
func createStudent(t *testing.T, teacher *model.Teacher, class *model.Class) *model.Student {
	t.Helper()
	ctx := context.Background()
	nano := time.Now().UnixNano()

	student := &model.Student{
		TeacherID: teacher.TeacherID,
		StudentNo: fmt.Sprintf("NO%d", nano%100000000),
		Name:      "测试学生",
		Email:     fmt.Sprintf("student%d@example.com", nano),
		ClassID:   &class.ClassID,
	}
	if err := testDB.WithContext(ctx).Create(student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	enrollment := &model.ClassEnrollment{
		StudentID: student.StudentID,
		ClassID:   class.ClassID,
	}
	if err := testDB.WithContext(ctx).Create(enrollment).Error; err != nil {
		t.Fatalf("创建选课记录失败: %v", err)
	}
	return student
}

// ═══════════════════════════════════════════════════════════
// Test: Atomic (transaction rollback / commit)
// ═══════════════════════════════════════════════════════════

func TestAtomic_Rollback(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	nano := time.Now().UnixNano()
	var studentID string
	sentinel := errors.New("触发回滚")

	// 学生 + 选课在同一事务中创建，fn 返回错误后两者都不应落库
	err := repo.Atomic(ctx, func(r *repository.Repository) error {
		student := &model.Student{
			TeacherID: teacher.TeacherID,
			StudentNo: fmt.Sprintf("RB%d", nano%100000000),
			Name:      "回滚学生",
			Email:     fmt.Sprintf("rollback%d@example.com", nano),
			ClassID:   &class.ClassID,
		}
		if err := r.Student.Create(ctx, student); err != nil {
			return err
		}
		studentID = student.StudentID

		enrollment := &model.ClassEnrollment{
			StudentID: student.StudentID,
			ClassID:   class.ClassID,
		}
		if err := r.Enrollment.Create(ctx, enrollment); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("期望 Atomic 透传 fn 的错误，实际: %v", err)
	}

	// 验证数据未持久化
	if _, err := repo.Student.GetByID(ctx, studentID); err == nil {
		testDB.Where("student_id = ?", studentID).Delete(&model.ClassEnrollment{})
		testDB.Where("student_id = ?", studentID).Delete(&model.Student{})
		t.Fatal("期望回滚后查不到学生，但实际查到了")
	}
	n, err := repo.Enrollment.CountByStudent(ctx, studentID)
	if err != nil {
		t.Fatalf("CountByStudent 失败: %v", err)
	}
	if n != 0 {
		t.Errorf("期望回滚后选课记录数为 0，实际=%d", n)
	}
}

func TestAtomic_Commit(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	nano := time.Now().UnixNano()
	var studentID string

	err := repo.Atomic(ctx, func(r *repository.Repository) error {
		student := &model.Student{
			TeacherID: teacher.TeacherID,
			StudentNo: fmt.Sprintf("CM%d", nano%100000000),
			Name:      "提交学生",
			Email:     fmt.Sprintf("commit%d@example.com", nano),
			ClassID:   &class.ClassID,
		}
		if err := r.Student.Create(ctx, student); err != nil {
			return err
		}
		studentID = student.StudentID
		return r.Enrollment.Create(ctx, &model.ClassEnrollment{
			StudentID: student.StudentID,
			ClassID:   class.ClassID,
		})
	})
	if err != nil {
		t.Fatalf("Atomic 失败: %v", err)
	}

	// 验证两者都已持久化
	found, err := repo.Student.GetByID(ctx, studentID)
	if err != nil {
		t.Fatalf("提交后查询学生失败: %v", err)
	}
	if found.StudentID != studentID {
		t.Errorf("ID 不匹配: expected %s, got %s", studentID, found.StudentID)
	}
	n, _ := repo.Enrollment.CountByStudent(ctx, studentID)
	if n != 1 {
		t.Errorf("期望 1 条选课记录，实际=%d", n)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Attendance Upsert
// ═══════════════════════════════════════════════════════════

func TestAttendance_Upsert_Overwrites(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// 第一次写入 absent
	if err := repo.Attendance.Upsert(ctx, &model.Attendance{
		StudentID: student.StudentID,
		ClassID:   class.ClassID,
		Date:      date,
		Status:    model.AttendanceStatusAbsent,
	}); err != nil {
		t.Fatalf("第一次 Upsert 失败: %v", err)
	}

	// 同键二次写入应覆盖而非报重复键错误
	if err := repo.Attendance.Upsert(ctx, &model.Attendance{
		StudentID: student.StudentID,
		ClassID:   class.ClassID,
		Date:      date,
		Status:    model.AttendanceStatusPresent,
		TimeIn:    "08:05",
	}); err != nil {
		t.Fatalf("同键二次 Upsert 应成功: %v", err)
	}

	got, err := repo.Attendance.GetByKey(ctx, student.StudentID, class.ClassID, date)
	if err != nil {
		t.Fatalf("GetByKey 失败: %v", err)
	}
	if got.Status != model.AttendanceStatusPresent {
		t.Errorf("期望状态被覆盖为 present，实际=%s", got.Status)
	}
	if got.TimeIn != "08:05" {
		t.Errorf("期望 TimeIn=08:05，实际=%s", got.TimeIn)
	}

	// 每生每班每天只应存在一条记录
	var count int64
	testDB.Model(&model.Attendance{}).
		Where("student_id = ? AND class_id = ? AND date = ?", student.StudentID, class.ClassID, date).
		Count(&count)
	if count != 1 {
		t.Errorf("期望 1 条考勤记录，实际=%d", count)
	}
}

func TestAttendance_DeleteByKey(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if err := repo.Attendance.Upsert(ctx, &model.Attendance{
		StudentID: student.StudentID,
		ClassID:   class.ClassID,
		Date:      date,
		Status:    model.AttendanceStatusPresent,
	}); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}

	affected, err := repo.Attendance.DeleteByKey(ctx, student.StudentID, class.ClassID, date)
	if err != nil {
		t.Fatalf("DeleteByKey 失败: %v", err)
	}
	if affected != 1 {
		t.Errorf("期望删除 1 行，实际=%d", affected)
	}
	if _, err := repo.Attendance.GetByKey(ctx, student.StudentID, class.ClassID, date); err == nil {
		t.Error("删除后不应再查到该记录")
	}

	// 同键二次删除：0 行，不报错
	affected, err = repo.Attendance.DeleteByKey(ctx, student.StudentID, class.ClassID, date)
	if err != nil {
		t.Fatalf("二次 DeleteByKey 不应报错: %v", err)
	}
	if affected != 0 {
		t.Errorf("期望删除 0 行，实际=%d", affected)
	}
}

func TestAttendance_StatsGrouped(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 3 天记录：present / late / absent → present_days=1, total_days=3
	statuses := []string{
		model.AttendanceStatusPresent,
		model.AttendanceStatusLate,
		model.AttendanceStatusAbsent,
	}
	for i, status := range statuses {
		date := time.Date(2026, 3, 2+i, 0, 0, 0, 0, time.UTC)
		if err := repo.Attendance.Upsert(ctx, &model.Attendance{
			StudentID: student.StudentID,
			ClassID:   class.ClassID,
			Date:      date,
			Status:    status,
		}); err != nil {
			t.Fatalf("Upsert 第 %d 条失败: %v", i+1, err)
		}
	}

	stats, err := repo.Attendance.StatsGrouped(ctx, &repository.AttendanceFilters{ClassID: class.ClassID})
	if err != nil {
		t.Fatalf("StatsGrouped 失败: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("期望 1 个学生的统计，实际=%d", len(stats))
	}
	if stats[0].TotalDays != 3 {
		t.Errorf("期望 TotalDays=3，实际=%d", stats[0].TotalDays)
	}
	if stats[0].PresentDays != 1 {
		t.Errorf("期望 PresentDays=1（late/absent 不计入），实际=%d", stats[0].PresentDays)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Unique Constraints
// ═══════════════════════════════════════════════════════════

func TestUnique_SubjectSection(t *testing.T) {
	teacher, subject, class, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 同科目同班别——应违反 (subject_id, section) 唯一约束
	dup := &model.Class{
		SubjectID: subject.SubjectID,
		Section:   class.Section,
		TeacherID: teacher.TeacherID,
	}
	if err := repo.Class.Create(ctx, dup); err == nil {
		testDB.Where("class_id = ?", dup.ClassID).Delete(&model.Class{})
		t.Fatal("期望唯一约束违反，但创建成功了")
	}

	// 同科目不同班别应成功
	other := &model.Class{
		SubjectID: subject.SubjectID,
		Section:   class.Section + "X",
		TeacherID: teacher.TeacherID,
	}
	if err := repo.Class.Create(ctx, other); err != nil {
		t.Fatalf("不同班别应创建成功: %v", err)
	}
	testDB.Where("class_id = ?", other.ClassID).Delete(&model.Class{})
}

func TestUnique_TeacherStudentNo(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	nano := time.Now().UnixNano()

	// 同教师同学号——应违反 (teacher_id, student_no) 唯一约束
	dup := &model.Student{
		TeacherID: teacher.TeacherID,
		StudentNo: student.StudentNo,
		Name:      "重复学号",
		Email:     fmt.Sprintf("dup%d@example.com", nano),
	}
	if err := repo.Student.Create(ctx, dup); err == nil {
		testDB.Where("student_id = ?", dup.StudentID).Delete(&model.Student{})
		t.Fatal("期望唯一约束违反，但创建成功了")
	}

	// 不同教师可以使用相同学号
	other := &model.Teacher{
		Username:     fmt.Sprintf("other%d", nano),
		Email:        fmt.Sprintf("other%d@example.com", nano),
		Name:         "另一位教师",
		PasswordHash: "$2a$10$placeholder",
		Role:         "teacher",
	}
	if err := testDB.WithContext(ctx).Create(other).Error; err != nil {
		t.Fatalf("创建第二位教师失败: %v", err)
	}
	defer testDB.Where("teacher_id = ?", other.TeacherID).Delete(&model.Teacher{})

	same := &model.Student{
		TeacherID: other.TeacherID,
		StudentNo: student.StudentNo,
		Name:      "同号不同师",
		Email:     fmt.Sprintf("same%d@example.com", nano),
	}
	if err := repo.Student.Create(ctx, same); err != nil {
		t.Fatalf("不同教师使用相同学号应成功: %v", err)
	}
	testDB.Where("student_id = ?", same.StudentID).Delete(&model.Student{})
}

func TestUnique_Enrollment(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// createStudent 已写入一条选课，同 (student, class) 再建应失败
	err := repo.Enrollment.Create(ctx, &model.ClassEnrollment{
		StudentID: student.StudentID,
		ClassID:   class.ClassID,
	})
	if err == nil {
		t.Fatal("期望唯一约束违反，但创建成功了")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Reconcile Queries
// ═══════════════════════════════════════════════════════════

func TestStudent_ListMissingClassRefs(t *testing.T) {
	teacher, _, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 人为清掉班级直接引用，制造"有选课但无引用"的漂移
	if err := repo.Student.UpdateClassRef(ctx, student.StudentID, nil); err != nil {
		t.Fatalf("UpdateClassRef 失败: %v", err)
	}

	missing, err := repo.Student.ListMissingClassRefs(ctx)
	if err != nil {
		t.Fatalf("ListMissingClassRefs 失败: %v", err)
	}
	found := false
	for _, s := range missing {
		if s.StudentID == student.StudentID {
			found = true
		}
	}
	if !found {
		t.Error("清掉引用的学生应出现在 MissingClassRefs 结果中")
	}

	// 回填后不应再出现
	if err := repo.Student.UpdateClassRef(ctx, student.StudentID, &class.ClassID); err != nil {
		t.Fatalf("回填 UpdateClassRef 失败: %v", err)
	}
	missing, err = repo.Student.ListMissingClassRefs(ctx)
	if err != nil {
		t.Fatalf("二次 ListMissingClassRefs 失败: %v", err)
	}
	for _, s := range missing {
		if s.StudentID == student.StudentID {
			t.Error("回填后学生不应再出现在 MissingClassRefs 结果中")
		}
	}
}

func TestEnrollment_ListByStudent_Order(t *testing.T) {
	teacher, subject, class, cleanup := setupTestData(t)
	defer cleanup()
	student := createStudent(t, teacher, class)

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	nano := time.Now().UnixNano()

	// 第二个班级，晚于第一条选课创建
	class2 := &model.Class{
		SubjectID: subject.SubjectID,
		Section:   fmt.Sprintf("S2%d", nano%100000),
		TeacherID: teacher.TeacherID,
	}
	if err := repo.Class.Create(ctx, class2); err != nil {
		t.Fatalf("创建第二班级失败: %v", err)
	}
	defer testDB.Where("class_id = ?", class2.ClassID).Delete(&model.Class{})

	time.Sleep(10 * time.Millisecond) // 保证 created_at 可区分
	if err := repo.Enrollment.Create(ctx, &model.ClassEnrollment{
		StudentID: student.StudentID,
		ClassID:   class2.ClassID,
	}); err != nil {
		t.Fatalf("创建第二条选课失败: %v", err)
	}
	defer testDB.Where("student_id = ? AND class_id = ?", student.StudentID, class2.ClassID).
		Delete(&model.ClassEnrollment{})

	// 最早的选课排在最前（对账回填引用时取第一条）
	list, err := repo.Enrollment.ListByStudent(ctx, student.StudentID)
	if err != nil {
		t.Fatalf("ListByStudent 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 条选课，实际=%d", len(list))
	}
	if list[0].ClassID != class.ClassID {
		t.Errorf("期望最早的选课排在首位，实际首位班级=%s", list[0].ClassID)
	}
}
