package handler

import "class-attend/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Class       *ClassHandler
	Student     *StudentHandler
	Attendance  *AttendanceHandler
	Report      *ReportHandler
	Export      *ExportHandler
	Maintenance *MaintenanceHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Class:       NewClassHandler(svc.Class),
		Student:     NewStudentHandler(svc.Student),
		Attendance:  NewAttendanceHandler(svc.Attendance),
		Report:      NewReportHandler(svc.Report),
		Export:      NewExportHandler(svc.Export),
		Maintenance: NewMaintenanceHandler(svc.Reconcile),
	}
}

// [自证通过] internal/api/handler/handler.go
