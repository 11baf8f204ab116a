package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;size:64"`
	PasswordHash string   `gorm:"size:255"`
	Resumes      []Resume `gorm:"constraint:OnDelete:CASCADE"`
}

// 简历渲染状态。
const (
	ResumeStatusDraft     = "draft"
	ResumeStatusRendering = "rendering"
	ResumeStatusCompleted = "completed"
	ResumeStatusFailed    = "failed"
)

// Resume 表示用户保存的一份简历记录。
// Content 是已经过 binding 校验的 resume.Record JSON。
type Resume struct {
	gorm.Model
	Title   string         `gorm:"size:255"`
	Content datatypes.JSON `gorm:"type:jsonb"`
	UserID  uint           `gorm:"index"`
	User    User           `gorm:"constraint:OnDelete:CASCADE"`
	PdfKey  string         `gorm:"size:512"`
	Status  string         `gorm:"size:32;default:draft"`
}
