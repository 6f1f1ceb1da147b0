package model

import (
	"gorm.io/datatypes"
)

// ProficiencyLevel HSK 等级（1-6）加母语者
type ProficiencyLevel string

const (
	HSK1   ProficiencyLevel = "HSK1"
	HSK2   ProficiencyLevel = "HSK2"
	HSK3   ProficiencyLevel = "HSK3"
	HSK4   ProficiencyLevel = "HSK4"
	HSK5   ProficiencyLevel = "HSK5"
	HSK6   ProficiencyLevel = "HSK6"
	Native ProficiencyLevel = "NATIVE"
)

// swagger:model User
type User struct {
	BaseModel
	Email       string           `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Username    string           `gorm:"size:50;uniqueIndex;not null" json:"username"`
	DisplayName string           `gorm:"size:100" json:"displayName"`
	Level       ProficiencyLevel `gorm:"size:10;default:'HSK1'" json:"level"`
	Preferences datatypes.JSON   `json:"preferences,omitempty"` // 自由格式的学习偏好设置

	// 统计字段：仅在一次尝试分析成功完成时更新
	TotalAttempts int     `gorm:"default:0" json:"totalAttempts"`
	AverageScore  float64 `gorm:"type:decimal(4,1);default:0" json:"averageScore"`

	IsActive bool `gorm:"default:true" json:"isActive"`
}

func (User) TableName() string {
	return "users"
}

// PromptLevel 返回用于 AI 提示词的等级描述，匿名或未知用户使用 Beginner。
func (u *User) PromptLevel() string {
	if u == nil || u.Level == "" {
		return "Beginner"
	}
	return string(u.Level)
}
