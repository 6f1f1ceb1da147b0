package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProcessingStatus 一次发音尝试的生命周期状态
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// ProcessingStep 工作流步骤游标，记录尝试推进到了哪一步。
// 进程崩溃后据此判断该补偿还是直接过期。
type ProcessingStep string

const (
	StepCreated      ProcessingStep = "created"
	StepUploaded     ProcessingStep = "uploaded"
	StepAnalyzed     ProcessingStep = "analyzed"
	StepStatsUpdated ProcessingStep = "stats_updated"
)

// AnalysisResult AI 发音评分结果，作为 JSON 列持久化。
// UsedFallback 标记该结果来自解析失败时的兜底值，而非模型真实评分。
type AnalysisResult struct {
	OverallScore        float64  `json:"overallScore"`
	ToneAccuracy        float64  `json:"toneAccuracy"`
	PronunciationErrors []string `json:"pronunciationErrors"`
	Suggestions         []string `json:"suggestions"`
	DetailedFeedback    string   `json:"detailedFeedback"`
	UsedFallback        bool     `json:"usedFallback"`
}

// AudioMetadata 由调用方在提交时给出，不与音频字节做校验
type AudioMetadata struct {
	Duration   float64 `json:"duration"` // 秒
	SampleRate int     `json:"sampleRate"`
	Format     string  `json:"format"`
	Size       int64   `json:"size"` // 字节
}

// swagger:model PronunciationAttempt
type PronunciationAttempt struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_attempts_user_created,priority:2" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UserID       *uint  `gorm:"index;index:idx_attempts_user_created,priority:1" json:"userId,omitempty"`
	OriginalText string `gorm:"type:text;not null" json:"originalText"`

	// 上传成功后填充，之后即使分析失败也不清空
	AudioFileURL string `gorm:"size:512" json:"audioFileUrl"`
	IPFSHash     string `gorm:"column:ipfs_hash;size:128" json:"ipfsHash"`

	AnalysisResult AnalysisResult `gorm:"serializer:json" json:"analysisResult"`
	AudioMetadata  AudioMetadata  `gorm:"serializer:json" json:"audioMetadata"`

	// 完成后与 AnalysisResult.OverallScore 一致，否则为 0
	OverallScore float64 `gorm:"index;type:decimal(4,1);default:0" json:"overallScore"`

	ProcessingStatus ProcessingStatus `gorm:"size:20;default:'pending';index" json:"processingStatus"`
	ProcessingStep   ProcessingStep   `gorm:"size:20;default:'created'" json:"processingStep"`
	ErrorMessage     string           `gorm:"type:text" json:"errorMessage,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (PronunciationAttempt) TableName() string {
	return "pronunciation_attempts"
}

func (a *PronunciationAttempt) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return
}
