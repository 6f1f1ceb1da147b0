package repository

import (
	"mandarin_edu_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type PronunciationAttemptRepository struct {
	DB *gorm.DB
}

func NewPronunciationAttemptRepository(db *gorm.DB) *PronunciationAttemptRepository {
	return &PronunciationAttemptRepository{DB: db}
}

func (r *PronunciationAttemptRepository) Create(attempt *model.PronunciationAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *PronunciationAttemptRepository) FindByID(id string) (*model.PronunciationAttempt, error) {
	var attempt model.PronunciationAttempt
	err := r.DB.Preload("User").Where("id = ?", id).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *PronunciationAttemptRepository) MarkProcessing(id string) error {
	return r.DB.Model(&model.PronunciationAttempt{}).Where("id = ?", id).
		Update("processing_status", model.StatusProcessing).Error
}

// SetUploadResult 记录内容哈希与公开 URL，并把步骤游标推进到 uploaded。
// 这两个字段写入后不再清空。
func (r *PronunciationAttemptRepository) SetUploadResult(id, ipfsHash, audioURL string) error {
	return r.DB.Model(&model.PronunciationAttempt{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"ipfs_hash":       ipfsHash,
			"audio_file_url":  audioURL,
			"processing_step": model.StepUploaded,
		}).Error
}

// Complete 在同一次更新中写入分析结果并置为 completed
func (r *PronunciationAttemptRepository) Complete(id string, result *model.AnalysisResult) error {
	return r.DB.Model(&model.PronunciationAttempt{}).Where("id = ?", id).
		Select("analysis_result", "overall_score", "processing_status", "processing_step").
		Updates(&model.PronunciationAttempt{
			AnalysisResult:   *result,
			OverallScore:     result.OverallScore,
			ProcessingStatus: model.StatusCompleted,
			ProcessingStep:   model.StepAnalyzed,
		}).Error
}

func (r *PronunciationAttemptRepository) AdvanceStep(id string, step model.ProcessingStep) error {
	return r.DB.Model(&model.PronunciationAttempt{}).Where("id = ?", id).
		Update("processing_step", step).Error
}

func (r *PronunciationAttemptRepository) MarkFailed(id, message string) error {
	return r.DB.Model(&model.PronunciationAttempt{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"processing_status": model.StatusFailed,
			"error_message":     message,
		}).Error
}

// ListByUser 按创建时间倒序分页返回某用户的尝试
func (r *PronunciationAttemptRepository) ListByUser(userID uint, offset, limit int) ([]model.PronunciationAttempt, int64, error) {
	var attempts []model.PronunciationAttempt
	var total int64

	query := r.DB.Model(&model.PronunciationAttempt{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// RecentCompleted 某用户最近 limit 条 completed 尝试，新的在前
func (r *PronunciationAttemptRepository) RecentCompleted(userID uint, limit int) ([]model.PronunciationAttempt, error) {
	var attempts []model.PronunciationAttempt
	err := r.DB.Where("user_id = ? AND processing_status = ?", userID, model.StatusCompleted).
		Order("created_at DESC").Limit(limit).Find(&attempts).Error
	return attempts, err
}

// ExpireStaleProcessing 把停留在 processing 超过期限的尝试标记为 failed，
// 返回受影响的行数。崩溃后遗留的行由此回收，而不是永远卡住。
func (r *PronunciationAttemptRepository) ExpireStaleProcessing(olderThan time.Time, message string) (int64, error) {
	res := r.DB.Model(&model.PronunciationAttempt{}).
		Where("processing_status = ? AND updated_at < ?", model.StatusProcessing, olderThan).
		Updates(map[string]interface{}{
			"processing_status": model.StatusFailed,
			"error_message":     message,
		})
	return res.RowsAffected, res.Error
}
