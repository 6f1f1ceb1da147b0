package service

import (
	"context"
	"errors"
	"fmt"
	"mandarin_edu_backend/internal/model"
	"mandarin_edu_backend/internal/repository"
	"mandarin_edu_backend/internal/util"
	"mandarin_edu_backend/pkg/logger"
	"mandarin_edu_backend/pkg/monitoring"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttemptScorer 发音评分适配器的最小接口
type AttemptScorer interface {
	Score(ctx context.Context, audioURL, originalText, userLevel string) (*model.AnalysisResult, error)
}

// SubmitAttemptRequest 提交一次发音尝试
type SubmitAttemptRequest struct {
	UserID        *uint
	OriginalText  string
	AudioBuffer   []byte
	AudioMetadata model.AudioMetadata
}

// AttemptListResult 分页查询结果
type AttemptListResult struct {
	Attempts   []model.PronunciationAttempt `json:"attempts"`
	Total      int64                        `json:"total"`
	TotalPages int                          `json:"totalPages"`
}

// UserPronunciationStats 用户统计摘要。RecentImprovement 是最近 5 次
// 与其前 5 次平均分之差，属于界面展示信号而非严格的趋势估计。
type UserPronunciationStats struct {
	TotalAttempts     int     `json:"totalAttempts"`
	AverageScore      float64 `json:"averageScore"`
	BestScore         float64 `json:"bestScore"`
	RecentImprovement float64 `json:"recentImprovement"`
}

// PronunciationService 发音分析工作流的编排核心：
// 建行 -> 上传 -> AI 评分 -> 落库 -> 更新统计。
type PronunciationService struct {
	AttemptRepo *repository.PronunciationAttemptRepository
	UserRepo    *repository.UserRepository
	Pinner      PinningProvider
	Scorer      AttemptScorer
}

func NewPronunciationService(
	attemptRepo *repository.PronunciationAttemptRepository,
	userRepo *repository.UserRepository,
	pinner PinningProvider,
	scorer AttemptScorer,
) *PronunciationService {
	return &PronunciationService{
		AttemptRepo: attemptRepo,
		UserRepo:    userRepo,
		Pinner:      pinner,
		Scorer:      scorer,
	}
}

// SubmitAttempt 驱动一次尝试走完整个工作流。
// 返回的错误带失败类别；统计更新失败时尝试本身保持 completed，
// 调用方拿到已完成的行和一个 stats_update_failed 错误。
func (s *PronunciationService) SubmitAttempt(ctx context.Context, req *SubmitAttemptRequest) (*model.PronunciationAttempt, error) {
	if strings.TrimSpace(req.OriginalText) == "" {
		return nil, util.ErrEmptyText
	}
	if len(req.AudioBuffer) == 0 {
		return nil, util.ErrEmptyAudio
	}

	attempt := &model.PronunciationAttempt{
		UserID:       req.UserID,
		OriginalText: req.OriginalText,
		AnalysisResult: model.AnalysisResult{
			PronunciationErrors: []string{},
			Suggestions:         []string{},
		},
		AudioMetadata:    req.AudioMetadata,
		ProcessingStatus: model.StatusPending,
		ProcessingStep:   model.StepCreated,
	}
	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, newWorkflowError(FailurePersistence, "", err)
	}

	completed, err := s.runWorkflow(ctx, attempt, req)
	if err == nil {
		monitoring.AttemptProcessed(string(model.StatusCompleted))
		return completed, nil
	}

	var we *WorkflowError
	if errors.As(err, &we) && we.Kind == FailureStatsUpdate {
		// 分析已经成功，只有统计没写上：不把 completed 改回 failed
		logger.Log.Error("statistics update failed after completed analysis",
			zap.String("attemptId", attempt.ID), zap.Error(we.Err))
		monitoring.AttemptProcessed(string(model.StatusCompleted))
		return completed, err
	}

	logger.Log.Error("pronunciation workflow failed",
		zap.String("attemptId", attempt.ID), zap.Error(err))
	message := err.Error()
	if we != nil && we.Err != nil {
		message = we.Err.Error()
	}
	if markErr := s.AttemptRepo.MarkFailed(attempt.ID, message); markErr != nil {
		logger.Log.Error("failed to mark attempt as failed",
			zap.String("attemptId", attempt.ID), zap.Error(markErr))
	}
	monitoring.AttemptProcessed(string(model.StatusFailed))
	return nil, err
}

func (s *PronunciationService) runWorkflow(ctx context.Context, attempt *model.PronunciationAttempt, req *SubmitAttemptRequest) (*model.PronunciationAttempt, error) {
	if err := s.AttemptRepo.MarkProcessing(attempt.ID); err != nil {
		return nil, newWorkflowError(FailurePersistence, attempt.ID, err)
	}

	tags := map[string]string{
		"attemptId": attempt.ID,
		"format":    req.AudioMetadata.Format,
		"duration":  strconv.FormatFloat(req.AudioMetadata.Duration, 'f', -1, 64),
	}
	pin, err := s.Pinner.Pin(ctx, req.AudioBuffer, "attempt-"+attempt.ID, tags)
	if err != nil {
		return nil, newWorkflowError(FailureUpload, attempt.ID,
			fmt.Errorf("audio upload failed: %w", err))
	}

	audioURL := s.Pinner.GatewayURL(pin.Hash)
	if err := s.AttemptRepo.SetUploadResult(attempt.ID, pin.Hash, audioURL); err != nil {
		return nil, newWorkflowError(FailurePersistence, attempt.ID, err)
	}

	result, err := s.Scorer.Score(ctx, audioURL, req.OriginalText, s.resolveLevel(req.UserID))
	if err != nil {
		// 补偿：释放已固定的对象。行上的 URL/哈希保留作为记录。
		s.compensateUpload(attempt.ID, pin.Hash)
		return nil, newWorkflowError(FailureAnalysis, attempt.ID,
			fmt.Errorf("pronunciation analysis failed: %w", err))
	}

	if err := s.AttemptRepo.Complete(attempt.ID, result); err != nil {
		return nil, newWorkflowError(FailurePersistence, attempt.ID, err)
	}

	completed, err := s.AttemptRepo.FindByID(attempt.ID)
	if err != nil {
		// 刚写完就读不到，视为不变量被破坏
		return nil, newWorkflowError(FailurePersistence, attempt.ID,
			fmt.Errorf("completed attempt disappeared after update: %w", err))
	}

	if req.UserID != nil {
		if err := s.UserRepo.ApplyCompletedAttempt(*req.UserID, result.OverallScore); err != nil {
			return completed, newWorkflowError(FailureStatsUpdate, attempt.ID, err)
		}
		if err := s.AttemptRepo.AdvanceStep(attempt.ID, model.StepStatsUpdated); err != nil {
			return completed, newWorkflowError(FailureStatsUpdate, attempt.ID, err)
		}
		completed.ProcessingStep = model.StepStatsUpdated
	}

	return completed, nil
}

// resolveLevel 匿名提交或用户查不到时按 Beginner 处理
func (s *PronunciationService) resolveLevel(userID *uint) string {
	if userID == nil {
		return "Beginner"
	}
	user, err := s.UserRepo.FindByID(*userID)
	if err != nil {
		return "Beginner"
	}
	return user.PromptLevel()
}

// compensateUpload 尽力而为的 unpin，失败只记日志
func (s *PronunciationService) compensateUpload(attemptID, hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Pinner.Unpin(ctx, hash); err != nil {
		logger.Log.Warn("failed to unpin audio after analysis failure",
			zap.String("attemptId", attemptID), zap.String("hash", hash), zap.Error(err))
	}
}

// GetAttempt 按 ID 查询单次尝试
func (s *PronunciationService) GetAttempt(id string) (*model.PronunciationAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return attempt, nil
}

// ListAttempts 按创建时间倒序分页列出某用户的尝试
func (s *PronunciationService) ListAttempts(userID uint, page, limit int) (*AttemptListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	attempts, total, err := s.AttemptRepo.ListByUser(userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &AttemptListResult{Attempts: attempts, Total: total, TotalPages: totalPages}, nil
}

// GetUserStats 汇总用户统计：总数与平均分来自 users 表的累计字段，
// bestScore 和 recentImprovement 基于最近 10 次 completed 尝试现算。
func (s *PronunciationService) GetUserStats(userID uint) (*UserPronunciationStats, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	recent, err := s.AttemptRepo.RecentCompleted(userID, 10)
	if err != nil {
		return nil, err
	}

	stats := &UserPronunciationStats{
		TotalAttempts: user.TotalAttempts,
		AverageScore:  user.AverageScore,
	}
	for _, a := range recent {
		if a.OverallScore > stats.BestScore {
			stats.BestScore = a.OverallScore
		}
	}

	// 最近 5 次对比其前 5 次；不足 6 次时 previous5 为空，改善值报 0
	recent5 := recent
	if len(recent5) > 5 {
		recent5 = recent[:5]
	}
	previous5 := []model.PronunciationAttempt{}
	if len(recent) > 5 {
		previous5 = recent[5:]
	}

	recentMean := meanScore(recent5)
	previousMean := meanScore(previous5)
	if len(previous5) == 0 {
		previousMean = recentMean
	}
	stats.RecentImprovement = repository.Round1(recentMean - previousMean)

	return stats, nil
}

func meanScore(attempts []model.PronunciationAttempt) float64 {
	if len(attempts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range attempts {
		sum += a.OverallScore
	}
	return sum / float64(len(attempts))
}

// ExpireStaleAttempts 回收卡在 processing 的尝试，由后台定时任务调用
func (s *PronunciationService) ExpireStaleAttempts(ttl time.Duration) error {
	expired, err := s.AttemptRepo.ExpireStaleProcessing(time.Now().Add(-ttl),
		"processing expired: workflow did not finish within "+ttl.String())
	if err != nil {
		return err
	}
	if expired > 0 {
		logger.Log.Warn("expired stale processing attempts", zap.Int64("count", expired))
		monitoring.AttemptsExpired(expired)
	}
	return nil
}
