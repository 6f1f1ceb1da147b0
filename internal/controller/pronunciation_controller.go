package controller

import (
	"io"
	"mandarin_edu_backend/internal/model"
	"mandarin_edu_backend/internal/service"
	"mandarin_edu_backend/internal/util"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
)

type PronunciationController struct {
	pronunciationService *service.PronunciationService
}

func NewPronunciationController(pronunciationService *service.PronunciationService) *PronunciationController {
	return &PronunciationController{pronunciationService: pronunciationService}
}

type AnalyzeRequest struct {
	Text       string  `form:"text" binding:"required"`
	UserID     *uint   `form:"userId"`
	Duration   float64 `form:"duration"`
	SampleRate int     `form:"sampleRate"`
	Format     string  `form:"format"`
}

// Analyze godoc
// @Summary 提交发音分析
// @Description 上传一段中文发音录音，经存储网络固定后交给 AI 评分
// @Tags pronunciation
// @Accept multipart/form-data
// @Produce json
// @Param text formData string true "要朗读的中文文本"
// @Param userId formData int false "用户ID（缺省为匿名尝试）"
// @Param duration formData number false "录音时长（秒）"
// @Param sampleRate formData int false "采样率"
// @Param format formData string false "音频格式"
// @Param audio formData file true "录音文件"
// @Success 200 {object} util.Response{data=model.PronunciationAttempt}
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 502 {object} util.Response "上传或分析失败"
// @Router /pronunciation/analyze [post]
func (c *PronunciationController) Analyze(ctx *gin.Context) {
	var req AnalyzeRequest
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	fileHeader, err := ctx.FormFile("audio")
	if err != nil {
		util.BadRequest(ctx, "audio file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	audioBuffer, err := io.ReadAll(file)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	metadata := model.AudioMetadata{
		Duration:   req.Duration,
		SampleRate: req.SampleRate,
		Format:     req.Format,
		Size:       fileHeader.Size,
	}
	if metadata.Duration == 0 || metadata.SampleRate == 0 || metadata.Format == "" {
		c.probeMissingMetadata(&metadata, fileHeader.Filename, audioBuffer)
	}

	attempt, err := c.pronunciationService.SubmitAttempt(ctx.Request.Context(), &service.SubmitAttemptRequest{
		UserID:        req.UserID,
		OriginalText:  req.Text,
		AudioBuffer:   audioBuffer,
		AudioMetadata: metadata,
	})

	switch {
	case err == nil:
		util.Success(ctx, attempt)
	case service.IsStatsUpdateFailure(err):
		// 分析已完成，只有统计没写上
		ctx.JSON(http.StatusOK, util.Response{
			Code:    http.StatusOK,
			Message: "completed, but statistics update failed",
			Data:    attempt,
		})
	case err == util.ErrEmptyText || err == util.ErrEmptyAudio:
		util.BadRequest(ctx, err.Error())
	case service.IsUploadFailure(err) || service.IsAnalysisFailure(err):
		util.Error(ctx, http.StatusBadGateway, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// probeMissingMetadata 调用方没给全元数据时用 ffprobe 补齐，失败则保持原样
func (c *PronunciationController) probeMissingMetadata(metadata *model.AudioMetadata, filename string, audioBuffer []byte) {
	tmp, err := os.CreateTemp("", "attempt-*"+filepath.Ext(filename))
	if err != nil {
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(audioBuffer); err != nil {
		tmp.Close()
		return
	}
	tmp.Close()

	info, err := util.GetAudioInfo(tmp.Name())
	if err != nil {
		return
	}
	if metadata.Duration == 0 {
		metadata.Duration = info.Duration
	}
	if metadata.SampleRate == 0 {
		metadata.SampleRate = info.SampleRate
	}
	if metadata.Format == "" {
		metadata.Format = info.Format
	}
}

// GetAttempt godoc
// @Summary 查询单次发音尝试
// @Tags pronunciation
// @Produce json
// @Param id path string true "尝试ID"
// @Success 200 {object} util.Response{data=model.PronunciationAttempt}
// @Failure 404 {object} util.Response "Not Found"
// @Router /pronunciation/attempts/{id} [get]
func (c *PronunciationController) GetAttempt(ctx *gin.Context) {
	attempt, err := c.pronunciationService.GetAttempt(ctx.Param("id"))
	if err != nil {
		if err == util.ErrAttemptNotFound {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// ListAttempts godoc
// @Summary 分页列出某用户的发音尝试（新的在前）
// @Tags pronunciation
// @Produce json
// @Param userId query int true "用户ID"
// @Param page query int false "页码，默认1"
// @Param limit query int false "每页数量，默认10"
// @Success 200 {object} util.PageResponse
// @Router /pronunciation/attempts [get]
func (c *PronunciationController) ListAttempts(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Query("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "userId parameter is required")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))

	result, err := c.pronunciationService.ListAttempts(uint(userID), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:       result.Attempts,
		Total:      result.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: result.TotalPages,
	})
}

// GetStats godoc
// @Summary 用户发音统计摘要
// @Description 累计次数、平均分、最近最佳分与近期进步值
// @Tags pronunciation
// @Produce json
// @Param userId query int true "用户ID"
// @Success 200 {object} util.Response{data=service.UserPronunciationStats}
// @Failure 404 {object} util.Response "Not Found"
// @Router /pronunciation/stats [get]
func (c *PronunciationController) GetStats(ctx *gin.Context) {
	userID, err := strconv.ParseUint(ctx.Query("userId"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "userId parameter is required")
		return
	}

	stats, err := c.pronunciationService.GetUserStats(uint(userID))
	if err != nil {
		if err == util.ErrUserNotFound {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
