package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mandarin_edu_backend/internal/config"
	"mandarin_edu_backend/internal/model"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter go-openai 客户端中评分用到的最小子集，便于测试替换
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ScoringService 调用生成式模型给发音打分
type ScoringService struct {
	client  chatCompleter
	model   string
	timeout time.Duration
}

func NewScoringService(cfg config.AIConfig) (*ScoringService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	mdl := cfg.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}
	return &ScoringService{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   mdl,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// Score 对一段录音评分。模型返回无法解析时不报错，
// 返回带 UsedFallback 标记的兜底结果。
func (s *ScoringService) Score(ctx context.Context, audioURL, originalText, userLevel string) (*model.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := buildScoringPrompt(audioURL, originalText, userLevel)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "你是一位专业的中文发音教师，负责评估学习者的普通话发音。",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("AI scoring request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("AI returned no choices")
	}

	return ParseAnalysisResponse(resp.Choices[0].Message.Content), nil
}

func buildScoringPrompt(audioURL, originalText, userLevel string) string {
	return fmt.Sprintf(`请评估一段中文发音录音。

录音地址: %s
目标文本: %s
学习者水平: %s

请只返回如下格式的 JSON 对象，不要附加其他说明：
{
  "overallScore": <0-100 的总分>,
  "toneAccuracy": <0-100 的声调准确度>,
  "pronunciationErrors": ["发现的发音问题"],
  "suggestions": ["针对性的改进建议"],
  "detailedFeedback": "详细的中文反馈"
}`, audioURL, originalText, userLevel)
}

// ParseAnalysisResponse 从模型的自由文本里提取第一个 JSON 对象。
// 找不到或解析失败时返回固定兜底结果，绝不返回错误。
// 所有数值字段最终都被截断到 [0,100]。
func ParseAnalysisResponse(raw string) *model.AnalysisResult {
	var result *model.AnalysisResult

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		var parsed model.AnalysisResult
		if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err == nil {
			result = &parsed
		}
	}

	if result == nil {
		result = fallbackResult(raw)
	}

	result.OverallScore = clampScore(result.OverallScore)
	result.ToneAccuracy = clampScore(result.ToneAccuracy)
	if result.PronunciationErrors == nil {
		result.PronunciationErrors = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return result
}

// fallbackResult 模型响应不含合法 JSON 时的固定结果
func fallbackResult(raw string) *model.AnalysisResult {
	feedback := raw
	// 按字符截断，中文反馈不能切在多字节 rune 中间
	if runes := []rune(feedback); len(runes) > 500 {
		feedback = string(runes[:500])
	}
	return &model.AnalysisResult{
		OverallScore:        75,
		ToneAccuracy:        70,
		PronunciationErrors: []string{"无法解析评分结果"},
		Suggestions:         []string{"请使用更清晰的录音重试"},
		DetailedFeedback:    feedback,
		UsedFallback:        true,
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
