package service

import (
	"context"
	"errors"
	"mandarin_edu_backend/internal/config"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChatCompleter struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeChatCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newFakeScoringService(completer *fakeChatCompleter) *ScoringService {
	return &ScoringService{client: completer, model: openai.GPT4oMini, timeout: time.Second}
}

func TestNewScoringServiceRequiresAPIKey(t *testing.T) {
	_, err := NewScoringService(config.AIConfig{})
	assert.Error(t, err)

	svc, err := NewScoringService(config.AIConfig{APIKey: "sk-test", TimeoutSeconds: 10})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestScoreParsesModelResponse(t *testing.T) {
	completer := &fakeChatCompleter{
		content: `评分如下：
{"overallScore": 88, "toneAccuracy": 92, "pronunciationErrors": ["zh/z 不分"], "suggestions": ["多练翘舌音"], "detailedFeedback": "总体流利"}`,
	}
	svc := newFakeScoringService(completer)

	result, err := svc.Score(context.Background(), "https://gw/ipfs/Qm1", "今天天气很好", "HSK4")
	require.NoError(t, err)

	assert.Equal(t, 88.0, result.OverallScore)
	assert.Equal(t, 92.0, result.ToneAccuracy)
	assert.Equal(t, []string{"zh/z 不分"}, result.PronunciationErrors)
	assert.False(t, result.UsedFallback)

	// 提示词包含录音地址、目标文本和学习者水平
	require.Len(t, completer.lastReq.Messages, 2)
	prompt := completer.lastReq.Messages[1].Content
	assert.Contains(t, prompt, "https://gw/ipfs/Qm1")
	assert.Contains(t, prompt, "今天天气很好")
	assert.Contains(t, prompt, "HSK4")
}

func TestScoreRequestError(t *testing.T) {
	svc := newFakeScoringService(&fakeChatCompleter{err: errors.New("rate limited")})

	_, err := svc.Score(context.Background(), "url", "文本", "HSK1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI scoring request failed")
}

func TestScoreFallsBackOnUnparsableResponse(t *testing.T) {
	svc := newFakeScoringService(&fakeChatCompleter{content: "抱歉，我无法完成评分。"})

	result, err := svc.Score(context.Background(), "url", "文本", "HSK1")
	require.NoError(t, err)
	assert.True(t, result.UsedFallback)
}

func TestParseAnalysisResponseFallbackIsFixed(t *testing.T) {
	raw := "I am unable to score this recording."
	result := ParseAnalysisResponse(raw)

	assert.Equal(t, 75.0, result.OverallScore)
	assert.Equal(t, 70.0, result.ToneAccuracy)
	assert.Equal(t, []string{"无法解析评分结果"}, result.PronunciationErrors)
	assert.Equal(t, []string{"请使用更清晰的录音重试"}, result.Suggestions)
	assert.Equal(t, raw, result.DetailedFeedback)
	assert.True(t, result.UsedFallback)
}

func TestParseAnalysisResponseFallbackOnBrokenJSON(t *testing.T) {
	result := ParseAnalysisResponse(`{"overallScore": not-a-number}`)
	assert.True(t, result.UsedFallback)
}

func TestParseAnalysisResponseTruncatesLongFeedback(t *testing.T) {
	raw := strings.Repeat("a", 600)
	result := ParseAnalysisResponse(raw)
	assert.Len(t, result.DetailedFeedback, 500)

	// 中文反馈按字符截断，不能切出非法 UTF-8
	raw = strings.Repeat("评", 600)
	result = ParseAnalysisResponse(raw)
	assert.True(t, utf8.ValidString(result.DetailedFeedback))
	assert.Equal(t, 500, utf8.RuneCountInString(result.DetailedFeedback))
}

func TestParseAnalysisResponseClampsScores(t *testing.T) {
	result := ParseAnalysisResponse(`{"overallScore": 150, "toneAccuracy": -20}`)
	assert.False(t, result.UsedFallback)
	assert.Equal(t, 100.0, result.OverallScore)
	assert.Equal(t, 0.0, result.ToneAccuracy)
	// 缺失的列表字段归一为空切片，序列化时不出现 null
	assert.NotNil(t, result.PronunciationErrors)
	assert.NotNil(t, result.Suggestions)
	assert.Empty(t, result.PronunciationErrors)
}

func TestParseAnalysisResponseExtractsEmbeddedJSON(t *testing.T) {
	raw := "前置说明 {\"overallScore\": 66.5, \"toneAccuracy\": 60, \"suggestions\": [\"注意四声\"]} 后置说明"
	result := ParseAnalysisResponse(raw)

	assert.False(t, result.UsedFallback)
	assert.Equal(t, 66.5, result.OverallScore)
	assert.Equal(t, []string{"注意四声"}, result.Suggestions)
}
