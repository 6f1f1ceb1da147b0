package service

import (
	"context"
	"fmt"
	"io"
	"mandarin_edu_backend/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

// TTSService 文本转语音适配器，独立于发音分析工作流
type TTSService struct {
	client *openai.Client
	cfg    config.TTSConfig
}

func NewTTSService(cfg config.TTSConfig) (*TTSService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("TTS api key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &TTSService{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

// Synthesize 合成语音，返回音频字节。voice/model 为空时使用配置默认值。
func (s *TTSService) Synthesize(ctx context.Context, text, voice, mdl string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if voice == "" {
		voice = s.cfg.Voice
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	if mdl == "" {
		mdl = s.cfg.Model
	}
	if mdl == "" {
		mdl = string(openai.TTSModel1)
	}

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(mdl),
		Input: text,
		Voice: openai.SpeechVoice(voice),
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	return audio, nil
}
