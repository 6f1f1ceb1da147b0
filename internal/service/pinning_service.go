package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mandarin_edu_backend/internal/config"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PinResult 一次固定（pin）操作的结果
type PinResult struct {
	Hash      string    `json:"hash"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// PinningProvider 内容寻址存储的通用接口。
// GatewayURL 是纯字符串模板，不做 I/O。
type PinningProvider interface {
	Pin(ctx context.Context, data []byte, name string, tags map[string]string) (*PinResult, error)
	Unpin(ctx context.Context, hash string) error
	GatewayURL(hash string) string
}

// PinataProvider 远程 pinning API 实现（Pinata 兼容）
type PinataProvider struct {
	Config *config.StorageConfig
	Client *http.Client
}

func NewPinataProvider(cfg *config.StorageConfig) (*PinataProvider, error) {
	if cfg.PinningToken == "" {
		return nil, fmt.Errorf("pinning token is required")
	}
	if cfg.Gateway == "" {
		return nil, fmt.Errorf("pinning gateway is required")
	}
	if cfg.PinningBaseURL == "" {
		cfg.PinningBaseURL = "https://api.pinata.cloud"
	}
	return &PinataProvider{
		Config: cfg,
		Client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}, nil
}

type pinataPinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func (p *PinataProvider) Pin(ctx context.Context, data []byte, name string, tags map[string]string) (*PinResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}

	// 可检索的键值标签
	meta := map[string]interface{}{
		"name":      name,
		"keyvalues": tags,
	}
	metaJSON, _ := json.Marshal(meta)
	if err := writer.WriteField("pinataMetadata", string(metaJSON)); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.Config.PinningBaseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.Config.PinningToken)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinning request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pinning API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result pinataPinResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("invalid pinning API response: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, result.Timestamp)
	if err != nil {
		ts = time.Now()
	}

	return &PinResult{Hash: result.IpfsHash, Size: result.PinSize, Timestamp: ts}, nil
}

func (p *PinataProvider) Unpin(ctx context.Context, hash string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		p.Config.PinningBaseURL+"/pinning/unpin/"+hash, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.Config.PinningToken)

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("unpin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unpin API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (p *PinataProvider) GatewayURL(hash string) string {
	return fmt.Sprintf("https://%s/ipfs/%s", p.Config.Gateway, hash)
}

// MinioProvider 自托管的内容寻址存储：对象键为音频字节的 sha256
type MinioProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioProvider(cfg *config.StorageConfig) (*MinioProvider, error) {
	if cfg.MinioEndpoint == "" || cfg.MinioAccessID == "" || cfg.MinioSecret == "" {
		return nil, fmt.Errorf("minio endpoint and credentials are required")
	}
	if cfg.MinioBucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioProvider{Config: cfg, Client: client}, nil
}

func (p *MinioProvider) Pin(ctx context.Context, data []byte, name string, tags map[string]string) (*PinResult, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	meta := map[string]string{"name": name}
	for k, v := range tags {
		meta[k] = v
	}

	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, "audio/"+hash,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType:  "application/octet-stream",
			UserMetadata: meta,
		})
	if err != nil {
		return nil, err
	}

	return &PinResult{Hash: hash, Size: int64(len(data)), Timestamp: time.Now()}, nil
}

func (p *MinioProvider) Unpin(ctx context.Context, hash string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, "audio/"+hash, minio.RemoveObjectOptions{})
}

func (p *MinioProvider) GatewayURL(hash string) string {
	return fmt.Sprintf("http://%s/%s/audio/%s", p.Config.MinioEndpoint, p.Config.MinioBucket, hash)
}

// NewPinningProvider 按配置选择存储后端，凭据缺失时在构造期即报错
func NewPinningProvider(cfg *config.Config) (PinningProvider, error) {
	switch cfg.Storage.Type {
	case "pinata":
		return NewPinataProvider(&cfg.Storage)
	case "minio":
		return NewMinioProvider(&cfg.Storage)
	default:
		return nil, fmt.Errorf("unknown storage type %q (expected pinata or minio)", cfg.Storage.Type)
	}
}
