package service

import (
	"context"
	"encoding/json"
	"mandarin_edu_backend/internal/config"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pinataTestConfig(baseURL string) *config.StorageConfig {
	return &config.StorageConfig{
		Type:           "pinata",
		PinningBaseURL: baseURL,
		PinningToken:   "test-token",
		Gateway:        "gateway.test",
		TimeoutSeconds: 5,
	}
}

func TestNewPinataProviderValidation(t *testing.T) {
	_, err := NewPinataProvider(&config.StorageConfig{Gateway: "gw"})
	assert.Error(t, err, "缺 token 应在构造期报错")

	_, err = NewPinataProvider(&config.StorageConfig{PinningToken: "tok"})
	assert.Error(t, err, "缺网关应在构造期报错")

	cfg := &config.StorageConfig{PinningToken: "tok", Gateway: "gw"}
	provider, err := NewPinataProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://api.pinata.cloud", provider.Config.PinningBaseURL)
}

func TestNewMinioProviderValidation(t *testing.T) {
	_, err := NewMinioProvider(&config.StorageConfig{MinioEndpoint: "localhost:9000"})
	assert.Error(t, err, "缺凭据应在构造期报错")

	_, err = NewMinioProvider(&config.StorageConfig{
		MinioEndpoint: "localhost:9000",
		MinioAccessID: "id",
		MinioSecret:   "secret",
	})
	assert.Error(t, err, "缺桶名应在构造期报错")
}

func TestNewPinningProviderUnknownType(t *testing.T) {
	_, err := NewPinningProvider(&config.Config{Storage: config.StorageConfig{Type: "s3"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage type")
}

func TestPinataPin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "attempt-abc", header.Filename)

		// 标签随 pinataMetadata 一起提交
		var meta struct {
			Name      string            `json:"name"`
			Keyvalues map[string]string `json:"keyvalues"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("pinataMetadata")), &meta))
		assert.Equal(t, "attempt-abc", meta.Name)
		assert.Equal(t, "wav", meta.Keyvalues["format"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"IpfsHash":  "QmPinned123",
			"PinSize":   1234,
			"Timestamp": "2026-01-02T03:04:05Z",
		})
	}))
	defer server.Close()

	provider, err := NewPinataProvider(pinataTestConfig(server.URL))
	require.NoError(t, err)

	result, err := provider.Pin(context.Background(), []byte("audio bytes"), "attempt-abc",
		map[string]string{"format": "wav"})
	require.NoError(t, err)

	assert.Equal(t, "QmPinned123", result.Hash)
	assert.Equal(t, int64(1234), result.Size)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), result.Timestamp)
}

func TestPinataPinAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	provider, err := NewPinataProvider(pinataTestConfig(server.URL))
	require.NoError(t, err)

	_, err = provider.Pin(context.Background(), []byte("audio"), "attempt-x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestPinataUnpin(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	provider, err := NewPinataProvider(pinataTestConfig(server.URL))
	require.NoError(t, err)

	require.NoError(t, provider.Unpin(context.Background(), "QmPinned123"))
	assert.Equal(t, "/pinning/unpin/QmPinned123", gotPath)
}

func TestPinataUnpinAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewPinataProvider(pinataTestConfig(server.URL))
	require.NoError(t, err)

	err = provider.Unpin(context.Background(), "QmMissing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGatewayURLIsPure(t *testing.T) {
	provider, err := NewPinataProvider(pinataTestConfig("http://unused"))
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.test/ipfs/QmX", provider.GatewayURL("QmX"))

	minioCfg := &config.StorageConfig{
		MinioEndpoint: "localhost:9000",
		MinioAccessID: "id",
		MinioSecret:   "secret",
		MinioBucket:   "audio-bucket",
	}
	minioProvider, err := NewMinioProvider(minioCfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/audio-bucket/audio/QmY", minioProvider.GatewayURL("QmY"))
}
