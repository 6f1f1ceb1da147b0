package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
server:
  port: "8080"
  mode: "debug"

database:
  host: "localhost"
  port: 3306
  user: "root"
  password: ""
  dbname: "mandarin_edu_test"

storage:
  type: "pinata"
  pinning_token: "tok"
  gateway: "gateway.test"

ai:
  api_key: "sk-test"

tts:
  api_key: "sk-test"
`

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, baseConfig)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mandarin_edu_test", cfg.Database.DBName)
	assert.Equal(t, "pinata", cfg.Storage.Type)

	// 缺省值
	assert.Equal(t, 30, cfg.Workflow.ProcessingTTLMinutes)
	assert.Equal(t, 30*time.Minute, cfg.ProcessingTTL())
	assert.Equal(t, 30, cfg.Storage.TimeoutSeconds)
	assert.Equal(t, 60, cfg.AI.TimeoutSeconds)

	// release 模式下必须有数据库密码
	release := `
server:
  port: "8080"
  mode: "release"

database:
  host: "localhost"
  port: 3306
  user: "root"
  password: ""
  dbname: "mandarin_edu_test"

storage:
  type: "pinata"
  pinning_token: "tok"
  gateway: "gateway.test"

ai:
  api_key: "sk-test"

tts:
  api_key: "sk-test"
`
	writeConfig(t, dir, release)
	_, err = LoadConfig(dir)
	assert.Error(t, err)
}
