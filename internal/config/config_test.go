package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "http://localhost:9000/api", cfg.Platform.BaseURL)
	assert.Equal(t, 15*time.Minute, cfg.Wizard.PreviewTTL)
	assert.Equal(t, int64(64<<20), cfg.Wizard.MaxUploadBytes)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Security.RateLimit.Enabled)

	require.NoError(t, cfg.validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AUTOML_SERVER_PORT", "9999")
	t.Setenv("AUTOML_PLATFORM_BASE_URL", "https://platform.internal/api")
	t.Setenv("AUTOML_WIZARD_PREVIEW_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://platform.internal/api", cfg.Platform.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Wizard.PreviewTTL)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidateRejectsBadPlatformURL(t *testing.T) {
	cfg := Default()
	cfg.Platform.BaseURL = "localhost:9000"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform base URL")
}

func TestValidateRejectsZeroTTL(t *testing.T) {
	cfg := Default()
	cfg.Wizard.PreviewTTL = 0

	assert.Error(t, cfg.validate())
}

func TestValidateForcesJSONLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	content := []byte(`
server:
  port: 7070
platform:
  base_url: "http://platform.test/api"
wizard:
  preview_ttl: 2m
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := loadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "http://platform.test/api", cfg.Platform.BaseURL)
	assert.Equal(t, 2*time.Minute, cfg.Wizard.PreviewTTL)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 7070
	fileCfg.Platform.BaseURL = "http://file.test/api"

	// envconfig has already applied struct-tag defaults; only the port
	// was set explicitly.
	envCfg := *Default()
	envCfg.Server.Port = 9090

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 9090, merged.Server.Port)
	assert.Equal(t, "http://file.test/api", merged.Platform.BaseURL)
}

func TestMergeConfigsFileOverridesDefaultedFields(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.ReadTimeout = 45 * time.Second
	fileCfg.Server.WriteTimeout = 45 * time.Second
	fileCfg.Wizard.PreviewRows = 200

	// No environment overrides at all: every env field sits at its
	// struct-tag default, which must not shadow the file.
	envCfg := *Default()

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 45*time.Second, merged.Server.ReadTimeout)
	assert.Equal(t, 45*time.Second, merged.Server.WriteTimeout)
	assert.Equal(t, 200, merged.Wizard.PreviewRows)

	// Fields set in neither place keep their defaults.
	assert.Equal(t, 8080, merged.Server.Port)
	assert.Equal(t, "http://localhost:9000/api", merged.Platform.BaseURL)
}

func TestLoadFileOverridesDefaultedTimeout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/config.yaml", []byte(`
server:
  read_timeout: 45s
`), 0644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
}
