package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/logincheck/pkg/login"
)

func Test_defaultsFS(t *testing.T) {
	data, err := DefaultsFS().ReadFile("defaults/config")
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url")
	assert.Contains(t, string(data), "observe_timeout_ms")
	assert.Contains(t, string(data), "color_pass")
}

func TestReadLayers(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global")
	require.NoError(t, os.WriteFile(global, []byte("engine = rod\n"), 0o600))

	layers, err := readLayers(DefaultsFS(), global, filepath.Join(dir, "missing"), "")
	require.NoError(t, err)
	require.Len(t, layers, 2, "missing and empty paths skipped")
	assert.Equal(t, "embedded defaults", layers[0].name)
	assert.Equal(t, global, layers[1].name)
	assert.Equal(t, "engine = rod\n", string(layers[1].data))

	_, err = readLayers(DefaultsFS(), dir)
	require.Error(t, err, "a directory is not a config file")
}

func TestLoad_InstallsDefaults(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "logincheck")

	cfg, err := loadWithLocal(configDir, "")
	require.NoError(t, err)
	assert.Equal(t, configDir, cfg.ConfigDir())
	assert.Empty(t, cfg.LocalDir())

	data, err := os.ReadFile(filepath.Join(configDir, "config"))
	require.NoError(t, err)
	embedded, err := DefaultsFS().ReadFile("defaults/config")
	require.NoError(t, err)
	assert.Equal(t, string(embedded), string(data))
}

func TestLoad_KeepsExistingConfig(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "logincheck")
	require.NoError(t, os.MkdirAll(configDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"), []byte("engine = rod\n"), 0o600))

	cfg, err := loadWithLocal(configDir, "")
	require.NoError(t, err)
	assert.Equal(t, "rod", cfg.Engine)

	data, err := os.ReadFile(filepath.Join(configDir, "config"))
	require.NoError(t, err)
	assert.Equal(t, "engine = rod\n", string(data), "existing config not overwritten")
}

func TestLoad_LocalOverridesGlobal(t *testing.T) {
	tmpDir := t.TempDir()
	globalDir := filepath.Join(tmpDir, "global")
	localDir := filepath.Join(tmpDir, ".logincheck")
	require.NoError(t, os.MkdirAll(globalDir, 0o700))
	require.NoError(t, os.MkdirAll(localDir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "config"),
		[]byte("base_url = https://global.example.com/\nrepeat = 3\ncolor_info = #010203\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(localDir, "config"),
		[]byte("base_url = http://localhost:8080/\ncolor_info = #0a0b0c\n"), 0o600))

	cfg, err := loadWithLocal(globalDir, localDir)
	require.NoError(t, err)
	assert.Equal(t, localDir, cfg.LocalDir())
	assert.Equal(t, "http://localhost:8080/", cfg.BaseURL)
	assert.Equal(t, 3, cfg.Repeat)
	assert.Equal(t, "10,11,12", cfg.Colors.Info)
}

func TestLoad_LocalDirWithoutConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	localDir := filepath.Join(tmpDir, ".logincheck")
	require.NoError(t, os.MkdirAll(localDir, 0o700))

	cfg, err := loadWithLocal(filepath.Join(tmpDir, "global"), localDir)
	require.NoError(t, err)
	assert.Equal(t, "playwright", cfg.Engine)
	assert.Equal(t, localDir, cfg.LocalDir())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "zero parallel", content: "parallel = 0", wantErr: "parallel must be at least 1"},
		{name: "zero repeat", content: "repeat = 0", wantErr: "repeat must be at least 1"},
		{name: "bad color", content: "color_fail = #zz0000", wantErr: "load colors"},
		{name: "bad int", content: "slow_mo_ms = fast", wantErr: "load values"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			configDir := filepath.Join(t.TempDir(), "logincheck")
			require.NoError(t, os.MkdirAll(configDir, 0o700))
			require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"), []byte(tc.content), 0o600))
			_, err := loadWithLocal(configDir, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{Values: Values{BaseURL: "u", AuthenticatedURL: "a", UsernameSelector: "#u", PasswordSelector: "#p",
			SubmitSelector: "#s", MarkerSelector: ".m", ErrorSelector: ".e", Parallel: 1, Repeat: 1}}
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.BaseURL = ""
	assert.EqualError(t, c.Validate(), "base_url is required")

	c = valid()
	c.ErrorSelector = ""
	assert.EqualError(t, c.Validate(), "error_selector is required")
}

func TestDefaultConfigDir(t *testing.T) {
	dir := DefaultConfigDir()
	assert.NotEmpty(t, dir)
	assert.Contains(t, dir, "logincheck")
}

func TestConfig_Target(t *testing.T) {
	cfg, err := loadWithLocal(filepath.Join(t.TempDir(), "logincheck"), "")
	require.NoError(t, err)
	assert.Equal(t, login.DefaultTarget(), cfg.Target(), "embedded defaults describe saucedemo")
}

func TestConfig_Durations(t *testing.T) {
	cfg := &Config{Values: Values{ActionTimeoutMs: 1500, ObserveTimeoutMs: 10000, CaseTimeoutMs: 0, SlowMoMs: 250}}
	assert.Equal(t, 1500*time.Millisecond, cfg.ActionTimeout())
	assert.Equal(t, 10*time.Second, cfg.ObserveTimeout())
	assert.Zero(t, cfg.CaseTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.SlowMo())
}

func TestConfig_NotifyParams(t *testing.T) {
	cfg := &Config{Values: Values{
		NotifyChannels: []string{"telegram", "email"}, NotifyOnError: true, NotifyTimeoutMs: 5000,
		NotifyTelegramToken: "tok", NotifyTelegramChat: "123", NotifySMTPHost: "smtp.example.com", NotifySMTPPort: 25,
		NotifyEmailFrom: "a@example.com", NotifyEmailTo: []string{"b@example.com"}, NotifyCustomScript: "/bin/notify.sh",
	}}
	p := cfg.NotifyParams()
	assert.Equal(t, []string{"telegram", "email"}, p.Channels)
	assert.True(t, p.OnError)
	assert.False(t, p.OnComplete)
	assert.Equal(t, 5000, p.TimeoutMs)
	assert.Equal(t, "tok", p.TelegramToken)
	assert.Equal(t, "123", p.TelegramChat)
	assert.Equal(t, "smtp.example.com", p.SMTPHost)
	assert.Equal(t, 25, p.SMTPPort)
	assert.Equal(t, []string{"b@example.com"}, p.EmailTo)
	assert.Equal(t, "/bin/notify.sh", p.CustomScript)
}
