// Package config loads logincheck settings from INI files.
// lookup order is ./.logincheck/config, then <config dir>/config, then the embedded defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/umputun/logincheck/pkg/login"
	"github.com/umputun/logincheck/pkg/notify"
)

const localDirName = ".logincheck"

// Config is the merged configuration.
type Config struct {
	Values
	Colors ColorConfig

	configDir string
	localDir  string
}

// Load reads configuration from configDir (empty means DefaultConfigDir) and from
// ./.logincheck in the current directory if present. the global config file is
// installed from the embedded defaults on first run.
func Load(configDir string) (*Config, error) {
	local := ""
	if wd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(wd, localDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			local = candidate
		}
	}
	return loadWithLocal(configDir, local)
}

func loadWithLocal(configDir, localDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	if err := installDefaults(defaultsFS, configDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	globalPath := filepath.Join(configDir, "config")
	localPath := ""
	if localDir != "" {
		localPath = filepath.Join(localDir, "config")
	}

	values, err := newValuesLoader(defaultsFS).Load(localPath, globalPath)
	if err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}
	colors, err := newColorLoader(defaultsFS).Load(localPath, globalPath)
	if err != nil {
		return nil, fmt.Errorf("load colors: %w", err)
	}

	cfg := &Config{Values: values, Colors: colors, configDir: configDir, localDir: localDir}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigDir returns ~/.config/logincheck, falling back to a relative path
// when the home directory is unknown.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "logincheck")
	}
	return filepath.Join(".config", "logincheck")
}

// ConfigDir returns the global config directory in use.
func (c *Config) ConfigDir() string { return c.configDir }

// LocalDir returns the project-local config directory, empty if none was found.
func (c *Config) LocalDir() string { return c.localDir }

// Validate checks cross-field constraints the parser can't.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("base_url is required")
	case c.AuthenticatedURL == "":
		return errors.New("authenticated_url is required")
	case c.Parallel < 1:
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	case c.Repeat < 1:
		return fmt.Errorf("repeat must be at least 1, got %d", c.Repeat)
	}
	for _, s := range []struct{ key, val string }{
		{"username_selector", c.UsernameSelector},
		{"password_selector", c.PasswordSelector},
		{"submit_selector", c.SubmitSelector},
		{"marker_selector", c.MarkerSelector},
		{"error_selector", c.ErrorSelector},
	} {
		if s.val == "" {
			return fmt.Errorf("%s is required", s.key)
		}
	}
	return nil
}

// Target builds the login target from the configured urls and selectors.
func (c *Config) Target() login.Target {
	return login.Target{
		LoginURL:         c.BaseURL,
		AuthenticatedURL: c.AuthenticatedURL,
		Selectors: login.Selectors{
			Username: c.UsernameSelector,
			Password: c.PasswordSelector,
			Submit:   c.SubmitSelector,
			Marker:   c.MarkerSelector,
			Error:    c.ErrorSelector,
		},
	}
}

// ActionTimeout returns the per-step browser timeout.
func (c *Config) ActionTimeout() time.Duration { return ms(c.ActionTimeoutMs) }

// ObserveTimeout returns the post-submit wait.
func (c *Config) ObserveTimeout() time.Duration { return ms(c.ObserveTimeoutMs) }

// CaseTimeout returns the budget for one login attempt. zero means no limit.
func (c *Config) CaseTimeout() time.Duration { return ms(c.CaseTimeoutMs) }

// SlowMo returns the delay between browser actions.
func (c *Config) SlowMo() time.Duration { return ms(c.SlowMoMs) }

// NotifyParams maps notify_* values to notification parameters.
func (c *Config) NotifyParams() notify.Params {
	return notify.Params{
		Channels:      c.NotifyChannels,
		OnError:       c.NotifyOnError,
		OnComplete:    c.NotifyOnComplete,
		TimeoutMs:     c.NotifyTimeoutMs,
		TelegramToken: c.NotifyTelegramToken,
		TelegramChat:  c.NotifyTelegramChat,
		SlackToken:    c.NotifySlackToken,
		SlackChannel:  c.NotifySlackChannel,
		SMTPHost:      c.NotifySMTPHost,
		SMTPPort:      c.NotifySMTPPort,
		SMTPUsername:  c.NotifySMTPUsername,
		SMTPPassword:  c.NotifySMTPPassword,
		SMTPStartTLS:  c.NotifySMTPStartTLS,
		EmailFrom:     c.NotifyEmailFrom,
		EmailTo:       c.NotifyEmailTo,
		WebhookURLs:   c.NotifyWebhookURLs,
		CustomScript:  c.NotifyCustomScript,
	}
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
