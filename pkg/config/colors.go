package config

import (
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// ColorConfig holds output colors as "r,g,b" strings.
type ColorConfig struct {
	Pass      string
	Fail      string
	Error     string
	Warn      string
	Info      string
	Timestamp string
}

type colorKey struct {
	name  string
	field *string
}

func (c *ColorConfig) keys() []colorKey {
	return []colorKey{
		{"color_pass", &c.Pass},
		{"color_fail", &c.Fail},
		{"color_error", &c.Error},
		{"color_warn", &c.Warn},
		{"color_info", &c.Info},
		{"color_timestamp", &c.Timestamp},
	}
}

// colorLoader reads color_* keys from every config layer.
type colorLoader struct {
	embedFS embed.FS
}

func newColorLoader(embedFS embed.FS) *colorLoader {
	return &colorLoader{embedFS: embedFS}
}

// Load applies embedded, global and local color keys in that order, so a key set
// in a later layer replaces the earlier value and an absent key keeps it.
func (cl *colorLoader) Load(localConfigPath, globalConfigPath string) (ColorConfig, error) {
	layers, err := readLayers(cl.embedFS, globalConfigPath, localConfigPath)
	if err != nil {
		return ColorConfig{}, err
	}
	var res ColorConfig
	for _, l := range layers {
		if err := res.apply(l.data); err != nil {
			return ColorConfig{}, fmt.Errorf("%s: %w", l.name, err)
		}
	}
	return res, nil
}

// apply overwrites the fields whose keys are set in data.
func (c *ColorConfig) apply(data []byte) error {
	f, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	sec := f.Section("")
	for _, k := range c.keys() {
		if !sec.HasKey(k.name) {
			continue
		}
		val := strings.TrimSpace(sec.Key(k.name).String())
		if val == "" {
			continue
		}
		rgb, err := hexToRGB(val)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", k.name, err)
		}
		*k.field = rgb
	}
	return nil
}

// hexToRGB converts "#rrggbb" to "r,g,b".
func hexToRGB(s string) (string, error) {
	if !strings.HasPrefix(s, "#") {
		return "", errors.New("hex color must start with #")
	}
	if len(s) != 7 {
		return "", errors.New("hex color must be 7 characters, like #ff0000")
	}
	b, err := hex.DecodeString(s[1:])
	if err != nil {
		return "", fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return fmt.Sprintf("%d,%d,%d", b[0], b[1], b[2]), nil
}
