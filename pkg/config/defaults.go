package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed defaults/config
var defaultsFS embed.FS

const defaultsPath = "defaults/config"

// DefaultsFS returns the embedded defaults filesystem.
func DefaultsFS() embed.FS { return defaultsFS }

// installDefaults writes the embedded template to <configDir>/config.
// an existing file is left alone, O_EXCL makes the check and the create one step.
func installDefaults(fsys embed.FS, configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := fsys.ReadFile(defaultsPath)
	if err != nil {
		return fmt.Errorf("read embedded config: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(configDir, "config"), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) //nolint:gosec // fixed name
	if errors.Is(err, fs.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}

// layer is the raw content of one config source.
type layer struct {
	name string
	data []byte
}

// readLayers returns the embedded defaults followed by every existing file in
// paths, lowest priority first. empty paths and missing files are skipped.
func readLayers(fsys embed.FS, paths ...string) ([]layer, error) {
	data, err := fsys.ReadFile(defaultsPath)
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	res := []layer{{name: "embedded defaults", data: data}}

	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p) //nolint:gosec // config paths are built by Load
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
		res = append(res, layer{name: p, data: data})
	}
	return res, nil
}
