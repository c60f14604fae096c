// Package taskbar 保存任务栏外观设置并通过 TranslucentTB 应用
package taskbar

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"confutils-worker/services/errs"
)

// Modes 支持的外观模式
var Modes = []string{"opaque", "transparent", "blur", "acrylic", "normal"}

// Config 持久化的任务栏外观
type Config struct {
	Mode    string `json:"mode"`
	Color   string `json:"color"`
	Opacity int    `json:"opacity"`
}

// Validate 模式必须受支持，不透明度 0-100
func (c Config) Validate() error {
	known := false
	for _, m := range Modes {
		if c.Mode == m {
			known = true
			break
		}
	}
	if !known {
		return errs.Invalid("unknown taskbar mode %q", c.Mode)
	}
	if c.Opacity < 0 || c.Opacity > 100 {
		return errs.Invalid("opacity must be between 0 and 100")
	}
	return nil
}

// DefaultPath %LOCALAPPDATA%\ConfUtils\taskbar.json
func DefaultPath(getenv func(string) string) (string, error) {
	local := getenv("LOCALAPPDATA")
	if local == "" {
		return "", errs.Failed("LOCALAPPDATA not set")
	}
	return filepath.Join(local, "ConfUtils", "taskbar.json"), nil
}

// Load 读取配置文件
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, errs.Failed("taskbar config not found at %s", path)
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.Generic, err, "cannot read taskbar config")
	}
	var c Config
	if err = json.Unmarshal(raw, &c); err != nil {
		return Config{}, errs.Wrap(errs.Generic, err, "invalid taskbar config")
	}
	return c, nil
}

// Save 写入配置文件，目录不存在时创建
func Save(path string, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errs.Wrap(errs.Generic, err, "cannot encode taskbar config")
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Generic, err, "cannot create taskbar config directory")
	}
	if err = os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrap(errs.Generic, err, "cannot write taskbar config")
	}
	return nil
}
