package taskbar

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"confutils-worker/services/errs"
)

const settingsSchema = "https://TranslucentTB.github.io/settings.schema.json"

// Appearance 单个状态的外观
type Appearance struct {
	Enabled    *bool   `json:"enabled,omitempty"`
	Accent     string  `json:"accent,omitempty"`
	Color      string  `json:"color,omitempty"`
	ShowPeek   *bool   `json:"show_peek,omitempty"`
	ShowLine   *bool   `json:"show_line,omitempty"`
	BlurRadius float64 `json:"blur_radius,omitempty"`
}

// Settings TranslucentTB settings.json
type Settings struct {
	Schema          string     `json:"$schema"`
	Desktop         Appearance `json:"desktop_appearance"`
	VisibleWindow   Appearance `json:"visible_window_appearance"`
	MaximizedWindow Appearance `json:"maximized_window_appearance"`
	StartOpened     Appearance `json:"start_opened_appearance"`
	SearchOpened    Appearance `json:"search_opened_appearance"`
	TaskViewOpened  Appearance `json:"task_view_opened_appearance"`
	BatterySaver    Appearance `json:"battery_saver_appearance"`
}

func boolPtr(v bool) *bool { return &v }

// NewSettings 所有窗口状态使用同一外观，其余状态关闭
func NewSettings(c Config) Settings {
	base := Appearance{
		Accent:     Accent(c.Mode),
		Color:      RGBA(c.Color, c.Opacity),
		ShowPeek:   boolPtr(true),
		ShowLine:   boolPtr(true),
		BlurRadius: 9,
	}
	enabled := base
	enabled.Enabled = boolPtr(true)
	off := Appearance{Enabled: boolPtr(false)}
	return Settings{
		Schema:          settingsSchema,
		Desktop:         base,
		VisibleWindow:   enabled,
		MaximizedWindow: enabled,
		StartOpened:     off,
		SearchOpened:    off,
		TaskViewOpened:  off,
		BatterySaver:    off,
	}
}

// WriteSettings 写入 settings.json
func WriteSettings(path string, c Config) error {
	raw, err := json.MarshalIndent(NewSettings(c), "", "  ")
	if err != nil {
		return errs.Wrap(errs.Generic, err, "cannot encode settings.json")
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.Wrap(errs.Generic, err, "failed to create settings directory")
	}
	if err = os.WriteFile(path, raw, 0o644); err != nil {
		return errs.Wrap(errs.Generic, err, "failed to write settings.json")
	}
	return nil
}

// Installation 找到的 TranslucentTB
type Installation struct {
	// Family 商店版的包名，独立安装时为空
	Family   string
	Exe      string
	Settings string
}

// Locate 先找商店版，再找独立安装版
func Locate(getenv func(string) string) (Installation, bool) {
	if local := getenv("LOCALAPPDATA"); local != "" {
		packages := filepath.Join(local, "Packages")
		if entries, err := os.ReadDir(packages); err == nil {
			for _, entry := range entries {
				if !strings.Contains(strings.ToLower(entry.Name()), "translucenttb") {
					continue
				}
				roaming := filepath.Join(packages, entry.Name(), "RoamingState")
				if isDir(roaming) {
					return Installation{Family: entry.Name(), Settings: filepath.Join(roaming, "settings.json")}, true
				}
			}
		}
	}

	var candidates []string
	if local := getenv("LOCALAPPDATA"); local != "" {
		candidates = append(candidates, filepath.Join(local, "Programs", "TranslucentTB", "TranslucentTB.exe"))
	}
	for _, env := range []string{"ProgramFiles", "ProgramFiles(x86)"} {
		if dir := getenv(env); dir != "" {
			candidates = append(candidates, filepath.Join(dir, "TranslucentTB", "TranslucentTB.exe"))
		}
	}
	for _, exe := range candidates {
		if _, err := os.Stat(exe); err == nil {
			return Installation{Exe: exe, Settings: filepath.Join(filepath.Dir(exe), "settings.json")}, true
		}
	}
	return Installation{}, false
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// startProcess 脱离调用方启动常驻进程，请求结束后进程继续运行，测试时替换
var startProcess = func(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// Launch 启动 TranslucentTB 以重新读取配置
func (i Installation) Launch() error {
	if i.Family != "" {
		return startProcess("explorer.exe", `shell:AppsFolder\`+i.Family+"!TranslucentTB")
	}
	return startProcess(i.Exe)
}
