package taskbar

import (
	"context"
	"os"

	"confutils-worker/services/errs"
	"confutils-worker/services/logging"
)

// Applier 写入 TranslucentTB 设置并启动它
type Applier struct {
	Getenv func(string) string
}

// NewApplier 使用进程环境变量
func NewApplier() *Applier {
	return &Applier{Getenv: os.Getenv}
}

// Apply 应用外观；未安装 TranslucentTB 时返回错误
func (a *Applier) Apply(ctx context.Context, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	inst, ok := Locate(a.Getenv)
	if !ok {
		return errs.Failed("TranslucentTB is not installed, please install it first")
	}
	if err := WriteSettings(inst.Settings, c); err != nil {
		return err
	}
	if err := inst.Launch(); err != nil {
		logging.Context(ctx).Warnw("failed to launch TranslucentTB", "error", err)
	}
	logging.Context(ctx).Infow("taskbar appearance applied", "mode", c.Mode, "settings", inst.Settings)
	return nil
}

// Set 保存配置后应用
func (a *Applier) Set(ctx context.Context, path string, c Config) error {
	if path == "" {
		p, err := DefaultPath(a.Getenv)
		if err != nil {
			return err
		}
		path = p
	}
	if err := Save(path, c); err != nil {
		return err
	}
	return a.Apply(ctx, c)
}

// ApplyFromConfig 读取已保存的配置并应用，path 为空时使用默认位置
func (a *Applier) ApplyFromConfig(ctx context.Context, path string) error {
	if path == "" {
		p, err := DefaultPath(a.Getenv)
		if err != nil {
			return err
		}
		path = p
	}
	c, err := Load(path)
	if err != nil {
		return err
	}
	return a.Apply(ctx, c)
}
