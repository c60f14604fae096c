package commands

import (
	"context"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor"
	"confutils-worker/services/executor/powershell"
	"confutils-worker/services/executor/powershell/script"
	"confutils-worker/services/logging"
	"confutils-worker/services/native"
	"confutils-worker/services/shred"
	"confutils-worker/services/taskbar"
)

func (h *handlers) hostCommands() map[string]executor.CommandFunc {
	return map[string]executor.CommandFunc{
		"native.end_task.set": h.setEndTask,
		"native.end_task.get": h.getEndTask,
		"native.autostart":    h.autostart,
		"file.shred":          h.shredFile,
		"net.online":          h.online,
		"taskbar.set":         h.setTaskbar,
		"taskbar.apply":       h.applyTaskbar,
	}
}

func (h *handlers) setEndTask(ctx context.Context, args executor.Args) (string, error) {
	enable, err := args.Bool("enabled")
	if err != nil {
		return "", err
	}
	if err = h.Registry.SetEndTask(enable); err != nil {
		return "", err
	}
	if _, err = h.Shell.Run(ctx, native.RestartExplorerScript, powershell.Options{SkipRateLimit: true}); err != nil {
		logging.Context(ctx).Warnw("explorer restart failed", "error", err)
	}
	if enable {
		return "Enabled", nil
	}
	return "Disabled", nil
}

func (h *handlers) getEndTask(_ context.Context, _ executor.Args) (string, error) {
	on, err := h.Registry.EndTask()
	if err != nil {
		return "", err
	}
	return boolString(on), nil
}

// autostart 优先写注册表，不支持时退回脚本
func (h *handlers) autostart(ctx context.Context, args executor.Args) (string, error) {
	enabled, err := args.Bool("enabled")
	if err != nil {
		return "", err
	}
	if enabled && h.Executable == "" {
		return "", errs.Failed("executable path unknown")
	}
	if h.Registry.Supported() {
		if err = h.Registry.SetAutostart(script.AutostartName, h.Executable, enabled); err != nil {
			return "", err
		}
		if enabled {
			return "Autostart enabled", nil
		}
		return "Autostart disabled", nil
	}
	s, err := script.Autostart(h.Executable, enabled)
	if err != nil {
		return "", err
	}
	return h.run(ctx, s)
}

func (h *handlers) shredFile(ctx context.Context, args executor.Args) (string, error) {
	path, err := args.String("path")
	if err != nil {
		return "", err
	}
	valid, err := h.FilePolicy.Validate(path)
	if err != nil {
		return "", err
	}
	if err = shred.File(ctx, valid); err != nil {
		return "", err
	}
	return "File securely deleted", nil
}

func (h *handlers) online(ctx context.Context, _ executor.Args) (string, error) {
	if h.Prober == nil {
		return "", errs.Failed("online probe not configured")
	}
	return boolString(h.Prober.Online(ctx)), nil
}

func (h *handlers) setTaskbar(ctx context.Context, args executor.Args) (string, error) {
	if h.Taskbar == nil {
		return "", errs.Failed("taskbar support not configured")
	}
	mode, err := args.String("mode")
	if err != nil {
		return "", err
	}
	opacity, err := args.Uint32("opacity")
	if err != nil {
		return "", err
	}
	c := taskbar.Config{Mode: mode, Color: args.OptString("color", "#000000"), Opacity: int(opacity)}
	if err = h.Taskbar.Set(ctx, h.TaskbarConfigPath, c); err != nil {
		return "", err
	}
	return "Taskbar appearance applied", nil
}

func (h *handlers) applyTaskbar(ctx context.Context, _ executor.Args) (string, error) {
	if h.Taskbar == nil {
		return "", errs.Failed("taskbar support not configured")
	}
	if err := h.Taskbar.ApplyFromConfig(ctx, h.TaskbarConfigPath); err != nil {
		return "", err
	}
	return "Taskbar appearance applied", nil
}
