// Package commands 把全部操作注册到执行器工厂
package commands

import (
	"context"
	"encoding/json"
	"strconv"

	"confutils-worker/services/discord"
	"confutils-worker/services/errs"
	"confutils-worker/services/executor"
	"confutils-worker/services/executor/powershell"
	"confutils-worker/services/executor/powershell/script"
	"confutils-worker/services/jobs"
	"confutils-worker/services/native"
	"confutils-worker/services/security"
	"confutils-worker/services/taskbar"
)

// Runner 执行 PowerShell 脚本
type Runner interface {
	Run(ctx context.Context, script string, opts powershell.Options) (string, error)
}

// Discord 令牌相关操作
type Discord interface {
	ResolveAuth(ctx context.Context, token string) (discord.Auth, error)
	CheckToken(ctx context.Context, token string) (string, error)
	TokenInfo(ctx context.Context, token string) (string, error)
}

// Prober 在线检测
type Prober interface {
	Online(ctx context.Context) bool
}

// Taskbar 任务栏外观
type Taskbar interface {
	Set(ctx context.Context, path string, c taskbar.Config) error
	ApplyFromConfig(ctx context.Context, path string) error
}

// Registry 原生注册表开关
type Registry interface {
	Supported() bool
	SetEndTask(enable bool) error
	EndTask() (bool, error)
	SetAutostart(name, exe string, enabled bool) error
}

// Deps 操作依赖的组件
type Deps struct {
	Shell      Runner
	Jobs       *jobs.Manager
	Discord    Discord
	Prober     Prober
	Taskbar    Taskbar
	Registry   Registry
	FilePolicy security.FilePolicy
	// Validator 执行器使用的脚本验证器，供 security.reload 重新加载
	Validator security.CommandValidator
	// TaskbarConfigPath 为空时使用 %LOCALAPPDATA%\ConfUtils\taskbar.json
	TaskbarConfigPath string
	// Executable 自启动项指向的程序
	Executable string
}

type nativeRegistry struct{}

func (nativeRegistry) Supported() bool                         { return native.Supported() }
func (nativeRegistry) SetEndTask(enable bool) error            { return native.SetEndTask(enable) }
func (nativeRegistry) EndTask() (bool, error)                  { return native.EndTask() }
func (nativeRegistry) SetAutostart(n, e string, on bool) error { return native.SetAutostart(n, e, on) }

// NativeRegistry 当前平台的注册表实现
func NativeRegistry() Registry { return nativeRegistry{} }

// Install 注册全部操作
func Install(f executor.Factory, d Deps) {
	if d.Jobs == nil {
		d.Jobs = jobs.NewManager()
	}
	if d.Registry == nil {
		d.Registry = NativeRegistry()
	}
	if len(d.FilePolicy.Roots) == 0 {
		d.FilePolicy = security.DefaultFilePolicy()
	}
	h := &handlers{Deps: d}

	for name, fn := range h.shellCommands() {
		register(f, name, fn)
	}
	for name, fn := range h.hostCommands() {
		register(f, name, fn)
	}
	for name, fn := range h.discordCommands() {
		register(f, name, fn)
	}
	for name, fn := range h.jobCommands() {
		register(f, name, fn)
	}
	for name, fn := range h.securityCommands() {
		register(f, name, fn)
	}
}

func register(f executor.Factory, name string, fn executor.CommandFunc) {
	f.RegisterExecutor(name, func() executor.Command { return fn })
}

type handlers struct {
	Deps
}

// run 执行脚本并按输出形态整理结果
func (h *handlers) run(ctx context.Context, s script.Script) (string, error) {
	out, err := h.Shell.Run(ctx, s.Text, powershell.Options{SkipRateLimit: s.SkipRateLimit})
	if err != nil {
		return "", err
	}
	switch s.Shape {
	case script.List:
		return powershell.NormalizeList(ctx, out), nil
	case script.Object:
		return powershell.NormalizeObject(ctx, out), nil
	}
	return out, nil
}

func boolString(v bool) string {
	return strconv.FormatBool(v)
}

func toJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", errs.Wrap(errs.Generic, err, "cannot encode result")
	}
	return string(raw), nil
}
