// Package powershell 运行 PowerShell 脚本并把结果整理成单个字符串
package powershell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bpcoder16/Chestnut/v2/core/gtask"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor/powershell/config"
	pssecurity "confutils-worker/services/executor/powershell/security"
	"confutils-worker/services/logging"
	"confutils-worker/services/ratelimit"
	"confutils-worker/services/security"
)

// 测试时替换为 helper process
var execCommandContext = exec.CommandContext

// Options 单次执行选项
type Options struct {
	// SkipRateLimit 内部调用不计入限流
	SkipRateLimit bool
	// SkipSanitize 受信任的内置脚本，跳过危险字符检查
	SkipSanitize bool
}

// Executor PowerShell 脚本执行器
type Executor struct {
	shell     config.ShellExecutorConfig
	validator security.CommandValidator
	limiter   ratelimit.Limiter
	rule      config.RateLimitRule
}

// Option 执行器选项
type Option func(*Executor)

// WithValidator 设置脚本验证器
func WithValidator(v security.CommandValidator) Option {
	return func(e *Executor) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithLimiter 设置限流器与 powershell_command 规则
func WithLimiter(l ratelimit.Limiter, rule config.RateLimitRule) Option {
	return func(e *Executor) {
		e.limiter = l
		e.rule = rule
	}
}

// New 创建执行器，默认启用脚本检查
func New(shell config.ShellExecutorConfig, opts ...Option) *Executor {
	e := &Executor{
		shell:     shell,
		validator: pssecurity.NewValidatorFromConfig(config.SecurityConfig{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig 按完整配置创建执行器，限流器由调用方根据 backend 构造，opts 在默认项之后生效
func NewFromConfig(c config.Config, limiter ratelimit.Limiter, opts ...Option) *Executor {
	base := []Option{
		WithValidator(pssecurity.NewValidatorFromConfig(c.Security)),
		WithLimiter(limiter, c.RateLimit.Rule(config.PowerShellKey)),
	}
	return New(c.Shell, append(base, opts...)...)
}

// Run 执行脚本：检查 -> 限流 -> 启动进程
func (e *Executor) Run(ctx context.Context, script string, opts Options) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", errs.Invalid("empty command")
	}

	if !opts.SkipSanitize {
		result := e.validator.ValidateCommand(ctx, script)
		if !result.Valid {
			return "", result.Err()
		}
		if result.NormalizedCommand != "" {
			script = result.NormalizedCommand
		}
	}

	if !opts.SkipRateLimit && e.limiter != nil {
		if err := e.limiter.Check(ctx, config.PowerShellKey, e.rule.MaxRequests, e.rule.Window()); err != nil {
			logging.Context(ctx).Warnw("powershell rate limited", "error", err)
			return "", err
		}
	}

	return e.spawn(ctx, script)
}

func (e *Executor) spawn(ctx context.Context, script string) (string, error) {
	runCtx := ctx
	if timeout := e.shell.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.shell.Args...), script)
	cmd := execCommandContext(runCtx, e.shell.Command, args...)
	cmd.Env = mergeEnv(os.Environ(), e.shell.Env)
	configureProcess(cmd)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", errs.Wrap(errs.Generic, err, "failed to get stdout pipe")
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", errs.Wrap(errs.Generic, err, "failed to get stderr pipe")
	}

	started := time.Now()
	if err = cmd.Start(); err != nil {
		return "", errs.Wrap(errs.Generic, err, "failed to execute powershell")
	}

	var stdout, stderr bytes.Buffer
	g, _ := gtask.WithContext(runCtx)
	g.Go(func() error {
		_, errC := io.Copy(&stdout, stdoutPipe)
		return errC
	})
	g.Go(func() error {
		_, errC := io.Copy(&stderr, stderrPipe)
		return errC
	})
	readErr := g.Wait()
	waitErr := cmd.Wait()

	logging.Context(ctx).Debugw("powershell finished",
		"elapsed", time.Since(started).String(),
		"stdoutBytes", stdout.Len(),
		"stderrBytes", stderr.Len(),
	)

	if errors.Is(ctx.Err(), context.Canceled) {
		return "", errs.Cancelled("powershell command")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", errs.Failed("powershell command timed out")
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "", errs.Failed("powershell command timed out after %s", e.shell.Timeout())
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return "", classify(stdout.String(), stderr.String())
		}
		return "", errs.Wrap(errs.Generic, waitErr, "failed to execute powershell")
	}
	if readErr != nil && !errors.Is(readErr, os.ErrClosed) {
		logging.Context(ctx).Warnw("powershell output read failed", "error", readErr)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// mergeEnv 在继承的环境变量上覆盖固定项
func mergeEnv(base []string, forced map[string]string) []string {
	if len(forced) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(forced))
	for _, kv := range base {
		name, _, _ := strings.Cut(kv, "=")
		if _, ok := lookupFold(forced, name); ok {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range forced {
		out = append(out, k+"="+v)
	}
	return out
}

func lookupFold(m map[string]string, key string) (string, bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}
