package security

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor/powershell/config"
	"confutils-worker/services/logging"
	"confutils-worker/services/security"
)

// validator PowerShell 脚本验证器实现
type validator struct {
	configPath string
	config     config.SecurityConfig
	mu         sync.RWMutex
}

// NewValidator 从配置文件创建验证器
func NewValidator(configPath string) (security.CommandValidator, error) {
	v := &validator{configPath: configPath}
	if err := v.Reload(); err != nil {
		return nil, fmt.Errorf("failed to load security config: %w", err)
	}
	return v, nil
}

// NewValidatorFromConfig 使用已加载的配置创建验证器
func NewValidatorFromConfig(c config.SecurityConfig) security.CommandValidator {
	return &validator{config: c}
}

// IsEnabled 检查验证器是否启用
func (v *validator) IsEnabled() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.config.ValidationEnabled()
}

// Reload 重新加载配置
func (v *validator) Reload() error {
	if v.configPath == "" {
		return nil
	}
	c, err := config.Load(v.configPath)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.config = c.Security
	v.mu.Unlock()

	return nil
}

// ValidateCommand 验证脚本是否允许执行
func (v *validator) ValidateCommand(ctx context.Context, command string) *security.ValidationResult {
	if !v.IsEnabled() {
		return &security.ValidationResult{
			Valid:             true,
			NormalizedCommand: command,
		}
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if strings.TrimSpace(command) == "" {
		return &security.ValidationResult{
			Valid:  false,
			Reason: "empty command",
			Kind:   errs.InvalidInput,
		}
	}

	if err := CheckScript(command, v.config.MaxScriptLength); err != nil {
		reason := err.Error()
		if v.config.Logging.LogDeniedCommands {
			logging.Context(ctx).Warnw("command denied", "reason", reason, "length", len(command))
		}
		return &security.ValidationResult{
			Valid:  false,
			Reason: reason,
			Kind:   errs.KindOf(err),
		}
	}

	if v.config.Logging.LogAllowedCommands {
		logging.Context(ctx).Infow("command allowed", "command", command)
	}

	return &security.ValidationResult{
		Valid:             true,
		NormalizedCommand: command,
	}
}
