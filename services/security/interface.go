package security

import (
	"context"

	"confutils-worker/services/errs"
)

// ValidationResult 验证结果
type ValidationResult struct {
	// 是否通过验证
	Valid bool
	// 验证失败原因
	Reason string
	// 失败分类（InvalidInput / SecurityViolation）
	Kind errs.Kind
	// 验证通过后的命令，原样传给解释器
	NormalizedCommand string
}

// Err 将失败结果转换为分类错误
func (r *ValidationResult) Err() error {
	if r == nil || r.Valid {
		return nil
	}
	return errs.New(r.Kind, "command not allowed: %s", r.Reason)
}

// CommandValidator 命令验证器接口
type CommandValidator interface {
	// ValidateCommand 验证脚本是否允许执行
	ValidateCommand(ctx context.Context, command string) *ValidationResult

	// IsEnabled 检查验证器是否启用
	IsEnabled() bool

	// Reload 重新加载配置
	Reload() error
}
