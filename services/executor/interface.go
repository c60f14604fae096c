package executor

import (
	"context"
)

// Command 可由 GUI 调度的一个操作
type Command interface {
	// Execute 执行操作，返回给 GUI 的单个字符串
	Execute(ctx context.Context, args Args) (string, error)
}

// CommandFunc 函数适配为 Command
type CommandFunc func(ctx context.Context, args Args) (string, error)

func (f CommandFunc) Execute(ctx context.Context, args Args) (string, error) {
	return f(ctx, args)
}

// Creator 执行器创建函数类型
type Creator func() Command

// Factory 执行器工厂接口
type Factory interface {
	// CreateExecutor 创建指定名称的操作
	CreateExecutor(name string) (Command, error)

	// SupportedMethods 返回支持的操作名称列表（已排序）
	SupportedMethods() []string

	// RegisterExecutor 注册操作创建函数
	RegisterExecutor(name string, creator Creator)

	// IsSupported 查看操作创建函数是否存在
	IsSupported(name string) bool
}
