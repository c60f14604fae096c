// Package logging 提供基于 zap 的上下文日志，调用方式与 Chestnut logit 保持一致：
// logging.Context(ctx).WarnW 换成 logging.Context(ctx).Warnw。
package logging

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

type ctxKey struct{}

var base atomic.Pointer[zap.SugaredLogger]

func init() {
	base.Store(zap.NewNop().Sugar())
}

// SetLogger 替换全局 logger，nil 时恢复为 no-op
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base.Store(l.Sugar())
}

// WithRequestID 在 ctx 中记录请求 ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID 读取 ctx 中的请求 ID
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Context 返回带请求 ID 的 logger
func Context(ctx context.Context) *zap.SugaredLogger {
	l := base.Load()
	if id := RequestID(ctx); id != "" {
		return l.With("requestID", id)
	}
	return l
}
