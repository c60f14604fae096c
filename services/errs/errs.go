package errs

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind 错误分类
type Kind int

const (
	// Generic 下游不透明错误，消息原样透传
	Generic Kind = iota
	// InvalidInput 参数格式错误，调用方可修正
	InvalidInput
	// SecurityViolation 输入被策略拒绝
	SecurityViolation
	// RateLimitExceeded 频率超限，稍后可重试
	RateLimitExceeded
	// PermissionDenied 需要管理员权限
	PermissionDenied
	// AuthExhausted 没有可用的 Discord 凭证
	AuthExhausted
	// CancellationRequested 用户取消了长时间运行的操作
	CancellationRequested
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case SecurityViolation:
		return "SecurityViolation"
	case RateLimitExceeded:
		return "RateLimitExceeded"
	case PermissionDenied:
		return "PermissionDenied"
	case AuthExhausted:
		return "AuthExhausted"
	case CancellationRequested:
		return "CancellationRequested"
	default:
		return "Generic"
	}
}

// Error 带分类的错误
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New 创建指定分类的错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装下游错误并指定分类
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Invalid(format string, args ...any) *Error  { return New(InvalidInput, format, args...) }
func Security(format string, args ...any) *Error { return New(SecurityViolation, format, args...) }
func Denied(format string, args ...any) *Error   { return New(PermissionDenied, format, args...) }
func Failed(format string, args ...any) *Error   { return New(Generic, format, args...) }

// Cancelled 操作在迭代边界被取消
func Cancelled(operation string) *Error {
	return &Error{Kind: CancellationRequested, Message: operation + " cancelled", Err: context.Canceled}
}

// KindOf 返回错误分类，非本包错误视为 Generic
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.Canceled) {
		return CancellationRequested
	}
	return Generic
}

// Is 判断错误是否属于指定分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ToStatus 转换为 gRPC 状态错误
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !errors.As(err, &e) {
		if _, ok := status.FromError(err); ok {
			return err
		}
	}

	var code codes.Code
	switch KindOf(err) {
	case InvalidInput:
		code = codes.InvalidArgument
	case SecurityViolation:
		code = codes.FailedPrecondition
	case RateLimitExceeded:
		code = codes.ResourceExhausted
	case PermissionDenied:
		code = codes.PermissionDenied
	case AuthExhausted:
		code = codes.Unauthenticated
	case CancellationRequested:
		code = codes.Canceled
	default:
		code = codes.Unknown
	}
	return status.Error(code, err.Error())
}
