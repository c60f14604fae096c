package executor

import (
	"fmt"
	"math"
	"strconv"

	"confutils-worker/services/errs"
)

// Args 操作参数，来自 GUI 的 JSON 对象
type Args map[string]any

// String 读取必填字符串参数
func (a Args) String(key string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return "", errs.Invalid("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", errs.Invalid("argument %q must be a string", key)
	}
	return s, nil
}

// OptString 读取可选字符串参数
func (a Args) OptString(key, def string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	return def
}

// Bool 读取必填布尔参数
func (a Args) Bool(key string) (bool, error) {
	switch v := a[key].(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, errs.Invalid("argument %q must be a boolean", key)
		}
		return b, nil
	case nil:
		return false, errs.Invalid("missing argument %q", key)
	default:
		return false, errs.Invalid("argument %q must be a boolean", key)
	}
}

// Uint32 读取非负整数参数，JSON 数字按 float64 解码
func (a Args) Uint32(key string) (uint32, error) {
	var f float64
	switch v := a[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint32:
		return v, nil
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, errs.Invalid("argument %q must be an unsigned integer", key)
		}
		return uint32(n), nil
	case nil:
		return 0, errs.Invalid("missing argument %q", key)
	default:
		return 0, errs.Invalid("argument %q has unsupported type %T", key, v)
	}
	if f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
		return 0, errs.Invalid("argument %q out of range: %v", key, f)
	}
	return uint32(f), nil
}

// Strings 读取字符串数组参数
func (a Args) Strings(key string) ([]string, error) {
	raw, ok := a[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		if ss, ok := raw.([]string); ok {
			return ss, nil
		}
		return nil, errs.Invalid("argument %q must be a list", key)
	}
	out := make([]string, 0, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, errs.Invalid("argument %q[%d] must be a string", key, i)
		}
		out = append(out, s)
	}
	return out, nil
}

func (a Args) GoString() string {
	return fmt.Sprintf("executor.Args(%d keys)", len(a))
}
