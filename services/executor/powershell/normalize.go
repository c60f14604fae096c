package powershell

import (
	"context"
	"encoding/json"
	"strings"

	"confutils-worker/services/logging"
)

const emptyList = "[]"

// NormalizeList 把 ConvertTo-Json 的输出整理为 JSON 数组文本
func NormalizeList(ctx context.Context, out string) string {
	return normalize(ctx, out, emptyList, "[")
}

// NormalizeObject 同 NormalizeList，另外放行以 { 开头的文本
func NormalizeObject(ctx context.Context, out string) string {
	return normalize(ctx, out, emptyList, "[", "{")
}

func normalize(ctx context.Context, out, empty string, passPrefixes ...string) string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" || trimmed == "null" {
		logging.Context(ctx).Debugw("powershell returned no data")
		return empty
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed
	}
	for _, p := range passPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return trimmed
		}
	}
	logging.Context(ctx).Warnw("unexpected powershell output, substituting empty result",
		"sample", sample(trimmed, 120))
	return empty
}

func sample(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
