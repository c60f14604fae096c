package powershell

import (
	"strings"

	"confutils-worker/services/errs"
)

// PowerShell 错误输出中的定位与分类行
var diagnosticPrefixes = []string{"At line:", "+", "CategoryInfo", "FullyQualifiedErrorId"}

var permissionMarkers = []string{"Access is denied", "UnauthorizedAccessException"}

// CleanMessage 去掉诊断行；全部被去掉时返回原文
func CleanMessage(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t\r")
		if isDiagnostic(trimmed) {
			continue
		}
		kept = append(kept, strings.TrimRight(line, "\r"))
	}
	msg := strings.TrimSpace(strings.Join(kept, "\n"))
	if msg == "" {
		return strings.TrimSpace(raw)
	}
	return msg
}

func isDiagnostic(line string) bool {
	for _, p := range diagnosticPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// classify 非零退出码：优先 stderr，空白时用 stdout
func classify(stdout, stderr string) error {
	raw := stderr
	if strings.TrimSpace(raw) == "" {
		raw = stdout
	}
	msg := CleanMessage(raw)
	for _, m := range permissionMarkers {
		if strings.Contains(msg, m) {
			return errs.Denied("%s", msg)
		}
	}
	if msg == "" {
		msg = "powershell command failed"
	}
	return errs.Failed("%s", msg)
}
