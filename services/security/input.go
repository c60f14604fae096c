package security

import (
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"confutils-worker/services/errs"
)

const (
	maxServiceNameLen   = 256
	maxDiscordIDLen     = 20
	minDiscordTokenLen  = 50
	maxDiscordTokenLen  = 200
	maxRegistryValueLen = 10000

	// 系统保留进程 (System Idle / System)
	maxReservedPID = 4
)

var registryHives = []string{"HKLM:", "HKCU:", "HKCR:", "HKU:", "HKCC:"}

// ValidateServiceName 服务名只允许字母数字、'-'、'_' 和空格
func ValidateServiceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 1 || n > maxServiceNameLen {
		return "", errs.Invalid("service name length must be between 1 and %d", maxServiceNameLen)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == ' ' {
			continue
		}
		return "", errs.Invalid("service name contains invalid character %q", r)
	}
	return name, nil
}

// ValidateProcessID 拒绝 0 和系统保留进程
func ValidateProcessID(pid uint32) (uint32, error) {
	if pid == 0 {
		return 0, errs.Invalid("invalid process id: 0")
	}
	if pid <= maxReservedPID {
		return 0, errs.Security("process %d is a protected system process", pid)
	}
	return pid, nil
}

// FilePolicy 文件路径白名单
type FilePolicy struct {
	// 允许的绝对路径前缀
	Roots []string
}

// DefaultRoots 用户目录、ProgramData 和 Windows\Temp
func DefaultRoots() []string {
	var roots []string
	if v := os.Getenv("USERPROFILE"); v != "" {
		roots = append(roots, v)
	}
	if v := os.Getenv("ProgramData"); v != "" {
		roots = append(roots, v)
	} else {
		roots = append(roots, `C:\ProgramData`)
	}
	sysRoot := os.Getenv("SystemRoot")
	if sysRoot == "" {
		sysRoot = `C:\Windows`
	}
	roots = append(roots, sysRoot+`\Temp`)
	return roots
}

// DefaultFilePolicy 使用环境变量推导白名单
func DefaultFilePolicy() FilePolicy {
	return FilePolicy{Roots: DefaultRoots()}
}

// ValidateFilePath 使用默认白名单校验路径
func ValidateFilePath(path string) (string, error) {
	return DefaultFilePolicy().Validate(path)
}

// Validate 校验路径：拒绝穿越，绝对路径必须位于白名单前缀下
func (p FilePolicy) Validate(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errs.Invalid("file path is empty")
	}
	if strings.Contains(path, "..") || strings.Contains(path, "//") {
		return "", errs.Security("path traversal is not allowed: %s", path)
	}
	if !isAbsolute(path) {
		return path, nil
	}
	target := normalizePath(path)
	for _, root := range p.Roots {
		r := strings.TrimRight(normalizePath(root), `\`)
		if r == "" {
			continue
		}
		if target == r || strings.HasPrefix(target, r+`\`) {
			return path, nil
		}
	}
	return "", errs.Security("path is outside the allowed directories: %s", path)
}

func isAbsolute(path string) bool {
	if strings.HasPrefix(path, `\`) || strings.HasPrefix(path, "/") {
		return true
	}
	if len(path) >= 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		c := path[0] | 0x20
		return c >= 'a' && c <= 'z'
	}
	return filepath.IsAbs(path)
}

func normalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "/", `\`))
}

// ValidateRegistryPath 注册表路径必须以受支持的 hive 开头
func ValidateRegistryPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if strings.Contains(path, "..") {
		return "", errs.Security("registry path traversal is not allowed: %s", path)
	}
	upper := strings.ToUpper(path)
	for _, hive := range registryHives {
		if strings.HasPrefix(upper, hive) {
			return path, nil
		}
	}
	return "", errs.Invalid("registry path must start with one of %s", strings.Join(registryHives, ", "))
}

// ValidateRegistryValueName 值名称不能包含控制字符
func ValidateRegistryValueName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errs.Invalid("registry value name is empty")
	}
	if strings.ContainsFunc(name, unicode.IsControl) {
		return "", errs.Invalid("registry value name contains control characters")
	}
	return name, nil
}

// ValidateRegistryValue 限制写入值的长度
func ValidateRegistryValue(value string) (string, error) {
	if utf8.RuneCountInString(value) > maxRegistryValueLen {
		return "", errs.Invalid("registry value too long (max %d characters)", maxRegistryValueLen)
	}
	return value, nil
}

// ValidateDiscordID snowflake 只能是 1-20 位数字
func ValidateDiscordID(id string) (string, error) {
	if len(id) < 1 || len(id) > maxDiscordIDLen {
		return "", errs.Invalid("discord id length must be between 1 and %d", maxDiscordIDLen)
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return "", errs.Invalid("discord id must contain only digits")
		}
	}
	return id, nil
}

// ValidateDiscordToken 拒绝控制字符，长度 50-200
func ValidateDiscordToken(token string) (string, error) {
	if strings.ContainsAny(token, "\n\r\x00") {
		return "", errs.Invalid("token contains control characters")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errs.Invalid("token is empty")
	}
	if n := len(token); n < minDiscordTokenLen || n > maxDiscordTokenLen {
		return "", errs.Invalid("token length must be between %d and %d", minDiscordTokenLen, maxDiscordTokenLen)
	}
	return token, nil
}

// ValidateStartupType 服务启动类型
func ValidateStartupType(startupType string) (string, error) {
	switch startupType {
	case "Automatic", "Manual", "Disabled":
		return startupType, nil
	}
	return "", errs.Invalid("startup type must be Automatic, Manual or Disabled")
}

// ValidateBlocklist hosts 阻止列表名称：ads | telemetry
func ValidateBlocklist(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "ads", "telemetry":
		return key, nil
	}
	return "", errs.Invalid("unknown blocklist %q", name)
}
