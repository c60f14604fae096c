package security

import (
	"path"
	"sync"

	"github.com/bpcoder16/Chestnut/v2/appconfig/env"

	"confutils-worker/services/executor/powershell/config"
	"confutils-worker/services/security"
)

// 包级别的验证器实例
var (
	globalValidator security.CommandValidator
	globalOnce      sync.Once
)

// Default 返回基于 Chestnut 配置目录的全局验证器，Reload 重新读取同一文件
func Default() security.CommandValidator {
	globalOnce.Do(func() {
		v, err := NewValidator(path.Join(env.ConfigDirPath(), config.FileName))
		if err != nil {
			// 配置错误时直接 panic
			panic("failed to initialize powershell security validator: " + err.Error())
		}
		globalValidator = v
	})
	return globalValidator
}
