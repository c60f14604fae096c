//go:build windows

package native

import (
	"errors"

	"golang.org/x/sys/windows/registry"

	"confutils-worker/services/errs"
)

// SetEndTask 任务栏右键「结束任务」开关
func SetEndTask(enable bool) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, endTaskKey, registry.SET_VALUE)
	if err != nil {
		return errs.Wrap(errs.Generic, err, "failed to create/open registry key")
	}
	defer key.Close()

	var v uint32
	if enable {
		v = 1
	}
	if err = key.SetDWordValue(endTaskValue, v); err != nil {
		return errs.Wrap(errs.Generic, err, "failed to write registry value")
	}
	return nil
}

// EndTask 读取开关状态，值不存在视为关闭
func EndTask() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, endTaskKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, errs.Wrap(errs.Generic, err, "failed to open registry key")
	}
	defer key.Close()

	v, _, err := key.GetIntegerValue(endTaskValue)
	if err != nil {
		return false, nil
	}
	return v == 1, nil
}

// SetAutostart 在 Run 键下写入或删除启动项
func SetAutostart(name, exe string, enabled bool) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return errs.Wrap(errs.Generic, err, "failed to open run key")
	}
	defer key.Close()

	if !enabled {
		if err = key.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
			return errs.Wrap(errs.Generic, err, "failed to remove autostart entry")
		}
		return nil
	}
	if err = key.SetStringValue(name, `"`+exe+`"`); err != nil {
		return errs.Wrap(errs.Generic, err, "failed to write autostart entry")
	}
	return nil
}

// Supported 当前平台是否可用
func Supported() bool { return true }
