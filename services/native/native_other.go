//go:build !windows

package native

import (
	"confutils-worker/services/errs"
)

func unsupported() error {
	return errs.Failed("supported on Windows only")
}

func SetEndTask(bool) error { return unsupported() }

func EndTask() (bool, error) { return false, unsupported() }

func SetAutostart(string, string, bool) error { return unsupported() }

// Supported 当前平台是否可用
func Supported() bool { return false }
