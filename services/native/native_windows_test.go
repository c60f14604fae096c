//go:build windows

package native

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// 读取不会修改注册表
func TestEndTaskReadable(t *testing.T) {
	require.True(t, Supported())
	_, err := EndTask()
	require.NoError(t, err)
}
