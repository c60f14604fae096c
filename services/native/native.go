// Package native 直接读写当前用户注册表中的少量开关
package native

const (
	endTaskKey   = `Software\Microsoft\Windows\CurrentVersion\Explorer\Advanced\TaskbarDeveloperSettings`
	endTaskValue = "TaskbarEndTask"
	runKey       = `Software\Microsoft\Windows\CurrentVersion\Run`
)

// RestartExplorerScript 修改任务栏设置后重启资源管理器使其生效
const RestartExplorerScript = "Stop-Process -ProcessName explorer -Force"
