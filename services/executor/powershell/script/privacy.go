package script

import (
	"confutils-worker/services/errs"
)

const consentStore = `HKCU:\Software\Microsoft\Windows\CurrentVersion\CapabilityAccessManager\ConsentStore\`

// DisableTelemetry AllowTelemetry = 0
func DisableTelemetry() Script {
	const key = `'HKLM:\SOFTWARE\Policies\Microsoft\Windows\DataCollection'`
	return NewBuilder().
		Linef("New-Item -Path %s -Force | Out-Null", key).
		Linef("Set-ItemProperty -Path %s -Name 'AllowTelemetry' -Value 0 -Type DWord -Force", key).
		Line("'Telemetry disabled successfully'").
		Build(Raw, false)
}

// ClearTempFiles 清空 %TEMP% 并报告释放的空间
func ClearTempFiles() Script {
	return NewBuilder().
		Line("$temp = $env:TEMP").
		Line("$tempFiles = Get-ChildItem -Path $temp -Recurse -ErrorAction SilentlyContinue | Measure-Object -Property Length -Sum").
		Line(`Remove-Item (Join-Path $temp '*') -Recurse -Force -ErrorAction SilentlyContinue`).
		Line("'Temp files cleared successfully. Freed: ' + [math]::Round($tempFiles.Sum / 1MB, 2) + ' MB'").
		Build(Raw, false)
}

// ClearActivityHistory 删除本地活动记录
func ClearActivityHistory() Script {
	return NewBuilder().
		Line(`Remove-Item (Join-Path $env:LOCALAPPDATA 'ConnectedDevicesPlatform') -Recurse -Force -ErrorAction SilentlyContinue`).
		Line(`Remove-Item (Join-Path $env:LOCALAPPDATA 'Microsoft\Windows\ActivityHistory') -Recurse -Force -ErrorAction SilentlyContinue`).
		Line("'Activity history cleared successfully'").
		Build(Raw, false)
}

// Capability 隐私开关对应的 ConsentStore 子键
type Capability string

const (
	Location   Capability = "location"
	Microphone Capability = "microphone"
	Camera     Capability = "webcam"
)

func (c Capability) label() string {
	switch c {
	case Location:
		return "Location services"
	case Microphone:
		return "Microphone access"
	case Camera:
		return "Camera access"
	}
	return string(c)
}

// ToggleCapability 位置使用 1/0，麦克风与摄像头使用 Allow/Deny
func ToggleCapability(c Capability, enabled bool) (Script, error) {
	var value string
	switch c {
	case Location:
		value = "'0'"
		if enabled {
			value = "'1'"
		}
	case Microphone, Camera:
		value = "'Deny'"
		if enabled {
			value = "'Allow'"
		}
	default:
		return Script{}, errs.Invalid("unknown capability %q", string(c))
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return NewBuilder().
		Linef("Set-ItemProperty -Path '%s%s' -Name 'Value' -Value %s -Type String -Force", consentStore, c, value).
		Linef("'%s %s'", c.label(), state).
		Build(Raw, false), nil
}
