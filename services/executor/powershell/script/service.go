package script

import (
	"strings"

	"confutils-worker/services/security"
)

// ManualServices 可以安全改为手动启动的服务
var ManualServices = []string{
	"ALG", "AJRouter", "AppVClient", "tzautoupdate", "bthserv",
	"dmwappushservice", "MapsBroker", "lfsvc", "SharedAccess", "lltdsvc",
	"wlpasvc", "NetTcpPortSharing", "CscService", "PhoneSvc", "PcaSvc",
	"QWAVE", "RmSvc", "SensorDataService", "SensrSvc", "SensorService",
	"ShellHWDetection", "SCardSvr", "ScDeviceEnum", "SSDPSRV", "WiaRpc",
	"OneSyncSvc", "TabletInputService", "upnphost", "WalletService", "FrameServer",
	"stisvc", "wisvc", "icssvc", "WpnService", "WSearch",
}

// ManualChanged set-manual 单步脚本在修改成功时的输出
const ManualChanged = "changed"

func quotedService(name string) (string, string, error) {
	valid, err := security.ValidateServiceName(name)
	if err != nil {
		return "", "", err
	}
	q, err := Quote(valid)
	if err != nil {
		return "", "", err
	}
	return valid, q, nil
}

func serviceAction(verb, past, name string) (Script, error) {
	valid, q, err := quotedService(name)
	if err != nil {
		return Script{}, err
	}
	display, _ := Quote("Service " + valid + " " + past + " successfully")
	failed, _ := Quote("Failed to " + strings.ToLower(verb) + " service " + valid + ": ")
	return NewBuilder().
		TryCatch(
			[]string{verb + "-Service -Name " + q + " -ErrorAction Stop", display},
			failed+" + $_.Exception.Message",
		).
		Build(Raw, false), nil
}

// StartService Start-Service
func StartService(name string) (Script, error) { return serviceAction("Start", "started", name) }

// StopService Stop-Service
func StopService(name string) (Script, error) { return serviceAction("Stop", "stopped", name) }

// RestartService Restart-Service
func RestartService(name string) (Script, error) {
	return serviceAction("Restart", "restarted", name)
}

// ServiceStatus 返回 {Status, Name}，找不到时 Status 为 NotFound
func ServiceStatus(name string) (Script, error) {
	_, q, err := quotedService(name)
	if err != nil {
		return Script{}, err
	}
	return NewBuilder().
		TryCatch(
			[]string{
				"$service = Get-Service -Name " + q + " -ErrorAction Stop",
				"@{Status = $service.Status.ToString(); Name = $service.Name} | ConvertTo-Json -Compress",
			},
			"@{Status = 'NotFound'; Name = "+q+"} | ConvertTo-Json -Compress",
		).
		Build(Object, false), nil
}

// SetStartupType Set-Service -StartupType
func SetStartupType(name, startupType string) (Script, error) {
	valid, q, err := quotedService(name)
	if err != nil {
		return Script{}, err
	}
	st, err := security.ValidateStartupType(startupType)
	if err != nil {
		return Script{}, err
	}
	done, _ := Quote("Service " + valid + " startup type changed to " + st)
	failed, _ := Quote("Failed to change startup type for service " + valid + ": ")
	return NewBuilder().
		TryCatch(
			[]string{"Set-Service -Name " + q + " -StartupType " + st + " -ErrorAction Stop", done},
			failed+" + $_.Exception.Message",
		).
		Build(Raw, false), nil
}

// ListServices 所有服务的 Name/DisplayName/Status/StartType
func ListServices() Script {
	return NewBuilder().UTF8().
		TryCatch(
			[]string{
				"$services = Get-Service | Select-Object Name, DisplayName, Status, StartType",
				"if ($services) { $services | ConvertTo-Json -Compress } else { '[]' }",
			},
			"'[]'",
		).
		Build(List, true)
}

// ServiceDetails 单个服务的详细信息及依赖
func ServiceDetails(name string) (Script, error) {
	valid, q, err := quotedService(name)
	if err != nil {
		return Script{}, err
	}
	filter, _ := Quote("Name='" + valid + "'")
	notFound, _ := Quote("Service not found: " + valid)
	return NewBuilder().UTF8().
		TryCatch(
			[]string{
				"$service = Get-Service -Name " + q + " -ErrorAction Stop",
				"$wmiService = Get-CimInstance Win32_Service -Filter " + filter + " -ErrorAction SilentlyContinue",
				"$description = if ($wmiService) { $wmiService.Description } else { '' }",
				"$required = @($service.ServicesDependedOn | ForEach-Object { @{Name = $_.Name} })",
				"$dependent = @($service.DependentServices | ForEach-Object { @{Name = $_.Name} })",
				"@{",
				"    Name = $service.Name",
				"    DisplayName = $service.DisplayName",
				"    Status = $service.Status.ToString()",
				"    StartType = $service.StartType.ToString()",
				"    Description = $description",
				"    ServiceName = $service.Name",
				"    RequiredServices = $required",
				"    DependentServices = $dependent",
				"} | ConvertTo-Json -Compress -Depth 4",
			},
			"@{Error = "+notFound+"} | ConvertTo-Json -Compress",
		).
		Build(Object, true), nil
}

// SetManualStep 把单个服务改为手动启动；服务存在时输出 ManualChanged
func SetManualStep(name string) (Script, error) {
	_, q, err := quotedService(name)
	if err != nil {
		return Script{}, err
	}
	return NewBuilder().
		Linef("$svc = Get-Service -Name %s -ErrorAction SilentlyContinue", q).
		Linef("if ($svc) { Set-Service -Name %s -StartupType Manual -ErrorAction SilentlyContinue; '%s' } else { 'missing' }", q, ManualChanged).
		Build(Raw, true), nil
}
