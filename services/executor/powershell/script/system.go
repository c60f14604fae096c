package script

import (
	"strings"

	"confutils-worker/services/errs"
)

// SystemInfo 操作系统版本与处理器数量
func SystemInfo() Script {
	return NewBuilder().
		Line("$os = Get-CimInstance Win32_OperatingSystem").
		Line("$cs = Get-CimInstance Win32_ComputerSystem").
		Line("@{WindowsVersion = $os.Version; OsName = $os.Caption; OsArchitecture = $os.OSArchitecture; CsProcessors = $cs.NumberOfProcessors} | ConvertTo-Json -Compress").
		Build(Object, false)
}

// DiskUsage 固定磁盘的容量统计
func DiskUsage() Script {
	return NewBuilder().
		Line("Get-CimInstance Win32_LogicalDisk | Where-Object {$_.DriveType -eq 3} |").
		Line("    Select-Object DeviceID,").
		Line("        @{Name='SizeGB';Expression={[math]::Round($_.Size/1GB,2)}},").
		Line("        @{Name='FreeSpaceGB';Expression={[math]::Round($_.FreeSpace/1GB,2)}},").
		Line("        @{Name='UsedSpaceGB';Expression={[math]::Round(($_.Size-$_.FreeSpace)/1GB,2)}},").
		Line("        @{Name='PercentFree';Expression={[math]::Round(($_.FreeSpace/$_.Size)*100,2)}} |").
		Line("    ConvertTo-Json -Compress").
		Build(List, true)
}

// NetworkAdapters 网卡列表
func NetworkAdapters() Script {
	return NewBuilder().UTF8().
		TryCatch(
			[]string{
				"$adapters = Get-NetAdapter -ErrorAction SilentlyContinue",
				"if ($adapters) { $adapters | Select-Object Name, InterfaceDescription, Status, LinkSpeed | ConvertTo-Json -Compress } else { '[]' }",
			},
			"'[]'",
		).
		Build(List, true)
}

// FlushDNS Clear-DnsClientCache，失败时退回 ipconfig /flushdns
func FlushDNS() Script {
	return NewBuilder().UTF8().
		TryCatch(
			[]string{
				"Clear-DnsClientCache -ErrorAction Stop",
				"'DNS cache flushed successfully'",
			},
			"try {",
			"    $process = Start-Process -FilePath 'ipconfig' -ArgumentList '/flushdns' -NoNewWindow -Wait -PassThru",
			"    if ($process.ExitCode -eq 0) { 'DNS cache flushed successfully' } else { throw ('DNS cache flush failed with exit code ' + $process.ExitCode) }",
			"} catch {",
			"    'DNS cache flush failed: ' + $_.Exception.Message",
			"}",
		).
		Build(Raw, true)
}

// FlushDNSResult 脚本内部捕获的失败转为错误
func FlushDNSResult(out string) (string, error) {
	if strings.Contains(out, "successfully") {
		return out, nil
	}
	if strings.Contains(out, "failed") || strings.Contains(out, "Error") {
		return "", errs.Failed("%s", out)
	}
	return out, nil
}

// DefenderStatus 实时保护是否开启
func DefenderStatus() Script {
	return NewBuilder().
		TryCatch(
			[]string{
				"$enabled = (Get-MpComputerStatus).RealTimeProtectionEnabled",
				"@{Enabled = $enabled; Status = $enabled} | ConvertTo-Json -Compress",
			},
			"@{Enabled = $false; Status = $false} | ConvertTo-Json -Compress",
		).
		Build(Object, true)
}

// StartupPrograms Win32_StartupCommand
func StartupPrograms() Script {
	return NewBuilder().
		Line("Get-CimInstance Win32_StartupCommand | Select-Object Name, Command, Location | ConvertTo-Json -Compress").
		Build(List, true)
}

// CPUUsage 平均负载百分比
func CPUUsage() Script {
	return NewBuilder().
		TryCatch(
			[]string{
				"$cpu = (Get-CimInstance Win32_Processor | Measure-Object -Property LoadPercentage -Average).Average",
				"$usage = if ($cpu) { $cpu } else { 0 }",
				"@{Usage = $usage} | ConvertTo-Json -Compress",
			},
			"@{Usage = 0} | ConvertTo-Json -Compress",
		).
		Build(Object, true)
}

// MemoryUsage 物理内存，单位 GB
func MemoryUsage() Script {
	return NewBuilder().
		Line("$mem = Get-CimInstance Win32_OperatingSystem").
		Line("$total = [math]::Round($mem.TotalVisibleMemorySize / 1MB, 2)").
		Line("$free = [math]::Round($mem.FreePhysicalMemory / 1MB, 2)").
		Line("$used = $total - $free").
		Line("$percent = [math]::Round(($used / $total) * 100, 2)").
		Line("@{Total = $total; Used = $used; Free = $free; Percent = $percent} | ConvertTo-Json -Compress").
		Build(Object, true)
}

// Uptime 自上次启动以来的时间
func Uptime() Script {
	return NewBuilder().
		Line("$uptime = (Get-Date) - (Get-CimInstance Win32_OperatingSystem).LastBootUpTime").
		Line("@{Days = $uptime.Days; Hours = $uptime.Hours; Minutes = $uptime.Minutes; TotalSeconds = $uptime.TotalSeconds} | ConvertTo-Json -Compress").
		Build(Object, true)
}
