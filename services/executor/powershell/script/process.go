package script

import (
	"confutils-worker/services/security"
)

// ListProcesses Id/ProcessName/CPU/MemoryMB
func ListProcesses() Script {
	return NewBuilder().
		Line(`Get-Process | Select-Object Id, ProcessName, @{Name='CPU';Expression={$_.CPU}}, @{Name='MemoryMB';Expression={[math]::Round($_.WorkingSet64/1MB,2)}} | ConvertTo-Json -Compress`).
		Build(List, true)
}

// KillProcess Stop-Process -Force
func KillProcess(pid uint32) (Script, error) {
	valid, err := security.ValidateProcessID(pid)
	if err != nil {
		return Script{}, err
	}
	return NewBuilder().
		Linef("Stop-Process -Id %d -Force -ErrorAction Stop", valid).
		Line("'Process killed successfully'").
		Build(Raw, false), nil
}
