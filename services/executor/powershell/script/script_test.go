package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confutils-worker/services/errs"
	pssecurity "confutils-worker/services/executor/powershell/security"
)

func TestQuote(t *testing.T) {
	q, err := Quote("O'Brien")
	require.NoError(t, err)
	assert.Equal(t, "'O''Brien'", q)

	_, err = Quote("a && b")
	assert.True(t, errs.Is(err, errs.SecurityViolation))
	_, err = Quote("x`y")
	assert.True(t, errs.Is(err, errs.SecurityViolation))
}

func TestBuilder(t *testing.T) {
	got := NewBuilder().
		Line("$a = 1").
		TryCatch([]string{"Do-Thing"}, "'failed'").
		String()
	assert.Equal(t, "$a = 1\ntry {\n    Do-Thing\n} catch {\n    'failed'\n}", got)

	utf8 := NewBuilder().UTF8().String()
	assert.True(t, strings.HasPrefix(utf8, "[Console]::OutputEncoding"))
	assert.Contains(t, utf8, "chcp 65001 | Out-Null")
}

// 所有内置模板都必须能通过执行器的脚本检查
func TestTemplatesPassGate(t *testing.T) {
	must := func(s Script, err error) Script {
		require.NoError(t, err)
		return s
	}
	scripts := map[string]Script{
		"start":        must(StartService("Spooler")),
		"stop":         must(StopService("Spooler")),
		"restart":      must(RestartService("Spooler")),
		"status":       must(ServiceStatus("Spooler")),
		"startup":      must(SetStartupType("Spooler", "Manual")),
		"list":         ListServices(),
		"details":      must(ServiceDetails("Spooler")),
		"manualStep":   must(SetManualStep("WSearch")),
		"regRead":      must(ReadRegistry("HKCU", `Software\Test`, "Value")),
		"regWrite":     must(WriteRegistry("HKLM", `SOFTWARE\Test`, "Value", "it's fine")),
		"procList":     ListProcesses(),
		"kill":         must(KillProcess(1234)),
		"info":         SystemInfo(),
		"disk":         DiskUsage(),
		"adapters":     NetworkAdapters(),
		"dns":          FlushDNS(),
		"defender":     DefenderStatus(),
		"startupProgs": StartupPrograms(),
		"cpu":          CPUUsage(),
		"memory":       MemoryUsage(),
		"uptime":       Uptime(),
		"telemetry":    DisableTelemetry(),
		"temp":         ClearTempFiles(),
		"activity":     ClearActivityHistory(),
		"location":     must(ToggleCapability(Location, true)),
		"mic":          must(ToggleCapability(Microphone, false)),
		"camera":       must(ToggleCapability(Camera, true)),
		"hostsApply":   must(ApplyBlocklist("ads")),
		"hostsRemove":  must(RemoveBlocklist("telemetry")),
		"hostsStatus":  must(BlocklistStatus("ads")),
		"autostartOn":  must(Autostart(`C:\Program Files (x86)\ConfUtils\confutils.exe`, true)),
		"autostartOff": must(Autostart("", false)),
	}
	for name, s := range scripts {
		assert.NoError(t, pssecurity.CheckScript(s.Text, pssecurity.MaxInputLength), name)
		assert.NotEmpty(t, strings.TrimSpace(s.Text), name)
	}
}

func TestServiceScripts(t *testing.T) {
	s, err := StartService("Spooler")
	require.NoError(t, err)
	assert.Contains(t, s.Text, "Start-Service -Name 'Spooler' -ErrorAction Stop")
	assert.Contains(t, s.Text, "'Service Spooler started successfully'")
	assert.Equal(t, Raw, s.Shape)
	assert.False(t, s.SkipRateLimit)

	_, err = StartService("bad;name")
	assert.True(t, errs.Is(err, errs.InvalidInput))

	_, err = SetStartupType("Spooler", "Boot")
	assert.True(t, errs.Is(err, errs.InvalidInput))

	d, err := ServiceDetails("Spooler")
	require.NoError(t, err)
	assert.Contains(t, d.Text, "-Filter 'Name=''Spooler'''")
	assert.Equal(t, Object, d.Shape)
	assert.True(t, d.SkipRateLimit)

	assert.Len(t, ManualServices, 35)
}

func TestRegistryScripts(t *testing.T) {
	s, err := ReadRegistry("hkcu", `\Software\Test`, "Value")
	require.NoError(t, err)
	assert.Contains(t, s.Text, `Get-ItemProperty -Path 'HKCU:\Software\Test' -Name 'Value'`)

	_, err = ReadRegistry("HKCU", `Software\..\..\Other`, "Value")
	assert.True(t, errs.Is(err, errs.SecurityViolation))

	_, err = ReadRegistry("HKXX", `Software`, "Value")
	assert.True(t, errs.Is(err, errs.InvalidInput))

	w, err := WriteRegistry("HKCU", `Software\Test`, "Value", "it's")
	require.NoError(t, err)
	assert.Contains(t, w.Text, "-Value 'it''s'")

	w, err = WriteRegistry("HKCU", `Software\Test`, "Name", "x\u2019; Stop-Computer -Force; \u2019")
	require.NoError(t, err)
	assert.Contains(t, w.Text, "-Value 'x\u2019\u2019; Stop-Computer -Force; \u2019\u2019'")
	assert.NoError(t, pssecurity.CheckScript(w.Text, 0))

	_, err = WriteRegistry("HKCU", `Software\Test`, "Value", strings.Repeat("v", 10001))
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

func TestKillProcess(t *testing.T) {
	s, err := KillProcess(4321)
	require.NoError(t, err)
	assert.Contains(t, s.Text, "Stop-Process -Id 4321 -Force")

	_, err = KillProcess(0)
	assert.True(t, errs.Is(err, errs.InvalidInput))
	_, err = KillProcess(4)
	assert.True(t, errs.Is(err, errs.SecurityViolation))
}

func TestToggleCapability(t *testing.T) {
	s, err := ToggleCapability(Location, false)
	require.NoError(t, err)
	assert.Contains(t, s.Text, `ConsentStore\location' -Name 'Value' -Value '0' -Type String`)
	assert.Contains(t, s.Text, "'Location services disabled'")

	s, err = ToggleCapability(Camera, true)
	require.NoError(t, err)
	assert.Contains(t, s.Text, `ConsentStore\webcam' -Name 'Value' -Value 'Allow'`)

	_, err = ToggleCapability("bluetooth", true)
	assert.True(t, errs.Is(err, errs.InvalidInput))
}

func TestBlocklistScripts(t *testing.T) {
	s, err := ApplyBlocklist("ADS")
	require.NoError(t, err)
	assert.Contains(t, s.Text, "$start = '# ConfUtils Blocklist ADS Start'")
	assert.Contains(t, s.Text, "'doubleclick.net'")
	assert.Contains(t, s.Text, "'Hosts blocklist applied: ADS (10)'")

	st, err := BlocklistStatus("telemetry")
	require.NoError(t, err)
	assert.Contains(t, st.Text, "# ConfUtils Blocklist TELEMETRY Start")
	assert.True(t, st.SkipRateLimit)

	_, err = RemoveBlocklist("malware")
	assert.True(t, errs.Is(err, errs.InvalidInput))

	domains, err := BlocklistDomains("telemetry")
	require.NoError(t, err)
	assert.Len(t, domains, 10)
}

func TestFlushDNSResult(t *testing.T) {
	out, err := FlushDNSResult("DNS cache flushed successfully")
	require.NoError(t, err)
	assert.Equal(t, "DNS cache flushed successfully", out)

	_, err = FlushDNSResult("DNS cache flush failed: boom")
	assert.True(t, errs.Is(err, errs.Generic))
	assert.Error(t, err)

	out, err = FlushDNSResult("something else")
	require.NoError(t, err)
	assert.Equal(t, "something else", out)
}
