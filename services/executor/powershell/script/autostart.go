package script

// AutostartName Run 键下的值名称
const AutostartName = "ConfUtils"

const runKey = `'HKCU:\Software\Microsoft\Windows\CurrentVersion\Run'`

// Autostart 原生注册表不可用时的脚本方式
func Autostart(exe string, enabled bool) (Script, error) {
	if !enabled {
		return NewBuilder().
			Linef("Remove-ItemProperty -Path %s -Name '%s' -ErrorAction SilentlyContinue", runKey, AutostartName).
			Line("'Autostart disabled'").
			Build(Raw, false), nil
	}
	q, err := Quote(exe)
	if err != nil {
		return Script{}, err
	}
	return NewBuilder().
		Linef("Set-ItemProperty -Path %s -Name '%s' -Value %s", runKey, AutostartName, q).
		Line("'Autostart enabled'").
		Build(Raw, false), nil
}
