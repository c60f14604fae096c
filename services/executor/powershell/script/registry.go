package script

import (
	"strings"

	"confutils-worker/services/security"
)

// registryPath 合并 hive 与子路径，如 HKCU + Software\X -> HKCU:\Software\X
func registryPath(hive, path string) (string, error) {
	hive = strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(hive)), ":")
	path = strings.TrimLeft(strings.TrimSpace(path), `\/`)
	if _, err := security.ValidateRegistryPath(hive + ":" + path); err != nil {
		return "", err
	}
	return Quote(hive + `:\` + path)
}

// ReadRegistry 读取单个值
func ReadRegistry(hive, path, name string) (Script, error) {
	p, err := registryPath(hive, path)
	if err != nil {
		return Script{}, err
	}
	n, err := security.ValidateRegistryValueName(name)
	if err != nil {
		return Script{}, err
	}
	qn, err := Quote(n)
	if err != nil {
		return Script{}, err
	}
	return NewBuilder().
		Linef("Get-ItemProperty -Path %s -Name %s -ErrorAction SilentlyContinue | Select-Object -ExpandProperty %s", p, qn, qn).
		Build(Raw, false), nil
}

// WriteRegistry 创建键（如不存在）并写入字符串值
func WriteRegistry(hive, path, name, value string) (Script, error) {
	p, err := registryPath(hive, path)
	if err != nil {
		return Script{}, err
	}
	n, err := security.ValidateRegistryValueName(name)
	if err != nil {
		return Script{}, err
	}
	if _, err = security.ValidateRegistryValue(value); err != nil {
		return Script{}, err
	}
	qn, err := Quote(n)
	if err != nil {
		return Script{}, err
	}
	qv, err := Quote(value)
	if err != nil {
		return Script{}, err
	}
	return NewBuilder().
		Linef("if (-not (Test-Path -Path %s)) { New-Item -Path %s -Force | Out-Null }", p, p).
		Linef("Set-ItemProperty -Path %s -Name %s -Value %s", p, qn, qv).
		Line("'Registry value written successfully'").
		Build(Raw, false), nil
}
