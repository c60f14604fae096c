package script

import (
	"fmt"
	"strings"

	"confutils-worker/services/security"
)

type blocklist struct {
	marker  string
	domains []string
}

var blocklists = map[string]blocklist{
	"ads": {
		marker: "ADS",
		domains: []string{
			"ads.google.com",
			"adservice.google.com",
			"adservice.google.com.tr",
			"doubleclick.net",
			"ads.yahoo.com",
			"ads.twitter.com",
			"ads.microsoft.com",
			"adnxs.com",
			"adsymptotic.com",
			"adsystem.com",
		},
	},
	"telemetry": {
		marker: "TELEMETRY",
		domains: []string{
			"vortex.data.microsoft.com",
			"vortex-win.data.microsoft.com",
			"telemetry.microsoft.com",
			"settings-win.data.microsoft.com",
			"watson.telemetry.microsoft.com",
			"oca.telemetry.microsoft.com",
			"sqm.telemetry.microsoft.com",
			"telecommand.telemetry.microsoft.com",
			"telecommand.telemetry.microsoft.com.nsatc.net",
			"wes.df.telemetry.microsoft.com",
		},
	},
}

// BlocklistDomains 返回阻止列表的域名
func BlocklistDomains(name string) ([]string, error) {
	list, err := lookupBlocklist(name)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), list.domains...), nil
}

func lookupBlocklist(name string) (blocklist, error) {
	key, err := security.ValidateBlocklist(name)
	if err != nil {
		return blocklist{}, err
	}
	return blocklists[key], nil
}

func hostsPrelude(b *Builder, marker string) {
	b.Line(`$hostsPath = Join-Path $env:SystemRoot 'System32\drivers\etc\hosts'`).
		Linef("$start = '# ConfUtils Blocklist %s Start'", marker).
		Linef("$end = '# ConfUtils Blocklist %s End'", marker).
		Line("$content = Get-Content $hostsPath -ErrorAction SilentlyContinue")
}

// 去掉旧的标记块
func hostsFilter(b *Builder) {
	b.Line("$filtered = @()").
		Line("$inBlock = $false").
		Line("foreach ($line in $content) {").
		Line("    if ($line -eq $start) { $inBlock = $true; continue }").
		Line("    if ($line -eq $end) { $inBlock = $false; continue }").
		Line("    if (-not $inBlock) { $filtered += $line }").
		Line("}")
}

// ApplyBlocklist 把域名以 0.0.0.0 写入 hosts 的标记块，重复执行只保留一个块
func ApplyBlocklist(name string) (Script, error) {
	list, err := lookupBlocklist(name)
	if err != nil {
		return Script{}, err
	}
	quoted := make([]string, 0, len(list.domains))
	for _, d := range list.domains {
		quoted = append(quoted, "'"+d+"'")
	}

	b := NewBuilder()
	hostsPrelude(b, list.marker)
	b.Linef("$domains = @(%s)", strings.Join(quoted, ", "))
	hostsFilter(b)
	b.Line("$block = @($start)").
		Line("foreach ($domain in $domains) { $block += '0.0.0.0 ' + $domain }").
		Line("$block += $end").
		Line("Set-Content -Path $hostsPath -Value ($filtered + $block) -Encoding ASCII").
		Line("ipconfig /flushdns | Out-Null").
		Line(fmt.Sprintf("'Hosts blocklist applied: %s (%d)'", list.marker, len(list.domains)))
	return b.Build(Raw, false), nil
}

// RemoveBlocklist 删除标记块
func RemoveBlocklist(name string) (Script, error) {
	list, err := lookupBlocklist(name)
	if err != nil {
		return Script{}, err
	}
	b := NewBuilder()
	hostsPrelude(b, list.marker)
	hostsFilter(b)
	b.Line("Set-Content -Path $hostsPath -Value $filtered -Encoding ASCII").
		Line("ipconfig /flushdns | Out-Null").
		Linef("'Hosts blocklist removed: %s'", list.marker)
	return b.Build(Raw, false), nil
}

// BlocklistStatus 输出 true 或 false
func BlocklistStatus(name string) (Script, error) {
	list, err := lookupBlocklist(name)
	if err != nil {
		return Script{}, err
	}
	b := NewBuilder()
	hostsPrelude(b, list.marker)
	b.Line("if ($content -contains $start) { 'true' } else { 'false' }")
	return b.Build(Raw, true), nil
}
