package commands

import (
	"context"
	"fmt"
	"strings"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor"
	"confutils-worker/services/executor/powershell"
	"confutils-worker/services/executor/powershell/script"
	"confutils-worker/services/jobs"
	"confutils-worker/services/logging"
)

// SetManualJob service.set_manual 的任务名
const SetManualJob = "service.set_manual"

func (h *handlers) shellCommands() map[string]executor.CommandFunc {
	named := func(build func(string) (script.Script, error)) executor.CommandFunc {
		return func(ctx context.Context, args executor.Args) (string, error) {
			name, err := args.String("name")
			if err != nil {
				return "", err
			}
			s, err := build(name)
			if err != nil {
				return "", err
			}
			return h.run(ctx, s)
		}
	}
	fixed := func(build func() script.Script) executor.CommandFunc {
		return func(ctx context.Context, _ executor.Args) (string, error) {
			return h.run(ctx, build())
		}
	}
	toggle := func(c script.Capability) executor.CommandFunc {
		return func(ctx context.Context, args executor.Args) (string, error) {
			enabled, err := args.Bool("enabled")
			if err != nil {
				return "", err
			}
			s, err := script.ToggleCapability(c, enabled)
			if err != nil {
				return "", err
			}
			return h.run(ctx, s)
		}
	}
	blocklist := func(build func(string) (script.Script, error)) executor.CommandFunc {
		return func(ctx context.Context, args executor.Args) (string, error) {
			list, err := args.String("list")
			if err != nil {
				return "", err
			}
			s, err := build(list)
			if err != nil {
				return "", err
			}
			return h.run(ctx, s)
		}
	}

	return map[string]executor.CommandFunc{
		"powershell.run": h.runRaw,

		"service.start":        named(script.StartService),
		"service.stop":         named(script.StopService),
		"service.restart":      named(script.RestartService),
		"service.status":       named(script.ServiceStatus),
		"service.details":      named(script.ServiceDetails),
		"service.list":         fixed(script.ListServices),
		"service.startup_type": h.setStartupType,
		SetManualJob:           h.setServicesManual,

		"registry.read":  h.readRegistry,
		"registry.write": h.writeRegistry,

		"process.list": fixed(script.ListProcesses),
		"process.kill": h.killProcess,

		"system.info":             fixed(script.SystemInfo),
		"system.disk_usage":       fixed(script.DiskUsage),
		"system.network_adapters": fixed(script.NetworkAdapters),
		"system.flush_dns":        h.flushDNS,
		"system.defender_status":  fixed(script.DefenderStatus),
		"system.startup_programs": fixed(script.StartupPrograms),
		"system.cpu_usage":        fixed(script.CPUUsage),
		"system.memory_usage":     fixed(script.MemoryUsage),
		"system.uptime":           fixed(script.Uptime),

		"privacy.disable_telemetry":      fixed(script.DisableTelemetry),
		"privacy.clear_temp":             fixed(script.ClearTempFiles),
		"privacy.clear_activity_history": fixed(script.ClearActivityHistory),
		"privacy.location":               toggle(script.Location),
		"privacy.microphone":             toggle(script.Microphone),
		"privacy.camera":                 toggle(script.Camera),

		"hosts.apply":  blocklist(script.ApplyBlocklist),
		"hosts.remove": blocklist(script.RemoveBlocklist),
		"hosts.status": blocklist(script.BlocklistStatus),
	}
}

// runRaw 执行 GUI 提交的任意脚本，经过检查与限流
func (h *handlers) runRaw(ctx context.Context, args executor.Args) (string, error) {
	text, err := args.String("script")
	if err != nil {
		return "", err
	}
	return h.Shell.Run(ctx, text, powershell.Options{})
}

func (h *handlers) setStartupType(ctx context.Context, args executor.Args) (string, error) {
	name, err := args.String("name")
	if err != nil {
		return "", err
	}
	startupType, err := args.String("startupType")
	if err != nil {
		return "", err
	}
	s, err := script.SetStartupType(name, startupType)
	if err != nil {
		return "", err
	}
	return h.run(ctx, s)
}

// setServicesManual 逐个服务修改，两次之间响应 jobs.cancel
func (h *handlers) setServicesManual(ctx context.Context, _ executor.Args) (string, error) {
	count := 0
	err := h.Jobs.Run(ctx, SetManualJob, func(ctx context.Context) error {
		return jobs.Steps(ctx, len(script.ManualServices), func(ctx context.Context, i int) error {
			name := script.ManualServices[i]
			s, err := script.SetManualStep(name)
			if err != nil {
				return err
			}
			out, err := h.run(ctx, s)
			if errs.Is(err, errs.CancellationRequested) {
				return err
			}
			if err != nil {
				logging.Context(ctx).Warnw("set manual startup failed", "service", name, "error", err)
				return nil
			}
			if strings.TrimSpace(out) == script.ManualChanged {
				count++
			}
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Set %d services to manual startup", count), nil
}

func (h *handlers) readRegistry(ctx context.Context, args executor.Args) (string, error) {
	hive, path, name, err := registryArgs(args)
	if err != nil {
		return "", err
	}
	s, err := script.ReadRegistry(hive, path, name)
	if err != nil {
		return "", err
	}
	out, err := h.run(ctx, s)
	return strings.TrimSpace(out), err
}

func (h *handlers) writeRegistry(ctx context.Context, args executor.Args) (string, error) {
	hive, path, name, err := registryArgs(args)
	if err != nil {
		return "", err
	}
	value, err := args.String("value")
	if err != nil {
		return "", err
	}
	s, err := script.WriteRegistry(hive, path, name, value)
	if err != nil {
		return "", err
	}
	return h.run(ctx, s)
}

func registryArgs(args executor.Args) (hive, path, name string, err error) {
	if hive, err = args.String("hive"); err != nil {
		return
	}
	if path, err = args.String("path"); err != nil {
		return
	}
	name, err = args.String("name")
	return
}

func (h *handlers) killProcess(ctx context.Context, args executor.Args) (string, error) {
	pid, err := args.Uint32("pid")
	if err != nil {
		return "", err
	}
	s, err := script.KillProcess(pid)
	if err != nil {
		return "", err
	}
	return h.run(ctx, s)
}

func (h *handlers) flushDNS(ctx context.Context, _ executor.Args) (string, error) {
	out, err := h.run(ctx, script.FlushDNS())
	if err != nil {
		return "", err
	}
	return script.FlushDNSResult(out)
}
