package bootstrap

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"confutils-worker/services/commands"
	"confutils-worker/services/discord"
	"confutils-worker/services/executor/powershell"
	"confutils-worker/services/executor/powershell/config"
	"confutils-worker/services/jobs"
	"confutils-worker/services/netcheck"
	"confutils-worker/services/ratelimit"
	"confutils-worker/services/security"
	"confutils-worker/services/taskbar"
)

// newLimiter 按 backend 构造限流存储，memory 存储的清理随 ctx 结束
func newLimiter(ctx context.Context, c config.RateLimitConfig) ratelimit.Service {
	svc := ratelimit.Service{Enabled: c.Enabled}
	switch c.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		svc.Store = ratelimit.NewRedisStore(rdb, ratelimit.WithRedisPrefix(c.Redis.Prefix))
	default:
		store := ratelimit.NewMemoryStore()
		store.StartJanitor(ctx)
		svc.Store = store
	}
	return svc
}

// newDeps 组装操作依赖，validator 同时供执行器和 security.reload 使用
func newDeps(ctx context.Context, c config.Config, validator security.CommandValidator) commands.Deps {
	policy := security.DefaultFilePolicy()
	if len(c.Security.AllowedRoots) > 0 {
		policy = security.FilePolicy{Roots: c.Security.AllowedRoots}
	}
	exe, _ := os.Executable()

	return commands.Deps{
		Shell:             powershell.NewFromConfig(c, newLimiter(ctx, c.RateLimit), powershell.WithValidator(validator)),
		Validator:         validator,
		Jobs:              jobs.NewManager(),
		Discord:           discord.NewClient(c.Discord),
		Prober:            netcheck.NewProber(c.Netcheck),
		Taskbar:           taskbar.NewApplier(),
		Registry:          commands.NativeRegistry(),
		FilePolicy:        policy,
		TaskbarConfigPath: c.Taskbar.ConfigPath,
		Executable:        exe,
	}
}
