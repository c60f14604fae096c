package commands

import (
	"context"

	"confutils-worker/services/errs"
	"confutils-worker/services/executor"
	"confutils-worker/services/jobs"
	"confutils-worker/services/logging"
)

func (h *handlers) discordCommands() map[string]executor.CommandFunc {
	withToken := func(fn func(ctx context.Context, token string) (string, error)) executor.CommandFunc {
		return func(ctx context.Context, args executor.Args) (string, error) {
			if h.Discord == nil {
				return "", errs.Failed("discord client not configured")
			}
			token, err := args.String("token")
			if err != nil {
				return "", err
			}
			return fn(ctx, token)
		}
	}
	return map[string]executor.CommandFunc{
		"discord.resolve_auth": withToken(func(ctx context.Context, token string) (string, error) {
			auth, err := h.Discord.ResolveAuth(ctx, token)
			if err != nil {
				return "", err
			}
			return toJSON(auth)
		}),
		"discord.check_token": withToken(func(ctx context.Context, token string) (string, error) {
			return h.Discord.CheckToken(ctx, token)
		}),
		"discord.token_info": withToken(func(ctx context.Context, token string) (string, error) {
			return h.Discord.TokenInfo(ctx, token)
		}),
	}
}

func (h *handlers) jobCommands() map[string]executor.CommandFunc {
	return map[string]executor.CommandFunc{
		"jobs.cancel": func(_ context.Context, args executor.Args) (string, error) {
			name, err := args.String("name")
			if err != nil {
				return "", err
			}
			if !h.Jobs.Cancel(name) {
				return "", errs.Invalid("%s is not running", name)
			}
			return "cancellation requested", nil
		},
		"jobs.list": func(_ context.Context, _ executor.Args) (string, error) {
			running := h.Jobs.Running()
			if running == nil {
				running = []jobs.Info{}
			}
			return toJSON(running)
		},
	}
}

func (h *handlers) securityCommands() map[string]executor.CommandFunc {
	return map[string]executor.CommandFunc{
		"security.reload": func(ctx context.Context, _ executor.Args) (string, error) {
			if h.Validator == nil {
				return "", errs.Failed("script validator not configured")
			}
			if err := h.Validator.Reload(); err != nil {
				return "", errs.Wrap(errs.Generic, err, "failed to reload security config")
			}
			logging.Context(ctx).Infow("security config reloaded", "validation", h.Validator.IsEnabled())
			return "security config reloaded", nil
		},
		"security.status": func(_ context.Context, _ executor.Args) (string, error) {
			if h.Validator == nil {
				return "", errs.Failed("script validator not configured")
			}
			return boolString(h.Validator.IsEnabled()), nil
		},
	}
}
