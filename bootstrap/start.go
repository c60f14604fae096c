package bootstrap

import (
	"context"
	"path"

	"github.com/bpcoder16/Chestnut/v2/appconfig"
	"github.com/bpcoder16/Chestnut/v2/appconfig/env"
	"github.com/bpcoder16/Chestnut/v2/bootstrap"
	"github.com/bpcoder16/Chestnut/v2/core/gtask"
	"github.com/bpcoder16/Chestnut/v2/logit"
	"github.com/bpcoder16/Chestnut/v2/modules/grpcserver"

	"confutils-worker/services/commands"
	"confutils-worker/services/dispatch"
	"confutils-worker/services/executor"
	"confutils-worker/services/executor/powershell/config"
	pssecurity "confutils-worker/services/executor/powershell/security"
)

func Start(ctx context.Context, appConfig *appconfig.AppConfig) error {
	var g *gtask.Group
	g, ctx = gtask.WithContext(ctx)

	bootstrap.Start(ctx, appConfig, g.Go)

	factory := executor.DefaultFactory()
	commands.Install(factory, newDeps(ctx, config.Get(), pssecurity.Default()))

	g.Go(func() error {
		// 记录支持的操作
		logit.Context(ctx).InfoW("Available", "commands", "methods", factory.SupportedMethods())

		return grpcserver.NewManager(
			path.Join(env.ConfigDirPath(), "grpc.yaml"),
			dispatch.NewServer(factory),
		).Run(ctx)
	})

	return g.Wait()
}
