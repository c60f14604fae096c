package bootstrap

import (
	"context"

	"github.com/bpcoder16/Chestnut/v2/appconfig"
	"github.com/bpcoder16/Chestnut/v2/bootstrap"
	"go.uber.org/zap"

	"confutils-worker/services/logging"
)

var logger *zap.Logger

func MustInit(ctx context.Context, config *appconfig.AppConfig) {
	bootstrap.MustInit(ctx, config)

	var err error
	if logger, err = zap.NewProduction(); err != nil {
		panic("init zap logger err:" + err.Error())
	}
	logging.SetLogger(logger)
}

// Flush 退出前刷新日志缓冲
func Flush() {
	if logger != nil {
		_ = logger.Sync()
	}
}
