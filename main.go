package main

import (
	"context"
	"log"
	"os"

	"github.com/bpcoder16/Chestnut/v2/appconfig"
	"github.com/bpcoder16/Chestnut/v2/core/cdefer"
	"github.com/spf13/pflag"

	"confutils-worker/bootstrap"
	"confutils-worker/services/taskbar"
)

func main() {
	taskbarApply := pflag.Bool("taskbar-apply", false, "apply the saved taskbar appearance and exit")
	taskbarConfig := pflag.String("taskbar-config", "", "taskbar config path, defaults to %LOCALAPPDATA%\\ConfUtils\\taskbar.json")
	pflag.Parse()

	// 开机自启动时只恢复任务栏外观，不启动服务
	if *taskbarApply {
		if err := taskbar.NewApplier().ApplyFromConfig(context.Background(), *taskbarConfig); err != nil {
			log.Println("taskbar apply:", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	config := appconfig.MustLoadAppConfig("/conf/app-server.yaml")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bootstrap.MustInit(ctx, config)
	defer cdefer.Defer()
	defer bootstrap.Flush()

	log.Println("server exit:", bootstrap.Start(ctx, config))
}
