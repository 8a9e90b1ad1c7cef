// @title MindTrack 后端 API
// @version 1.0
// @description MindTrack 刷题进度、连续天数与排行榜服务。

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"
	"mindtrack_backend/internal/app"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/pkg/logger"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if cfg.MigrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	application.Run()
}
