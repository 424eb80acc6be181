// @title Quiz 后端 API
// @version 1.0
// @description 按主题组织的测验服务：题目排序、答题进度与统计。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"flag"
	"log"
	"quiz_backend/internal/app"
	"quiz_backend/internal/config"
	"quiz_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件 config.yaml 所在目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.String("seed", "", "启动前导入的 YAML 测验数据文件")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	cfg.SeedFile = *seed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if cfg.MigrateOnly {
		logger.Log.Info("Database migration finished, exiting")
		return
	}

	if cfg.SeedFile != "" {
		if err := application.Seed(context.Background(), cfg.SeedFile); err != nil {
			logger.Log.Fatal("Failed to import seed", zap.Error(err))
		}
	}

	application.Run()
}
