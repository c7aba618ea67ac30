/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、引擎上下文创建和各业务服务组装
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_contract_req.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 引擎上下文在进程启动时创建一次并显式传入各服务，初始化失败直接终止进程
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs service/contract/service.go, service/expectation/manager.go
 */

package service

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"datacontract-service/logger"
	"datacontract-service/service/cache"
	"datacontract-service/service/contract"
	"datacontract-service/service/expectation"
	"datacontract-service/service/gx"
	"datacontract-service/service/models"
	"datacontract-service/service/notifier"
)

var (
	DB                       *gorm.DB
	GlobalEngineContext      *gx.Context
	GlobalExpectationManager *expectation.Manager
	GlobalContractService    *contract.Service
	GlobalScheduler          *contract.RevalidationScheduler
)

func init() {
	logger.InitLogger()
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s TimeZone=Asia/Shanghai",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	log.Println("开始运行数据库迁移...")

	if err := DB.AutoMigrate(
		&models.DataContractSuite{},
		&models.ContractValidationRun{},
	); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	log.Println("数据库表结构迁移完成")
}

// initServices 初始化服务
func initServices() {
	// 引擎上下文在进程启动时创建一次，之后显式传入各转换调用
	engineContext, err := gx.NewContext()
	if err != nil {
		log.Fatalf("校验引擎上下文初始化失败: %v", err)
	}
	GlobalEngineContext = engineContext
	GlobalExpectationManager = expectation.NewManager(engineContext)

	// 报告缓存为可选依赖，Redis不可用时降级为直读数据库
	var reportCache *cache.ReportCache
	if os.Getenv("REDIS_HOST") != "" {
		reportCache, err = cache.NewReportCache()
		if err != nil {
			log.Printf("报告缓存初始化失败，降级为直读数据库: %v", err)
			reportCache = nil
		}
	}

	alertNotifier := notifier.NewAlertNotifier()
	GlobalContractService = contract.NewService(DB, GlobalExpectationManager, reportCache, alertNotifier)

	// 定时重校验默认关闭，通过环境变量开启
	if os.Getenv("REVALIDATION_ENABLED") == "true" {
		GlobalScheduler = contract.NewRevalidationScheduler(GlobalContractService, os.Getenv("REVALIDATION_CRON"))
		if err := GlobalScheduler.Start(); err != nil {
			log.Printf("启动重校验调度器失败: %v", err)
		}
	}

	log.Println("服务初始化完成")
}
