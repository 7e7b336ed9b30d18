// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"symptom-checker-go/internal/config"
	"symptom-checker-go/internal/middleware"
	"symptom-checker-go/internal/repository"
	"symptom-checker-go/internal/server"
	"symptom-checker-go/internal/service"
	"symptom-checker-go/internal/symptom"
	"symptom-checker-go/pkg/database"
	"symptom-checker-go/pkg/kafka"
	"symptom-checker-go/pkg/llm"
	"symptom-checker-go/pkg/log"
	"symptom-checker-go/pkg/token"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	config.Init(configPath)
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Infof("日志记录器初始化成功, environment=%s", cfg.Server.Environment)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// 3. 初始化 LLM 客户端：失败时服务照常启动，但每次检查都会快速失败
	llmClient := llm.MustClient(rootCtx, cfg.LLM)
	checker := symptom.NewChecker(llmClient)
	symptomService := service.NewSymptomService(checker)

	// 4. 可选的审计落库 (MySQL)
	var checkEventService service.CheckEventService
	if cfg.Database.MySQL.DSN != "" {
		db, err := database.InitMySQL(cfg.Database.MySQL.DSN)
		if err != nil {
			log.Errorf("MySQL 初始化失败，审计事件仅写日志: %v", err)
		} else {
			checkEventService = service.NewCheckEventService(repository.NewCheckEventRepository(db))
		}
	}

	// 5. 选择审计事件的发布方式：Kafka > 直接写库 > 仅日志
	var publisher service.EventPublisher
	var producer *kafka.Producer
	if cfg.Kafka.Brokers != "" {
		producer = kafka.InitProducer(cfg.Kafka)
		publisher = producer
		if checkEventService != nil {
			// 启动后台 Kafka 消费者
			go kafka.NewConsumer(cfg.Kafka, checkEventService).Run(rootCtx)
		}
	} else if checkEventService != nil {
		publisher = checkEventService
	}
	auditService := service.NewAuditService(publisher, symptomService.Model())

	// 6. 可选的限流 (Redis)
	var limiter *middleware.Limiter
	if cfg.RateLimit.Enabled && cfg.Database.Redis.Addr != "" {
		rdb, err := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Errorf("Redis 初始化失败，限流已关闭: %v", err)
		} else {
			defer rdb.Close()
			limiter = middleware.NewLimiter(database.NewRedisCounter(rdb), cfg.RateLimit.Limit, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
		}
	}

	// 7. 设置 Gin 模式并注册路由
	gin.SetMode(cfg.Server.Mode)
	r := server.NewRouter(server.Deps{
		LLMClient:      llmClient,
		SymptomService: symptomService,
		AuditService:   auditService,
		JWTManager:     token.NewJWTManager(cfg.Session.Secret, cfg.Session.TokenExpireMinutes),
		Limiter:        limiter,
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// 停止消费者并刷新生产者缓冲
	cancelRoot()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Errorf("关闭 Kafka 生产者失败: %v", err)
		}
	}
	log.Info("服务已优雅关闭")
}
