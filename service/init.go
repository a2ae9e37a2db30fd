/*
 * @module service/init
 * @description 服务初始化模块，负责配置加载、日志、基础设施连接与全局服务装配
 * @architecture 分层架构 - 服务层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 应用启动时执行初始化流程：配置 -> 日志 -> Redis/Kafka/数据库 -> 编排器 -> 调度器
 * @rules 可选基础设施连接失败时降级运行并记录告警；配置非法时拒绝启动
 * @dependencies github.com/go-redis/redis/v8, github.com/prometheus/client_golang
 * @refs main.go, api/routes.go
 */

package service

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"dataquality-service/logger"
	"dataquality-service/service/config"
	"dataquality-service/service/datasource"
	"dataquality-service/service/distributed_lock"
	"dataquality-service/service/event"
	"dataquality-service/service/monitoring"
	"dataquality-service/service/orchestration"
	"dataquality-service/service/rate_limiter"
	"dataquality-service/service/scheduler"
	"dataquality-service/service/summary"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
)

const defaultConfigPath = "config/quality.yaml"

var (
	GlobalConfig       *config.QualityConfig
	GlobalRedisClient  *redis.Client
	GlobalPublisher    event.ReportPublisher
	GlobalSummarizer   summary.Summarizer
	GlobalRecorder     monitoring.Recorder
	GlobalHealth       *monitoring.HealthChecker
	GlobalOrchestrator *orchestration.Orchestrator
	GlobalFileSource   *datasource.FileSource
	GlobalTableSource  *datasource.TableSource
	GlobalRateLimiter  rate_limiter.Limiter
	GlobalScheduler    *scheduler.QualityScheduler
)

func init() {
	initConfig()
	initInfrastructure()
	initServices()
}

// initConfig 加载配置并初始化日志
func initConfig() {
	path := getEnvWithDefault("DQ_CONFIG", defaultConfigPath)

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	GlobalConfig = cfg
	logger.InitLogger(cfg.Log)

	slog.Info("配置加载完成",
		"config_path", path,
		"workers", cfg.Processing.MaxConcurrentWorkers,
		"timeout_seconds", cfg.Processing.TimeoutSeconds,
		"llm_provider", cfg.LLM.Provider)
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// initInfrastructure 连接可选的 Redis、Kafka 与数据库
func initInfrastructure() {
	cfg := GlobalConfig

	GlobalPublisher = event.NopPublisher{}

	if cfg.Redis.Enabled {
		client, err := NewRedisClient(cfg.Redis)
		if err != nil {
			slog.Warn("Redis不可用，限流关闭且调度使用进程内锁", "error", err)
		} else {
			GlobalRedisClient = client
		}
	}

	if cfg.Kafka.Enabled {
		publisher, err := event.NewKafkaReportPublisher(cfg.Kafka)
		if err != nil {
			slog.Warn("Kafka发布器初始化失败，报告事件不会发送", "error", err)
		} else {
			GlobalPublisher = publisher
		}
	}

	if cfg.Sources.DatabaseDSN != "" {
		source, err := datasource.OpenTableSource(cfg.Sources)
		if err != nil {
			slog.Warn("表数据源初始化失败", "error", err)
		} else {
			GlobalTableSource = source
		}
	}
}

// NewRedisClient 创建Redis客户端并测试连接
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis连接失败: %w", err)
	}

	slog.Info("Redis连接成功", "redis_host", cfg.Host, "redis_port", cfg.Port)
	return client, nil
}

// initServices 初始化服务
func initServices() {
	cfg := GlobalConfig

	summarizer, err := summary.NewSummarizer(cfg.LLM)
	if err != nil {
		slog.Warn("LLM摘要生成器初始化失败，使用确定性摘要", "error", err)
		summarizer = summary.FallbackSummarizer{}
	}
	GlobalSummarizer = summarizer

	GlobalRecorder = monitoring.NewPrometheusRecorder(prometheus.DefaultRegisterer)

	GlobalOrchestrator = orchestration.NewOrchestrator(cfg,
		orchestration.WithSummarizer(GlobalSummarizer),
		orchestration.WithRecorder(GlobalRecorder),
		orchestration.WithPublisher(GlobalPublisher),
	)

	GlobalFileSource = datasource.NewFileSource(cfg.Sources)

	if GlobalRedisClient != nil {
		GlobalRateLimiter = rate_limiter.NewRedisRateLimiter(GlobalRedisClient)
	}

	if cfg.Scheduler.Enabled {
		var lock distributed_lock.DistributedLock
		if GlobalRedisClient != nil {
			lock = distributed_lock.NewRedisLock(GlobalRedisClient)
		}
		GlobalScheduler = scheduler.NewQualityScheduler(cfg.Scheduler, GlobalOrchestrator, GlobalFileSource, lock)
		if err := GlobalScheduler.Start(); err != nil {
			slog.Error("启动定时质量检查调度器失败", "error", err)
		}
	}

	initHealthChecks()

	slog.Info("服务初始化完成", "agents", len(GlobalOrchestrator.Agents()))
}

// initHealthChecks 注册依赖健康探针
func initHealthChecks() {
	GlobalHealth = monitoring.NewHealthChecker(3 * time.Second)
	GlobalHealth.AddCheck("data_dir", "filesystem", func(ctx context.Context) error {
		_, err := GlobalFileSource.List(ctx)
		return err
	})
	if GlobalRedisClient != nil {
		GlobalHealth.AddCheck("redis", "cache", func(ctx context.Context) error {
			return GlobalRedisClient.Ping(ctx).Err()
		})
	}
	if GlobalTableSource != nil {
		GlobalHealth.AddCheck("database", "database", GlobalTableSource.Ping)
	}
}

// Shutdown 释放调度器、Kafka 与 Redis 资源
func Shutdown() {
	if GlobalScheduler != nil {
		GlobalScheduler.Stop()
	}
	if GlobalPublisher != nil {
		if err := GlobalPublisher.Close(); err != nil {
			slog.Error("关闭报告发布器失败", "error", err)
		}
	}
	if GlobalRedisClient != nil {
		if err := GlobalRedisClient.Close(); err != nil {
			slog.Error("关闭Redis客户端失败", "error", err)
		}
	}
	slog.Info("服务资源已释放")
}
