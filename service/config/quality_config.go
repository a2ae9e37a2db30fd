/*
 * @module service/config/quality_config
 * @description 数据质量服务配置，包含阈值、权重、并发、LLM、数据源、Redis、Kafka、调度与日志配置
 * @architecture 分层架构 - 配置层
 * @documentReference ai_docs/data_quality_pipeline.md
 * @stateFlow 默认配置 -> YAML文件覆盖 -> 环境变量覆盖 -> 校验 -> 只读使用
 * @rules 配置加载后视为不可变值对象，权重之和偏离1.0时仅告警不报错
 * @dependencies gopkg.in/yaml.v3, github.com/spf13/cast, github.com/go-playground/validator/v10
 * @refs service/agents, service/scoring, service/orchestration
 */

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"dataquality-service/service/models"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量覆盖前缀
const EnvPrefix = "DQ_"

// QualityConfig 数据质量服务配置
type QualityConfig struct {
	Thresholds map[string]float64 `json:"thresholds" yaml:"thresholds" validate:"dive,gte=0,lte=1"`
	Weights    map[string]float64 `json:"weights" yaml:"weights" validate:"dive,gte=0"`
	Processing ProcessingConfig   `json:"processing" yaml:"processing"`
	LLM        LLMConfig          `json:"llm" yaml:"llm"`
	Sources    SourcesConfig      `json:"sources" yaml:"sources"`
	Redis      RedisConfig        `json:"redis" yaml:"redis"`
	Kafka      KafkaConfig        `json:"kafka" yaml:"kafka"`
	Scheduler  SchedulerConfig    `json:"scheduler" yaml:"scheduler"`
	Log        LogConfig          `json:"log" yaml:"log"`
}

// ProcessingConfig 分析并发与超时配置
type ProcessingConfig struct {
	MaxConcurrentWorkers int `json:"max_concurrent_workers" yaml:"max_concurrent_workers" validate:"gte=1"`
	TimeoutSeconds       int `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=1"`
}

// LLMConfig 摘要生成模型配置，Provider 为空时使用确定性摘要
type LLMConfig struct {
	Provider    string  `json:"provider" yaml:"provider" validate:"omitempty,oneof=ollama openai anthropic"`
	Model       string  `json:"model" yaml:"model" validate:"required_with=Provider"`
	BaseURL     string  `json:"base_url" yaml:"base_url" validate:"omitempty,url"`
	APIKey      string  `json:"-" yaml:"api_key"`
	Temperature float64 `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" validate:"gte=0"`
}

// SourcesConfig 数据源配置
type SourcesConfig struct {
	BaseDir          string   `json:"base_dir" yaml:"base_dir"`
	Encoding         string   `json:"encoding" yaml:"encoding" validate:"omitempty,oneof=utf-8 gbk"`
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats"`
	MaxSizeMB        int      `json:"max_size_mb" yaml:"max_size_mb" validate:"gte=0"`
	DatabaseDSN      string   `json:"-" yaml:"database_dsn"`
	TableRowLimit    int      `json:"table_row_limit" yaml:"table_row_limit" validate:"gte=0"`
}

// RedisConfig Redis配置，用于限流与调度锁
type RedisConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	Host          string `json:"host" yaml:"host" validate:"required_if=Enabled true"`
	Port          int    `json:"port" yaml:"port" validate:"omitempty,gte=1,lte=65535"`
	Password      string `json:"-" yaml:"password"`
	DB            int    `json:"db" yaml:"db" validate:"gte=0"`
	RateLimit     int    `json:"rate_limit" yaml:"rate_limit" validate:"gte=0"`
	WindowSeconds int    `json:"window_seconds" yaml:"window_seconds" validate:"gte=0"`
}

// KafkaConfig 报告事件发布配置
type KafkaConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `json:"topic" yaml:"topic" validate:"required_if=Enabled true"`
}

// SchedulerConfig 定时质量检查配置
type SchedulerConfig struct {
	Enabled        bool     `json:"enabled" yaml:"enabled"`
	Cron           string   `json:"cron" yaml:"cron" validate:"required_if=Enabled true"`
	Files          []string `json:"files" yaml:"files"`
	LockTTLSeconds int      `json:"lock_ttl_seconds" yaml:"lock_ttl_seconds" validate:"gte=0"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string `json:"level" yaml:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Console bool   `json:"console" yaml:"console"`
}

// DefaultConfig 默认配置
func DefaultConfig() *QualityConfig {
	return &QualityConfig{
		Thresholds: map[string]float64{
			"completeness": 0.95,
			"uniqueness":   0.98,
			"consistency":  0.90,
			"validity":     0.95,
			"accuracy":     0.90,
			"integrity":    0.95,
			"timeliness":   0.85,
			"conformity":   0.90,
			"range":        0.95,
			"blanks":       0.95,
			"outliers":     0.90,
		},
		Weights: map[string]float64{
			"completeness": 0.15,
			"uniqueness":   0.15,
			"consistency":  0.10,
			"validity":     0.15,
			"accuracy":     0.15,
			"integrity":    0.10,
			"timeliness":   0.05,
			"conformity":   0.05,
			"range":        0.05,
			"blanks":       0.03,
			"outliers":     0.02,
		},
		Processing: ProcessingConfig{
			MaxConcurrentWorkers: 5,
			TimeoutSeconds:       300,
		},
		LLM: LLMConfig{
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Sources: SourcesConfig{
			BaseDir:          "data",
			Encoding:         "utf-8",
			SupportedFormats: []string{"csv", "json"},
			MaxSizeMB:        50,
			TableRowLimit:    10000,
		},
		Redis: RedisConfig{
			Host:          "localhost",
			Port:          6379,
			RateLimit:     30,
			WindowSeconds: 60,
		},
		Kafka: KafkaConfig{
			Topic: "data-quality-reports",
		},
		Scheduler: SchedulerConfig{
			Cron:           "0 0 2 * * *",
			LockTTLSeconds: 600,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load 加载配置：默认值 -> YAML 文件（存在时）-> 环境变量 -> 校验
func Load(path string) (*QualityConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("解析配置文件失败: %w", err)
			}
			slog.Info("已加载配置文件", "path", path)
		case errors.Is(err, os.ErrNotExist):
			slog.Warn("配置文件不存在，使用默认配置", "path", path)
		default:
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg, os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if sum := cfg.WeightSum(); math.Abs(sum-1.0) > 1e-6 {
		slog.Warn("质量维度权重之和不等于1.0，总分按已实现维度的权重归一化", "weight_sum", sum)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate 校验配置
func (c *QualityConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}
	for key := range c.Thresholds {
		if _, err := models.ParseMetric(key); err != nil {
			return fmt.Errorf("配置验证失败: thresholds.%s: %w", key, err)
		}
	}
	for key := range c.Weights {
		if _, err := models.ParseMetric(key); err != nil {
			return fmt.Errorf("配置验证失败: weights.%s: %w", key, err)
		}
	}
	return nil
}

// Threshold 获取维度阈值，未配置时为0
func (c *QualityConfig) Threshold(metric models.DataQualityMetric) float64 {
	return c.Thresholds[metricKey(metric)]
}

// Weight 获取维度权重，未配置时为0
func (c *QualityConfig) Weight(metric models.DataQualityMetric) float64 {
	return c.Weights[metricKey(metric)]
}

// WeightSum 全部维度权重之和
func (c *QualityConfig) WeightSum() float64 {
	sum := 0.0
	for _, metric := range models.AllMetrics() {
		sum += c.Weight(metric)
	}
	return sum
}

// Timeout 单次分析的超时时间
func (c *QualityConfig) Timeout() time.Duration {
	return time.Duration(c.Processing.TimeoutSeconds) * time.Second
}

func metricKey(metric models.DataQualityMetric) string {
	return strings.ToLower(string(metric))
}
