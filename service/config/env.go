package config

import (
	"fmt"
	"strings"

	"dataquality-service/service/models"

	"github.com/spf13/cast"
)

// applyEnvOverrides 应用 DQ_ 前缀环境变量覆盖，getenv 便于测试注入
func applyEnvOverrides(cfg *QualityConfig, getenv func(string) string) error {
	var errs []string

	str := func(key string, target *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*target = v
		}
	}
	integer := func(key string, target *int) {
		if v := getenv(EnvPrefix + key); v != "" {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s=%q 不是整数", EnvPrefix, key, v))
				return
			}
			*target = n
		}
	}
	float := func(key string, target *float64) {
		if v := getenv(EnvPrefix + key); v != "" {
			f, err := cast.ToFloat64E(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s=%q 不是数字", EnvPrefix, key, v))
				return
			}
			*target = f
		}
	}
	boolean := func(key string, target *bool) {
		if v := getenv(EnvPrefix + key); v != "" {
			b, err := cast.ToBoolE(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s=%q 不是布尔值", EnvPrefix, key, v))
				return
			}
			*target = b
		}
	}
	list := func(key string, target *[]string) {
		if v := getenv(EnvPrefix + key); v != "" {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*target = items
		}
	}

	for _, metric := range models.AllMetrics() {
		key := metricKey(metric)
		name := strings.ToUpper(key)
		if v := getenv(EnvPrefix + "THRESHOLD_" + name); v != "" {
			value := cfg.Thresholds[key]
			float("THRESHOLD_"+name, &value)
			cfg.Thresholds[key] = value
		}
		if v := getenv(EnvPrefix + "WEIGHT_" + name); v != "" {
			value := cfg.Weights[key]
			float("WEIGHT_"+name, &value)
			cfg.Weights[key] = value
		}
	}

	integer("PROCESSING_MAX_CONCURRENT_WORKERS", &cfg.Processing.MaxConcurrentWorkers)
	integer("PROCESSING_TIMEOUT_SECONDS", &cfg.Processing.TimeoutSeconds)

	str("LLM_PROVIDER", &cfg.LLM.Provider)
	str("LLM_MODEL", &cfg.LLM.Model)
	str("LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("LLM_API_KEY", &cfg.LLM.APIKey)
	float("LLM_TEMPERATURE", &cfg.LLM.Temperature)
	integer("LLM_MAX_TOKENS", &cfg.LLM.MaxTokens)

	str("SOURCES_BASE_DIR", &cfg.Sources.BaseDir)
	str("SOURCES_ENCODING", &cfg.Sources.Encoding)
	list("SOURCES_SUPPORTED_FORMATS", &cfg.Sources.SupportedFormats)
	integer("SOURCES_MAX_SIZE_MB", &cfg.Sources.MaxSizeMB)
	str("SOURCES_DATABASE_DSN", &cfg.Sources.DatabaseDSN)
	integer("SOURCES_TABLE_ROW_LIMIT", &cfg.Sources.TableRowLimit)

	boolean("REDIS_ENABLED", &cfg.Redis.Enabled)
	str("REDIS_HOST", &cfg.Redis.Host)
	integer("REDIS_PORT", &cfg.Redis.Port)
	str("REDIS_PASSWORD", &cfg.Redis.Password)
	integer("REDIS_DB", &cfg.Redis.DB)
	integer("REDIS_RATE_LIMIT", &cfg.Redis.RateLimit)
	integer("REDIS_WINDOW_SECONDS", &cfg.Redis.WindowSeconds)

	boolean("KAFKA_ENABLED", &cfg.Kafka.Enabled)
	list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	str("KAFKA_TOPIC", &cfg.Kafka.Topic)

	boolean("SCHEDULER_ENABLED", &cfg.Scheduler.Enabled)
	str("SCHEDULER_CRON", &cfg.Scheduler.Cron)
	list("SCHEDULER_FILES", &cfg.Scheduler.Files)
	integer("SCHEDULER_LOCK_TTL_SECONDS", &cfg.Scheduler.LockTTLSeconds)

	str("LOG_LEVEL", &cfg.Log.Level)
	boolean("LOG_CONSOLE", &cfg.Log.Console)

	if len(errs) > 0 {
		return fmt.Errorf("环境变量配置无效: %s", strings.Join(errs, "; "))
	}
	return nil
}
