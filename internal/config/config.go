package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TotalModeDistinct = "distinct"
	TotalModeWeighted = "weighted"
)

// Config holds environment-driven configuration.
type Config struct {
	Addr        string
	DatabaseURL string

	RedisAddr       string
	RedisPassword   string
	CatalogCacheTTL time.Duration

	KafkaBrokers     []string
	OrderEventsTopic string
	OutboxInterval   time.Duration
	RelayMetricsAddr string

	AutoRegisterUsers      bool
	ForwardOnlyOrderStatus bool
	OrderTotalMode         string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() Config {
	_ = godotenv.Load()

	mode := strings.ToLower(getEnv("ORDER_TOTAL_MODE", TotalModeDistinct))
	if mode != TotalModeWeighted {
		mode = TotalModeDistinct
	}

	return Config{
		Addr:                   getEnv("SHOP_ADDR", ":8080"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		CatalogCacheTTL:        getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		KafkaBrokers:           splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic:       getEnv("ORDER_EVENTS_TOPIC", "shop-order-events"),
		OutboxInterval:         getDuration("OUTBOX_INTERVAL", time.Second),
		RelayMetricsAddr:       getEnv("RELAY_METRICS_ADDR", ":9102"),
		AutoRegisterUsers:      getBool("AUTO_REGISTER_USERS", true),
		ForwardOnlyOrderStatus: getBool("ORDER_FORWARD_ONLY_STATUS", false),
		OrderTotalMode:         mode,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
