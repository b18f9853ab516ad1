package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"healthvault-data/pkg/database"
	"healthvault-data/pkg/mqttclient"
)

// Config healthvault-data（HTTP API）配置
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  database.Config
	Redis     struct {
		Addr     string
		Password string
		DB       int
	}
	Log struct {
		Level  string
		Format string
	}
	Catalog CatalogConfig
	MQTT    MQTTConfig
}

// CatalogConfig 基因疾病目录同步服务配置
type CatalogConfig struct {
	HttpAddress string // 目录服务地址
	APIKey      string // API Key
	SyncOnBoot  bool   // 启动时是否拉取远端目录更新（默认 false）
}

// MQTTConfig MQTT 配置（用于家用设备体征数据接入）
type MQTTConfig struct {
	Enabled  bool   // 是否启用 MQTT 接入（默认 false）
	Broker   string // MQTT Broker 地址（如 "tcp://localhost:1883"）
	ClientID string // 客户端 ID
	Username string // 用户名（可选）
	Password string // 密码（可选）
	Topic    string // 订阅的主题（如 "healthvault/vitals/#"）
}

func Load() *Config {
	// 本地开发支持 .env（不存在时忽略）
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "healthvault")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 目录同步配置
	cfg.Catalog.HttpAddress = getEnv("CATALOG_HTTP_ADDRESS", "")
	cfg.Catalog.APIKey = getEnv("CATALOG_API_KEY", "")
	cfg.Catalog.SyncOnBoot = getEnv("CATALOG_SYNC_ON_BOOT", "false") == "true"

	// MQTT 配置（设备体征接入，默认禁用）
	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "healthvault-data-vitals")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "healthvault/vitals/#")

	return cfg
}

// MQTTClientConfig 转换为 pkg/mqttclient 连接配置
func (c *Config) MQTTClientConfig() *mqttclient.Config {
	return &mqttclient.Config{
		Broker:   c.MQTT.Broker,
		ClientID: c.MQTT.ClientID,
		Username: c.MQTT.Username,
		Password: c.MQTT.Password,
		QoS:      1,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
