package config

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
	databaseDSNENV    = "DATABASE_DSN"
	webhookSecretENV  = "WEBHOOK_SECRET"
	cacheFileENV      = "CACHE_FILE"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `mapstructure:"token"`
		ChatID int64  `mapstructure:"chat_id"`
	} `mapstructure:"telegram"`
	DB      string `mapstructure:"db_dsn"`
	Service struct {
		Host       string `mapstructure:"host"`
		PublicPort int    `mapstructure:"public_port"`
		AdminPort  int    `mapstructure:"admin_port"`
	} `mapstructure:"service"`

	Webhook struct {
		URL    string `mapstructure:"url"`
		Secret string `mapstructure:"secret"`
	} `mapstructure:"webhook"`

	Cache struct {
		File string `mapstructure:"file"`
	} `mapstructure:"cache"`

	Scan struct {
		Interval        time.Duration `mapstructure:"interval"`
		MonitorInterval time.Duration `mapstructure:"monitor_interval"`
		ErrorBackoff    time.Duration `mapstructure:"error_backoff"`
		CandleLimit     int           `mapstructure:"candle_limit"`
		MinCandles      int           `mapstructure:"min_candles"`
	} `mapstructure:"scan"`

	// Пауза между алертами по одной паре
	AlertCooldown time.Duration `mapstructure:"alert_cooldown"`

	WatchlistFile string `mapstructure:"watchlist_file"`

	Exchange struct {
		RESTBaseURL string        `mapstructure:"rest_base_url"`
		WSBaseURL   string        `mapstructure:"ws_base_url"`
		PriceMaxAge time.Duration `mapstructure:"price_max_age"`
	} `mapstructure:"exchange"`

	Jaeger struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"jaeger"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}

	v := viper.New()
	v.SetConfigFile("configs/" + configFileName)
	v.SetConfigType("yaml")

	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.public_port", 8000)
	v.SetDefault("service.admin_port", 8084)
	v.SetDefault("cache.file", "signal_cache.json")
	v.SetDefault("scan.interval", durationFromEnv("SCAN_INTERVAL", "3m"))
	v.SetDefault("scan.monitor_interval", durationFromEnv("MONITOR_INTERVAL", "2m"))
	v.SetDefault("scan.error_backoff", "30s")
	v.SetDefault("scan.candle_limit", intFromEnv("CANDLE_LIMIT", 100))
	v.SetDefault("scan.min_candles", 21)
	v.SetDefault("alert_cooldown", "120s")
	v.SetDefault("watchlist_file", "configs/watchlist.yaml")
	v.SetDefault("exchange.rest_base_url", "https://api.binance.com")
	v.SetDefault("exchange.ws_base_url", "wss://stream.binance.com:9443")
	v.SetDefault("exchange.price_max_age", "30s")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if chatID := os.Getenv(chatIDTelegramENV); chatID != "" {
		if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}
	if dsn := os.Getenv(databaseDSNENV); dsn != "" {
		config.DB = dsn
	}
	if secret := os.Getenv(webhookSecretENV); secret != "" {
		config.Webhook.Secret = secret
	}
	if cacheFile := os.Getenv(cacheFileENV); cacheFile != "" {
		config.Cache.File = cacheFile
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
