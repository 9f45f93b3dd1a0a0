package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Значения по умолчанию для порогов выбора стратегии синхронизации.
// Пороги вынесены в конфигурацию, чтобы не прятать их в коде движка.
const (
	DefaultIncrementalWindow = 24 * time.Hour
	DefaultFullAfter         = 7 * 24 * time.Hour
	DefaultCallsPerMinute    = 120
	DefaultBackoffMultiplier = 1.5
	DefaultScheduleInterval  = 15 * time.Minute
)

type Config struct {
	Env       string
	Server    server
	DB        db
	Platform  platform
	Sync      syncCfg
	RateLimit rateLimit
	Scheduler scheduler
	Logger    logger
	Secret    string
}

type server struct {
	RunAddress string `env:"RUN_ADDRESS"`
}

type db struct {
	// Driver: "postgres" или "sqlite"
	Driver      string `env:"DB_DRIVER"`
	DatabaseURI string `env:"DATABASE_URI"`
	Migrations  string `env:"MIGRATIONS_PATH"`
	SQLitePath  string `env:"SQLITE_PATH"`
	IndexPath   string `env:"SEARCH_INDEX_PATH"`
}

type platform struct {
	BaseURL string `env:"PLATFORM_BASE_URL"`
}

type syncCfg struct {
	// IncrementalWindow — максимальный возраст маркера для инкрементальной стратегии
	IncrementalWindow time.Duration `env:"SYNC_INCREMENTAL_WINDOW"`
	// FullAfter — возраст маркера, после которого выполняется полная синхронизация
	FullAfter time.Duration `env:"SYNC_FULL_AFTER"`
}

type rateLimit struct {
	CallsPerMinute    int     `env:"RATE_CALLS_PER_MINUTE"`
	BackoffMultiplier float64 `env:"RATE_BACKOFF_MULTIPLIER"`
}

type scheduler struct {
	Enabled  bool          `env:"SCHEDULER_ENABLED"`
	Interval time.Duration `env:"SCHEDULER_INTERVAL"`
}

type logger struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MustLoad загружает конфигурацию из окружения и .env файла
func MustLoad() *Config {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	viper.AutomaticEnv()

	config := Config{
		Env:    viper.GetString("app_env"),
		Secret: viper.GetString("secret"),
		Server: server{RunAddress: viper.GetString("run_address")},
		DB: db{
			Driver:      viper.GetString("db_driver"),
			DatabaseURI: viper.GetString("database_uri"),
			Migrations:  viper.GetString("migrations_path"),
			SQLitePath:  viper.GetString("sqlite_path"),
			IndexPath:   viper.GetString("search_index_path"),
		},
		Platform: platform{BaseURL: viper.GetString("platform_base_url")},
		Sync: syncCfg{
			IncrementalWindow: viper.GetDuration("sync_incremental_window"),
			FullAfter:         viper.GetDuration("sync_full_after"),
		},
		RateLimit: rateLimit{
			CallsPerMinute:    viper.GetInt("rate_calls_per_minute"),
			BackoffMultiplier: viper.GetFloat64("rate_backoff_multiplier"),
		},
		Scheduler: scheduler{
			Enabled:  viper.GetBool("scheduler_enabled"),
			Interval: viper.GetDuration("scheduler_interval"),
		},
		Logger: logger{LogLevel: viper.GetString("log_level")},
	}

	if config.Env == "" {
		config.Env = EnvLocal
	}
	if config.DB.Driver == "" {
		config.DB.Driver = "sqlite"
	}
	if config.DB.SQLitePath == "" {
		config.DB.SQLitePath = "storesync.db"
	}
	if config.DB.IndexPath == "" {
		config.DB.IndexPath = "storesync.index.db"
	}
	if config.Server.RunAddress == "" {
		config.Server.RunAddress = ":8080"
	}
	if config.Sync.IncrementalWindow <= 0 {
		config.Sync.IncrementalWindow = DefaultIncrementalWindow
	}
	if config.Sync.FullAfter <= 0 {
		config.Sync.FullAfter = DefaultFullAfter
	}
	if config.RateLimit.CallsPerMinute <= 0 {
		config.RateLimit.CallsPerMinute = DefaultCallsPerMinute
	}
	if config.RateLimit.BackoffMultiplier <= 0 {
		config.RateLimit.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if config.Scheduler.Interval <= 0 {
		config.Scheduler.Interval = DefaultScheduleInterval
	}

	return &config
}
