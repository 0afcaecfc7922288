package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver      string        `mapstructure:"DB_DRIVER"`
	DBHost        string        `mapstructure:"DB_HOST"`
	DBPort        string        `mapstructure:"DB_PORT"`
	DBUser        string        `mapstructure:"DB_USER"`
	DBPassword    string        `mapstructure:"DB_PASSWORD"`
	DBName        string        `mapstructure:"DB_NAME"`
	RedisHost     string        `mapstructure:"REDIS_HOST"`
	RedisPort     string        `mapstructure:"REDIS_PORT"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	SessionSecret string        `mapstructure:"SESSION_SECRET"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	JWTTTL        time.Duration `mapstructure:"JWT_TTL"`
	GinMode       string        `mapstructure:"GIN_MODE"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	ListenAddr    string        `mapstructure:"LISTEN_ADDR"`
	OpenAIAPIKey  string        `mapstructure:"OPENAI_API_KEY"`

	// EventBus selects how todo mutations reach the stats handlers: "inline"
	// dispatches in-process, "redis" publishes for the functions worker.
	EventBus      string `mapstructure:"EVENT_BUS"`
	EventsChannel string `mapstructure:"EVENTS_CHANNEL"`

	StatsShardCount      int `mapstructure:"STATS_SHARD_COUNT"`
	DashboardSampleLimit int `mapstructure:"DASHBOARD_SAMPLE_LIMIT"`

	GoogleCredentialsFile string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	ReportSink            string `mapstructure:"REPORT_SINK"`
	ReportOutboxKey       string `mapstructure:"REPORT_OUTBOX_KEY"`
}

var defaults = map[string]any{
	"DB_DRIVER":               "mysql",
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "3306",
	"DB_USER":                 "taskuser",
	"DB_PASSWORD":             "taskpassword",
	"DB_NAME":                 "team_todo",
	"REDIS_HOST":              "localhost",
	"REDIS_PORT":              "6379",
	"REDIS_PASSWORD":          "",
	"SESSION_SECRET":          "default-secret-key-change-me",
	"JWT_SECRET":              "default-jwt-secret-change-me",
	"JWT_TTL":                 "24h",
	"GIN_MODE":                "debug",
	"LOG_LEVEL":               "info",
	"LISTEN_ADDR":             ":8080",
	"OPENAI_API_KEY":          "",
	"EVENT_BUS":               "inline",
	"EVENTS_CHANNEL":          "todo-mutations",
	"STATS_SHARD_COUNT":       10,
	"DASHBOARD_SAMPLE_LIMIT":  500,
	"GOOGLE_CREDENTIALS_FILE": "",
	"REPORT_SINK":             "log",
	"REPORT_OUTBOX_KEY":       "reports:outbox",
}

// Load reads configuration from the environment, optionally layered over the
// file named by CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("CONFIG_FILE"); err != nil {
		return nil, err
	}
	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RedisAddr returns host:port for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}
