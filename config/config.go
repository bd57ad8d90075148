package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	HTTPAddress    string  `mapstructure:"http_address"`
	RPCAddress     string  `mapstructure:"rpc_address"`
	MetricsAddress string  `mapstructure:"metrics_address"`
	RateLimit      float64 `mapstructure:"rate_limit"` // inbound packets per second per connection
	RateBurst      int     `mapstructure:"rate_burst"`

	// connections silent for two intervals are dropped; 0 disables
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

type GameConfig struct {
	MaxPlayers    int           `mapstructure:"max_players"`
	MinPlayers    int           `mapstructure:"min_players"`
	RematchWindow time.Duration `mapstructure:"rematch_window"`
	CodeLength    int           `mapstructure:"code_length"`
	MaskedWord    string        `mapstructure:"masked_word"`
	WordsFile     string        `mapstructure:"words_file"`
	StatsInterval time.Duration `mapstructure:"stats_interval"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "pgx" or "postgres" (lib/pq)
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// EnvPrefix namespaces environment overrides, e.g. IMPOSTOR_GAME_MAX_PLAYERS.
const EnvPrefix = "IMPOSTOR"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", "")
	v.SetDefault("server.metrics_address", ":9090")
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.heartbeat_interval", 30*time.Second)

	v.SetDefault("game.max_players", 12)
	v.SetDefault("game.min_players", 3)
	v.SetDefault("game.rematch_window", 10*time.Second)
	v.SetDefault("game.code_length", 4)
	v.SetDefault("game.masked_word", "???")
	v.SetDefault("game.words_file", "")
	v.SetDefault("game.stats_interval", time.Minute)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "impostor")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// LoadConfig reads config.yaml from path, then applies a .env file in the
// same directory (if any) and IMPOSTOR_* environment overrides. A missing
// config file is not an error; defaults cover every key.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
