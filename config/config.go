package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`

	// file | postgres | redis
	StorageDriver string `mapstructure:"storage_driver"`
	DataFile      string `mapstructure:"data_file"`

	Host       string `mapstructure:"host"`
	DBName     string `mapstructure:"dbname"`
	User_DB    string `mapstructure:"userdb"`
	PasswordDB string `mapstructure:"passworddb"`
	DBPort     int    `mapstructure:"dbport"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisKey      string `mapstructure:"redis_key"`

	Admins     []int64 `mapstructure:"admins"`
	TgApiToken string  `mapstructure:"tg_api_token"`

	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`

	TickInterval     time.Duration `mapstructure:"tick_interval"`
	AutosaveInterval time.Duration `mapstructure:"autosave_interval"`
	PDFTimeout       time.Duration `mapstructure:"pdf_timeout"`
	ChromePath       string        `mapstructure:"chrome_path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "3001")
	v.SetDefault("storage_driver", "file")
	v.SetDefault("data_file", "./data/matches.json")
	v.SetDefault("dbport", 5432)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_key", "rugby_matches")
	v.SetDefault("amqp_exchange", "rugby.matches")
	v.SetDefault("tick_interval", time.Second)
	v.SetDefault("autosave_interval", 30*time.Second)
	v.SetDefault("pdf_timeout", 30*time.Second)
}

// InitConfig читает config.yaml из переданных каталогов (по умолчанию ./config).
// Отсутствие файла не ошибка: используются значения по умолчанию и переменные RUGBY_*.
func InitConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("rugby")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("init config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case "file", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage_driver %q", c.StorageDriver)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive")
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave_interval must be positive")
	}
	return nil
}

func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Admins {
		if id == chatID {
			return true
		}
	}
	return false
}

// PostgresDSN собирает строку подключения для gorm/postgres.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
		c.Host, c.User_DB, c.PasswordDB, c.DBName, c.DBPort)
}
