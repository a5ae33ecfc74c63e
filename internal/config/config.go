package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-required:"true"`
	AppID      uint32 `yaml:"app_id" env:"APP_ID" env-required:"true"`
	Database   `yaml:"database"`
	HTTPServer `yaml:"http_server"`
	Clients    ClientsConfig `yaml:"clients"`
	Redis      Redis         `yaml:"redis"`
}

type Database struct {
	Host        string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port        int    `yaml:"port" env:"DB_PORT" env-default:"3306"`
	UsernameDB  string `yaml:"username-db" env:"DB_USERNAME" env-required:"true"`
	Password    string `yaml:"password" env:"DB_PASSWORD"`
	DBName      string `yaml:"dbname" env:"DB_NAME" env-default:"bowl_picks"`
	TablePrefix string `yaml:"table_prefix" env:"DB_TABLE_PREFIX" env-default:"bowl_game_picks_"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	Cors        []string      `yaml:"cors" env-default:"http://localhost:3000"`
}

type Client struct {
	Address      string        `yaml:"address" env-required:"true"`
	Timeout      time.Duration `yaml:"timeout" env-default:"5s"`
	RetriesCount int           `yaml:"retries_count" env-default:"3"`
	Insecure     bool          `yaml:"insecure" env:"SSO_INSECURE" env-default:"true"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

// Redis is optional: with an empty address the leaderboard is computed on every request.
type Redis struct {
	Address        string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password       string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB             int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	LeaderboardTTL time.Duration `yaml:"leaderboard_ttl" env-default:"1m"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}

func MustLoad() *Config {
	configPath := flag.String("config", "", "path to config yaml file")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("cannot read config: %s - %s", path, err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: config file does not exist: %s", op, path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

func (cfg *Database) GetDSN() string {
	c := mysql.NewConfig()
	c.User = cfg.UsernameDB
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	c.DBName = cfg.DBName
	c.ParseTime = true

	return c.FormatDSN()
}
