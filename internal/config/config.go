package config

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
		Env  string `yaml:"env"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`

	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
		FromName     string `yaml:"from_name"`
	} `yaml:"email"`

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // в минутах
	} `yaml:"jwt"`

	Billing struct {
		FreePlanName   string `yaml:"free_plan_name"`   // план по умолчанию, когда подписки нет
		SweepInterval  int    `yaml:"sweep_interval"`   // интервал проверки истечений, в минутах
		ExpiringNotice int    `yaml:"expiring_notice"`  // за сколько дней предупреждать об истечении
	} `yaml:"billing"`
}

var AppConfig *Config

func LoadConfig() {
	var cfg Config

	dbURL := os.Getenv("DATABASE_URL")

	if dbURL == "" {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config/config.yaml"
		}

		f, err := os.Open(configPath)
		if err != nil {
			log.Fatalf("Failed to open config file at %s: %v", configPath, err)
		}
		defer f.Close()

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			log.Fatalf("Failed to parse config file at %s: %v", configPath, err)
		}

		applyBillingDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	// Конфигурация из переменных окружения (тесты и деплой без config.yaml)
	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60

	cfg.Email.SMTPHost = "smtp.test.com"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "noreply@hirehub.io"
	cfg.Email.FromName = "HireHub"

	applyBillingDefaults(&cfg)
	AppConfig = &cfg
}

func applyBillingDefaults(cfg *Config) {
	if cfg.Billing.FreePlanName == "" {
		cfg.Billing.FreePlanName = "free"
	}
	if cfg.Billing.SweepInterval <= 0 {
		cfg.Billing.SweepInterval = 60
	}
	if cfg.Billing.ExpiringNotice <= 0 {
		cfg.Billing.ExpiringNotice = 3
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
