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

	JWT struct {
		Secret string `yaml:"secret"`
		TTL    int    `yaml:"ttl"` // minutes
	} `yaml:"jwt"`

	Trust struct {
		// Code payloads are signed with this secret; falls back to
		// JWT.Secret when empty.
		CodeSecret string `yaml:"code_secret"`

		NoShowBanThreshold  int `yaml:"no_show_ban_threshold"` // no-shows within the window that trigger a ban
		NoShowWindowDays    int `yaml:"no_show_window_days"`
		CheckinGraceMinutes int `yaml:"checkin_grace_minutes"` // arrivals inside shift_start ± grace are on time
		// GeofenceRadiusMeters 0 means no radius is configured: distance
		// is recorded but never blocks.
		GeofenceRadiusMeters float64 `yaml:"geofence_radius_meters"`
		WorkerCodeTTLMinutes int     `yaml:"worker_code_ttl_minutes"`
		OnTimeStreakLength   int     `yaml:"on_time_streak_length"`
		PenaltyFreezeDays    int     `yaml:"penalty_freeze_days"`
	} `yaml:"trust"`
}

var AppConfig *Config

// LoadConfig reads config.yaml, or environment variables when
// DATABASE_URL is set (test and container deployments).
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

		applyTrustDefaults(&cfg)
		AppConfig = &cfg
		return
	}

	cfg.Database.DSN = dbURL
	cfg.Server.Env = os.Getenv("SERVER_ENV")
	cfg.Server.Port, _ = strconv.Atoi(os.Getenv("SERVER_PORT"))
	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.TTL = 60
	cfg.Trust.CodeSecret = os.Getenv("TRUST_CODE_SECRET")

	applyTrustDefaults(&cfg)
	AppConfig = &cfg
}

func applyTrustDefaults(cfg *Config) {
	if cfg.Trust.NoShowBanThreshold == 0 {
		cfg.Trust.NoShowBanThreshold = 3
	}
	if cfg.Trust.NoShowWindowDays == 0 {
		cfg.Trust.NoShowWindowDays = 30
	}
	if cfg.Trust.CheckinGraceMinutes == 0 {
		cfg.Trust.CheckinGraceMinutes = 15
	}
	if cfg.Trust.WorkerCodeTTLMinutes == 0 {
		cfg.Trust.WorkerCodeTTLMinutes = 240
	}
	if cfg.Trust.OnTimeStreakLength == 0 {
		cfg.Trust.OnTimeStreakLength = 5
	}
	if cfg.Trust.PenaltyFreezeDays == 0 {
		cfg.Trust.PenaltyFreezeDays = 7
	}
	if cfg.Trust.CodeSecret == "" {
		cfg.Trust.CodeSecret = cfg.JWT.Secret
	}
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}
