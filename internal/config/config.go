package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	Cache     CacheConfig
	Log       LogConfig
	Nominatim NominatimConfig
	Overpass  OverpassConfig
	Scoring   ScoringConfig
	Discovery DiscoveryConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	RawTTL    time.Duration
	RankedTTL time.Duration
	SearchTTL time.Duration
	CityTTL   time.Duration
}

type LogConfig struct {
	Level string
}

// NominatimConfig - настройки провайдера геокодирования
type NominatimConfig struct {
	BaseURL         string
	UserAgent       string
	RequestTimeout  time.Duration
	MinRequestInter time.Duration
}

// OverpassConfig - настройки провайдера точек интереса
type OverpassConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
}

// ScoringConfig - настройки сервиса оценки релевантности
type ScoringConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// DiscoveryConfig - параметры пайплайна обнаружения
type DiscoveryConfig struct {
	DefaultRadius     int
	MaxResults        int
	MovementThreshold float64
	DebounceDelay     time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			RawTTL:    time.Duration(viper.GetInt("CACHE_RAW_TTL")) * time.Second,
			RankedTTL: time.Duration(viper.GetInt("CACHE_RANKED_TTL")) * time.Second,
			SearchTTL: time.Duration(viper.GetInt("CACHE_SEARCH_TTL")) * time.Second,
			CityTTL:   time.Duration(viper.GetInt("CACHE_CITY_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Nominatim: NominatimConfig{
			BaseURL:         viper.GetString("NOMINATIM_BASE_URL"),
			UserAgent:       viper.GetString("NOMINATIM_USER_AGENT"),
			RequestTimeout:  time.Duration(viper.GetInt("NOMINATIM_TIMEOUT")) * time.Second,
			MinRequestInter: time.Duration(viper.GetInt("NOMINATIM_MIN_INTERVAL_MS")) * time.Millisecond,
		},
		Overpass: OverpassConfig{
			BaseURL:        viper.GetString("OVERPASS_BASE_URL"),
			RequestTimeout: time.Duration(viper.GetInt("OVERPASS_TIMEOUT")) * time.Second,
		},
		Scoring: ScoringConfig{
			BaseURL:        viper.GetString("SCORING_BASE_URL"),
			APIKey:         viper.GetString("SCORING_API_KEY"),
			Model:          viper.GetString("SCORING_MODEL"),
			RequestTimeout: time.Duration(viper.GetInt("SCORING_TIMEOUT")) * time.Second,
		},
		Discovery: DiscoveryConfig{
			DefaultRadius:     viper.GetInt("DISCOVERY_DEFAULT_RADIUS"),
			MaxResults:        viper.GetInt("DISCOVERY_MAX_RESULTS"),
			MovementThreshold: viper.GetFloat64("DISCOVERY_MOVEMENT_THRESHOLD"),
			DebounceDelay:     time.Duration(viper.GetInt("DISCOVERY_DEBOUNCE_MS")) * time.Millisecond,
		},
	}

	// Set default values if not provided
	if cfg.Cache.RawTTL == 0 {
		cfg.Cache.RawTTL = 30 * time.Minute
	}
	if cfg.Cache.RankedTTL == 0 {
		cfg.Cache.RankedTTL = 1 * time.Hour
	}
	if cfg.Cache.SearchTTL == 0 {
		cfg.Cache.SearchTTL = 15 * time.Minute
	}
	if cfg.Cache.CityTTL == 0 {
		cfg.Cache.CityTTL = 24 * time.Hour
	}
	if cfg.Nominatim.BaseURL == "" {
		cfg.Nominatim.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Nominatim.UserAgent == "" {
		cfg.Nominatim.UserAgent = "discovery-microservice/1.0 (attraction discovery backend)"
	}
	if cfg.Nominatim.RequestTimeout == 0 {
		cfg.Nominatim.RequestTimeout = 10 * time.Second
	}
	if cfg.Nominatim.MinRequestInter == 0 {
		cfg.Nominatim.MinRequestInter = 1000 * time.Millisecond
	}
	if cfg.Overpass.BaseURL == "" {
		cfg.Overpass.BaseURL = "https://overpass-api.de/api/interpreter"
	}
	if cfg.Overpass.RequestTimeout == 0 {
		cfg.Overpass.RequestTimeout = 20 * time.Second
	}
	if cfg.Scoring.BaseURL == "" {
		cfg.Scoring.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Scoring.Model == "" {
		cfg.Scoring.Model = "gpt-4o-mini"
	}
	if cfg.Scoring.RequestTimeout == 0 {
		cfg.Scoring.RequestTimeout = 15 * time.Second
	}
	if cfg.Discovery.DefaultRadius == 0 {
		cfg.Discovery.DefaultRadius = 5000
	}
	if cfg.Discovery.MaxResults == 0 {
		cfg.Discovery.MaxResults = 20
	}
	if cfg.Discovery.MovementThreshold == 0 {
		cfg.Discovery.MovementThreshold = 0.005
	}
	if cfg.Discovery.DebounceDelay == 0 {
		cfg.Discovery.DebounceDelay = 300 * time.Millisecond
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
