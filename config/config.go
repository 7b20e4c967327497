package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration, loaded from YAML and
// overridden by environment variables.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Engine   EngineConfig   `yaml:"engine"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// DatabaseConfig holds MySQL connection settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
	MaxIdle  int    `yaml:"maxIdle"`
	MaxOpen  int    `yaml:"maxOpen"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	ExpireTime time.Duration `yaml:"expireTime"`
	Issuer     string        `yaml:"issuer"`
}

// LogConfig holds zap/lumberjack settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

// RedisConfig holds cache connection settings.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EngineConfig holds the recommendation and feed scoring weights.
// The values are empirical; they live in configuration rather than code
// so they can be tuned without a rebuild.
type EngineConfig struct {
	FeedLikeWeight       float64       `yaml:"feedLikeWeight"`       // per like on a post
	FeedHighlightWeight  float64       `yaml:"feedHighlightWeight"`  // per friend surfacing the post
	FeedFriendPostBonus  float64       `yaml:"feedFriendPostBonus"`  // post authored by a friend
	FeedFriendLikeBonus  float64       `yaml:"feedFriendLikeBonus"`  // post liked by a friend
	FeedDecayExponent    float64       `yaml:"feedDecayExponent"`    // age decay: score / ageHours^exp
	SearchPrefixScore    int           `yaml:"searchPrefixScore"`    // name starts with term
	SearchNameScore      int           `yaml:"searchNameScore"`      // name contains term
	SearchDetailScore    int           `yaml:"searchDetailScore"`    // headline/description contains term
	SearchTopicScore     int           `yaml:"searchTopicScore"`     // any topic contains term
	SearchManyMutualsMin int           `yaml:"searchManyMutualsMin"` // mutual count treated as "many"
	InsightTopK          int           `yaml:"insightTopK"`
	SuggestionLimit      int           `yaml:"suggestionLimit"`
	FeedLimit            int           `yaml:"feedLimit"`
	CacheTTL             time.Duration `yaml:"cacheTTL"`
}

// LoadConfig loads config/config.yaml when present, falls back to
// defaults, then applies environment variable overrides.
func LoadConfig() *Config {
	config := loadFromYAML("config/config.yaml")
	overrideWithEnvVars(config)
	return config
}

func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}
	return config
}

func overrideWithEnvVars(config *Config) {
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}

	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}

	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}

	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	if k := getEnvInt("ENGINE_INSIGHT_TOP_K", 0); k > 0 {
		config.Engine.InsightTopK = k
	}
	if limit := getEnvInt("ENGINE_SUGGESTION_LIMIT", 0); limit > 0 {
		config.Engine.SuggestionLimit = limit
	}
	if limit := getEnvInt("ENGINE_FEED_LIMIT", 0); limit > 0 {
		config.Engine.FeedLimit = limit
	}
	if ttl := getEnvDuration("ENGINE_CACHE_TTL", 0); ttl > 0 {
		config.Engine.CacheTTL = ttl
	}
}

func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "friendnet",
			Password: "friendnet",
			Database: "friendnet",
			Charset:  "utf8mb4",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		JWT: JWTConfig{
			Secret:     "change-me-in-production",
			ExpireTime: 24 * time.Hour,
			Issuer:     "friendnet",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
		},
		Engine: DefaultEngineConfig(),
	}
}

// DefaultEngineConfig returns the stock scoring weights.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FeedLikeWeight:       1.5,
		FeedHighlightWeight:  6,
		FeedFriendPostBonus:  4,
		FeedFriendLikeBonus:  5,
		FeedDecayExponent:    0.25,
		SearchPrefixScore:    15,
		SearchNameScore:      10,
		SearchDetailScore:    4,
		SearchTopicScore:     5,
		SearchManyMutualsMin: 5,
		InsightTopK:          3,
		SuggestionLimit:      12,
		FeedLimit:            30,
		CacheTTL:             2 * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
