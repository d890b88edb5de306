package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB      int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB       int    `mapstructure:"REDIS_AUTH_DB"`
	RedisTaskQueueDB  int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Negotiation engine knobs.
	MatchWindowMinutes int     `mapstructure:"MATCH_WINDOW_MINUTES"`
	OfferTTLMinutes    int     `mapstructure:"OFFER_TTL_MINUTES"`
	BidTTLMinutes      int     `mapstructure:"BID_TTL_MINUTES"`
	MatchRadiusKm      float64 `mapstructure:"MATCH_RADIUS_KM"`
	SweepIntervalSecs  int     `mapstructure:"SWEEP_INTERVAL_SECS"`

	// Firebase service account for FCM pushes.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "trimly")
	viper.SetDefault("MATCH_WINDOW_MINUTES", 15)
	viper.SetDefault("OFFER_TTL_MINUTES", 15)
	viper.SetDefault("BID_TTL_MINUTES", 60)
	viper.SetDefault("MATCH_RADIUS_KM", 10.0)
	viper.SetDefault("SWEEP_INTERVAL_SECS", 60)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// MatchWindow is how long an immediate request stays open for responses.
func MatchWindow() time.Duration {
	return time.Duration(AppConfig.MatchWindowMinutes) * time.Minute
}

// OfferTTL is how long a posted offer stays actionable.
func OfferTTL() time.Duration {
	return time.Duration(AppConfig.OfferTTLMinutes) * time.Minute
}

// BidTTL is how long a barber's bid may sit pending without the customer
// engaging before the sweep expires it and the barber may bid again.
func BidTTL() time.Duration {
	return time.Duration(AppConfig.BidTTLMinutes) * time.Minute
}

// SweepInterval is how often the expiry sweep runs.
func SweepInterval() time.Duration {
	return time.Duration(AppConfig.SweepIntervalSecs) * time.Second
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
