package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageProviderS3         = "s3"
	StorageProviderCloudinary = "cloudinary"
)

type Config struct {
	App struct {
		Port           string        `mapstructure:"port"`
		Env            string        `mapstructure:"env"`
		AllowedOrigins []string      `mapstructure:"allowed_origins"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Storage struct {
		Provider string `mapstructure:"provider"`
		Bucket   string `mapstructure:"bucket"`
		Region   string `mapstructure:"region"`
		Prefix   string `mapstructure:"prefix"`
	} `mapstructure:"storage"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Upload struct {
		MaxCertificates      int   `mapstructure:"max_certificates"`
		MaxAchievementImages int   `mapstructure:"max_achievement_images"`
		Concurrency          int   `mapstructure:"concurrency"`
		MaxMemoryBytes       int64 `mapstructure:"max_memory_bytes"`
		CleanupOrphans       bool  `mapstructure:"cleanup_orphans"`
	} `mapstructure:"upload"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
		ServiceName  string `mapstructure:"service_name"`
	} `mapstructure:"tracing"`
}

// LoadConfig reads .env and config.yaml from each of paths (default ".") and lets
// environment variables override them.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	v := viper.New()
	for _, p := range paths {
		if err := godotenv.Load(strings.TrimSuffix(p, "/") + "/.env"); err == nil {
			log.Printf("loaded .env from %s", p)
		}
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "PORT", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.allowed_origins", "ALLOWED_ORIGINS")
	v.BindEnv("app.request_timeout", "REQUEST_TIMEOUT")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")

	v.BindEnv("storage.provider", "STORAGE_PROVIDER")
	v.BindEnv("storage.bucket", "AWS_BUCKET_NAME")
	v.BindEnv("storage.region", "AWS_REGION")
	v.BindEnv("storage.prefix", "STORAGE_PREFIX")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("upload.concurrency", "UPLOAD_CONCURRENCY")
	v.BindEnv("upload.cleanup_orphans", "UPLOAD_CLEANUP_ORPHANS")

	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")
	v.BindEnv("tracing.service_name", "OTEL_SERVICE_NAME")

	if err = v.Unmarshal(&cfg); err != nil {
		return
	}

	// Comma lists arrive from env as a single element.
	cfg.App.AllowedOrigins = splitList(cfg.App.AllowedOrigins)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "4000")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.request_timeout", 30*time.Second)
	v.SetDefault("storage.provider", StorageProviderS3)
	v.SetDefault("storage.prefix", "uploads")
	v.SetDefault("upload.max_certificates", 3)
	v.SetDefault("upload.max_achievement_images", 10)
	v.SetDefault("upload.concurrency", 4)
	v.SetDefault("upload.max_memory_bytes", 32<<20)
	v.SetDefault("upload.cleanup_orphans", false)
	v.SetDefault("tracing.service_name", "member-directory")
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
