package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     int
	StorageBackend string
	MQBackend      string
	Database       DatabaseConfig
	Minio          MinioConfig
	GCS            GCSConfig
	RabbitMQ       RabbitMQConfig
	PubSub         PubSubConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// MinioConfig configures the MinIO backend for résumé storage.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// GCSConfig configures the Google Cloud Storage backend for résumé storage.
type GCSConfig struct {
	ProjectID       string
	Bucket          string
	CredentialsFile string
}

// RabbitMQConfig configures the RabbitMQ backend for event publishing.
type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

// PubSubConfig configures the Google Cloud Pub/Sub backend for event publishing.
type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "empleo"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "empleo_corredor"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	minioConfig := MinioConfig{
		Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		SecretKey: getEnv("MINIO_SECRET_KEY", ""),
		Bucket:    getEnv("MINIO_BUCKET", "resumes"),
		UseSSL:    getEnvBool("MINIO_USE_SSL", false),
	}

	gcsConfig := GCSConfig{
		ProjectID:       getEnv("GCS_PROJECT_ID", ""),
		Bucket:          getEnv("GCS_BUCKET", ""),
		CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
	}

	rabbitConfig := RabbitMQConfig{
		URL:             getEnv("RABBITMQ_URL", ""),
		QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
		QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
		PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH_COUNT", 0),
	}

	pubsubConfig := PubSubConfig{
		ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
		CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
		SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
	}

	return Config{
		ServerPort:     getEnvInt("SERVER_PORT", 8080),
		StorageBackend: getEnv("STORAGE_BACKEND", "minio"),
		MQBackend:      getEnv("MQ_BACKEND", "none"),
		Database:       dbConfig,
		Minio:          minioConfig,
		GCS:            gcsConfig,
		RabbitMQ:       rabbitConfig,
		PubSub:         pubsubConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}
