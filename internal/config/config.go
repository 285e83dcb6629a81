package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Port        string
	Database    DatabaseConfig
	Storage     StorageConfig
	Redis       RedisConfig
	MercadoPago MercadoPagoConfig
	MelhorEnvio MelhorEnvioConfig
	JWT         JWTConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	ConnectionString string
	MigrationsPath   string
	MaxOpenConns     int
	MaxIdleConns     int
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	Type      string // "local" or "s3"
	LocalPath string
	S3Bucket  string
	S3Region  string
	PublicURL string // base URL for public image links
}

// RedisConfig holds the catalog mirror configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MercadoPagoConfig holds payment gateway configuration
type MercadoPagoConfig struct {
	AccessToken string
	BaseURL     string
}

// MelhorEnvioConfig holds shipping gateway configuration
type MelhorEnvioConfig struct {
	Token        string
	BaseURL      string
	OriginCEP    string
	SenderName   string
	SenderPhone  string
	SenderEmail  string
	SenderCPF    string
	SenderStreet string
	SenderNumber string
	SenderDistr  string
	SenderCity   string
	SenderUF     string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_CONNECTION_STRING", "./data/store.db")
	viper.SetDefault("DB_MIGRATIONS_PATH", "./migrations")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 1)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 1)
	viper.SetDefault("STORAGE_TYPE", "local")
	viper.SetDefault("STORAGE_LOCAL_PATH", "./data/files")
	viper.SetDefault("S3_BUCKET", "product-images")
	// no REDIS_ADDR default: the catalog mirror is opt-in
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MP_BASE_URL", "https://api.mercadopago.com")
	viper.SetDefault("ME_BASE_URL", "https://melhorenvio.com.br")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		Database: DatabaseConfig{
			ConnectionString: viper.GetString("DB_CONNECTION_STRING"),
			MigrationsPath:   viper.GetString("DB_MIGRATIONS_PATH"),
			MaxOpenConns:     viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:     viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Storage: StorageConfig{
			Type:      viper.GetString("STORAGE_TYPE"),
			LocalPath: viper.GetString("STORAGE_LOCAL_PATH"),
			S3Bucket:  viper.GetString("S3_BUCKET"),
			S3Region:  viper.GetString("S3_REGION"),
			PublicURL: viper.GetString("STORAGE_PUBLIC_URL"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken: viper.GetString("MERCADO_PAGO_ACCESS_TOKEN"),
			BaseURL:     viper.GetString("MP_BASE_URL"),
		},
		MelhorEnvio: MelhorEnvioConfig{
			Token:        viper.GetString("MELHOR_ENVIO_TOKEN"),
			BaseURL:      viper.GetString("ME_BASE_URL"),
			OriginCEP:    viper.GetString("CEP_ORIGEM"),
			SenderName:   viper.GetString("SENDER_NAME"),
			SenderPhone:  viper.GetString("SENDER_PHONE"),
			SenderEmail:  viper.GetString("SENDER_EMAIL"),
			SenderCPF:    viper.GetString("SENDER_CPF"),
			SenderStreet: viper.GetString("SENDER_STREET"),
			SenderNumber: viper.GetString("SENDER_NUMBER"),
			SenderDistr:  viper.GetString("SENDER_NEIGHBORHOOD"),
			SenderCity:   viper.GetString("SENDER_CITY"),
			SenderUF:     viper.GetString("SENDER_UF"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
	}

	return config, nil
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvAsInt gets an environment variable as integer with a fallback value
func GetEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// GetEnvAsBool gets an environment variable as boolean with a fallback value
func GetEnvAsBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
