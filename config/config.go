package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"coffeeStatApp/internal/domain/model"
)

// Config holds all app configuration
type Config struct {
	Env string

	// Server
	HTTPPort string

	// Generation
	DefaultRecords int
	MaxRecords     int
	ReportSeed     uint64
	WindowDays     int
	TopItems       int
	Timezone       string
	CatalogFile    string

	// Batch report outputs
	CSVPath       string
	ChartDataPath string

	// Redis
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      int // seconds

	// ClickHouse
	ClickhouseEnabled  bool
	ClickhouseAddr     string
	ClickhouseDatabase string
	ClickhouseUsername string
	ClickhousePassword string
	ClickhouseTimeout  int

	// Kafka
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaTopic        string
	KafkaBatchSize    int
	KafkaBatchTimeout int // milliseconds

	// App settings
	EventBufferSize int
	Debug           bool
}

// LoadConfig loads configuration from environment variables, with optional .env files
func LoadConfig() *Config {
	loadDotEnv(".env", "../../.env")

	cfg := &Config{
		Env: getEnv("ENV", "local"),

		// Server
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		// Generation
		DefaultRecords: getEnvAsInt("DEFAULT_RECORDS", 1000),
		MaxRecords:     getEnvAsInt("MAX_RECORDS", 100000),
		ReportSeed:     getEnvAsUint64("REPORT_SEED", 42),
		WindowDays:     getEnvAsInt("WINDOW_DAYS", 180),
		TopItems:       getEnvAsInt("TOP_ITEMS", 8),
		Timezone:       getEnv("TIMEZONE", "Local"),
		CatalogFile:    getEnv("CATALOG_FILE", ""),

		CSVPath:       getEnv("CSV_PATH", "coffee_shop_sales.csv"),
		ChartDataPath: getEnv("CHART_DATA_PATH", "chart_data.json"),

		// Redis
		RedisEnabled:  getEnvAsBool("REDIS_ENABLED", true),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RedisTTL:      getEnvAsInt("REDIS_TTL", 3600),

		// ClickHouse
		ClickhouseEnabled:  getEnvAsBool("CLICKHOUSE_ENABLED", true),
		ClickhouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickhouseDatabase: getEnv("CLICKHOUSE_DATABASE", "default"),
		ClickhouseUsername: getEnv("CLICKHOUSE_USERNAME", ""),
		ClickhousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickhouseTimeout:  getEnvAsInt("CLICKHOUSE_TIMEOUT", 10),

		// Kafka
		KafkaEnabled:      getEnvAsBool("KAFKA_ENABLED", false),
		KafkaBrokers:      getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}, ","),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "coffee-transactions"),
		KafkaBatchSize:    getEnvAsInt("KAFKA_BATCH_SIZE", 500),
		KafkaBatchTimeout: getEnvAsInt("KAFKA_BATCH_TIMEOUT", 1000),

		// App settings
		EventBufferSize: getEnvAsInt("EVENT_BUFFER_SIZE", 64),
		Debug:           getEnvAsBool("DEBUG", false),
	}

	return cfg
}

// loadDotEnv loads the first .env file found; a missing file is not an error
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil {
			return
		}
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Error loading %s: %v", p, err)
		}
	}
}

// Catalog returns the menu from CatalogFile, or the built-in menu when none is set
func (c *Config) Catalog() (*model.Catalog, error) {
	if c.CatalogFile == "" {
		return model.DefaultCatalog(), nil
	}
	return LoadCatalogFile(c.CatalogFile)
}

// LoadCatalogFile reads a JSON array of menu sections
func LoadCatalogFile(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var sections []model.MenuSection
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return model.NewCatalog(sections)
}

// Location resolves Timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// Helper functions for parsing environment variables
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsUint64(key string, defaultVal uint64) uint64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseUint(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string, sep string) []string {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultVal
	}
	return strings.Split(valStr, sep)
}
