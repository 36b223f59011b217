package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"kyri56xcaesar/pms-dashboard/internal/logger"
	"kyri56xcaesar/pms-dashboard/internal/utils"
)

const (
	DefaultAPIURL = "http://localhost:8000"
	DefaultPort   = "5050"
)

type Config struct {
	ConfigPath string
	Profile    string
	Verbose    bool
	ApiGinMode string
	LogLevel   string

	Ip     string
	Port   string
	APIURL string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// durable client storage
	StorageDriver string
	StorageDir    string
	StorageDSN    string `mask:"true"`
}

// Load reads the .env file at path (if any) and resolves every setting from
// the environment, falling back to defaults.
func Load(path string) Config {
	log := logger.Component("config")
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			log.Debug().Str("path", path).Msg("no config file, using environment and defaults")
		}
	}

	cfg := Config{
		ConfigPath: filepath.Base(path),
		Profile:    getEnv("PROFILE", "baremetal"),
		Verbose:    getBoolEnv("VERBOSE", "false"),
		ApiGinMode: getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		Ip:     getEnv("IP", "localhost"),
		Port:   getEnv("PORT", DefaultPort),
		APIURL: strings.TrimRight(getEnv("PMS_API_URL", DefaultAPIURL), "/"),

		AllowedOrigins: getEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: getEnvFields("ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE"}),
		AllowedHeaders: getEnvFields("ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept"}),

		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "file")),
		StorageDir:    getEnv("STORAGE_DIR", defaultStorageDir()),
		StorageDSN:    getEnv("STORAGE_DSN", ""),
	}

	if cfg.Verbose {
		log.Info().Msg(cfg.String())
	}

	return cfg
}

// Addr is the listen address of the dashboard server.
func (cfg Config) Addr() string {
	return fmt.Sprintf("%s:%s", cfg.Ip, cfg.Port)
}

func defaultStorageDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "pmsdash")
	}

	return ".pmsdash"
}

func getEnv(env, fallback string) string {
	if value, exists := os.LookupEnv(env); exists {
		return value
	}

	return fallback
}

func getEnvFields(env string, fallback []string) []string {
	if value, exists := os.LookupEnv(env); exists {
		return utils.SplitFields(value)
	}

	return fallback
}

func getBoolEnv(env, fallback string) bool {
	if value, exists := os.LookupEnv(env); exists {
		b, err := strconv.ParseBool(value)
		return err == nil && b
	}

	return strings.ToLower(fallback) == "true"
}

// String lists every setting as "[CFG]N. Name -> value", masking fields
// tagged mask:"true".
func (cfg Config) String() string {
	var strBuilder strings.Builder

	reflectedValues := reflect.ValueOf(cfg)
	reflectedTypes := reflect.TypeOf(cfg)

	strBuilder.WriteString(fmt.Sprintf("[CFG]CONFIGURATION: %s\n", cfg.ConfigPath))

	for i := range reflectedValues.NumField() {
		field := reflectedTypes.Field(i)
		fieldValue := reflectedValues.Field(i).Interface()

		if field.Tag.Get("mask") == "true" && fieldValue != "" {
			fieldValue = "****"
		}

		strBuilder.WriteString(fmt.Sprintf("[CFG]%2d. %-16s -> %v\n", i+1, field.Name, fieldValue))
	}

	return strBuilder.String()
}
