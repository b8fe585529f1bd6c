package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Init loads .env outside Lambda and configures the global logger.
func Init() {
	if !IsLambda() {
		if err := godotenv.Load(); err != nil {
			logrus.Debug("no .env file found, using process environment")
		}
	}

	level, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stdout)

	format := GetEnv("LOG_FORMAT", "text")
	if IsLambda() {
		format = GetEnv("LOG_FORMAT", "json")
	}
	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func IsLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func GetEnv(key string, defaultValue ...string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func GetInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(GetEnv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(GetEnv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func GetDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(GetEnv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// GetList splits a comma separated variable, dropping empty items.
func GetList(key string) []string {
	var out []string
	for _, item := range strings.Split(GetEnv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
