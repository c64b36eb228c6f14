package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	DBPath string

	GeminiAPIKey string
	GeminiModel  string

	// Match thresholds are business behavior, not tuning: deployments pin
	// the values the product was reviewed against.
	MatchDiscardThreshold float64
	MatchAcceptThreshold  float64
	MatchSubstringBonus   float64
}

func Load() Config {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getenv("PORT", "8082"))
	mb, _ := strconv.Atoi(getenv("MAX_UPLOAD_MB", "64"))
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	return Config{
		Host:         getenv("HOST", "127.0.0.1"),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     getenv("LOG_LEVEL", "info"),
		MaxUploadMB:  mb,
		LogFile:      getenv("LOG_FILE", "logs/inventory-recon.log"),

		DBPath: getenv("DB_PATH", "data/inventory.db"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),

		MatchDiscardThreshold: getfloat("MATCH_DISCARD_THRESHOLD", 0.65),
		MatchAcceptThreshold:  getfloat("MATCH_ACCEPT_THRESHOLD", 0.85),
		MatchSubstringBonus:   getfloat("MATCH_SUBSTRING_BONUS", 0.15),
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}
