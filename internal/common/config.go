package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	LLM      LLMConfig
	Compiler CompilerConfig
	Paths    PathsConfig
	History  HistoryConfig
}

// LLMConfig holds recognition/explanation service configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// CompilerConfig holds the external document compiler configuration
type CompilerConfig struct {
	Binary  string
	Timeout time.Duration
}

// PathsConfig holds the workspace root the directory layout lives under
type PathsConfig struct {
	Root string
}

// HistoryConfig holds the job-history store configuration
type HistoryConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:       getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Temperature: getEnvAsFloat32("GEMINI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		Compiler: CompilerConfig{
			Binary:  getEnv("LATEX_COMPILER", "pdflatex"),
			Timeout: getEnvAsDuration("LATEX_TIMEOUT", 120*time.Second),
		},
		Paths: PathsConfig{
			Root: getEnv("WORKSPACE_ROOT", "."),
		},
		History: HistoryConfig{
			Path: getEnv("HISTORY_DB", "output/history.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the loaded configuration for the fields every
// pipeline-running command needs.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return ConfigurationError("GEMINI_API_KEY is required")
	}
	if c.Compiler.Binary == "" {
		return ConfigurationError("LATEX_COMPILER is required")
	}
	return nil
}
