// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"strings"
)

// LoadEnv loads variables from a .env file in the current or parent
// directories. Variables already present in the environment win.
func LoadEnv() {
	envPaths := []string{".env", "../.env", "../../.env"}

	for _, envPath := range envPaths {
		data, err := os.ReadFile(envPath)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
		break
	}
}

// GetEnv gets an environment variable with a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvFloat gets a float environment variable with a default.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default.
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultValue
}

// Corrector holds the tunables of a corrector instance as read from the
// environment.
type Corrector struct {
	KnownWordsPenalty    float64
	UnknownWordsPenalty  float64
	MaxCandidatesToCheck int
	RedisAddr            string
	RedisKey             string
}

// LoadCorrector reads corrector settings from SPELL_* variables. Redis is
// optional; an empty SPELL_REDIS_ADDR disables the custom dictionary.
func LoadCorrector() Corrector {
	return Corrector{
		KnownWordsPenalty:    GetEnvFloat("SPELL_KNOWN_PENALTY", 20.0),
		UnknownWordsPenalty:  GetEnvFloat("SPELL_UNKNOWN_PENALTY", 5.0),
		MaxCandidatesToCheck: GetEnvInt("SPELL_MAX_CANDIDATES", 14),
		RedisAddr:            GetEnv("SPELL_REDIS_ADDR", ""),
		RedisKey:             GetEnv("SPELL_REDIS_KEY", ""),
	}
}
