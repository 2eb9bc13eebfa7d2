package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validSSLModes = map[string]bool{
	"disable":     true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// ValidateConfig checks the configuration for values that would fail at
// connection time rather than startup.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if _, err := strconv.Atoi(cfg.ServerPort); err != nil {
		errors = append(errors, fmt.Sprintf("SERVER_PORT %q is not numeric", cfg.ServerPort))
	}
	if _, err := strconv.Atoi(cfg.DBPort); err != nil {
		errors = append(errors, fmt.Sprintf("DB_PORT %q is not numeric", cfg.DBPort))
	}
	if !validSSLModes[cfg.DBSSLMode] {
		errors = append(errors, fmt.Sprintf("DB_SSL_MODE %q is not a valid mode", cfg.DBSSLMode))
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET must not be empty")
	}
	if IsProduction() {
		if cfg.JWTSecret == "your-secret-key" {
			errors = append(errors, "JWT_SECRET must be set in production")
		}
		if cfg.AdminAccessCode == "" {
			errors = append(errors, "ADMIN_ACCESS_CODE must be set in production")
		}
	}
	if cfg.TrialDays < 0 {
		errors = append(errors, "TRIAL_DAYS must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}
	return nil
}
