package env

import (
	"os"
	"strconv"
	"strings"
)

// Bool reads a boolean environment variable, falling back to defaultValue when unset.
// Only the literal "true" (case-insensitive) or "1" enables the flag.
func Bool(env string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(env))
	if env == "" || raw == "" {
		return defaultValue
	}
	lower := strings.ToLower(raw)
	return lower == "true" || lower == "1"
}

// Int reads an integer environment variable, falling back to defaultValue when unset or invalid.
func Int(env string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(env))
	if env == "" || raw == "" {
		return defaultValue
	}
	num, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return num
}

// String reads a string environment variable, falling back to defaultValue when unset.
func String(env string, defaultValue string) string {
	if env == "" {
		return defaultValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return defaultValue
}

// Has reports whether the environment variable is set to a non-blank value.
func Has(env string) bool {
	return strings.TrimSpace(os.Getenv(env)) != ""
}
