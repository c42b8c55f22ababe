package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	AdminSecret string
	Output      string
	Verbose     bool
}

// DefaultConfig returns a Config with defaults taken from the environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("EVENTCTL_SERVER", "http://localhost:8080"),
		AdminSecret: os.Getenv("EVENTCTL_ADMIN_SECRET"),
		Output:      "text",
		Verbose:     false,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
