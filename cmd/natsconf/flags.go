package main

import (
	"flag"
	"os"
	"strconv"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath   string
	SettingsPath string
	LogLevel     string
	LogFormat    string
	ShowVersion  bool
	Validate     bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.ConfigPath, "config",
		getEnv("NATSCONF_CONFIG", "broker.conf"),
		"Path to the broker configuration file (env: NATSCONF_CONFIG)")

	flag.StringVar(&cfg.SettingsPath, "settings",
		getEnv("NATSCONF_SETTINGS", ""),
		"Path to the daemon settings YAML file (env: NATSCONF_SETTINGS)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("NATSCONF_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: NATSCONF_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("NATSCONF_LOG_FORMAT", "json"),
		"Log format: json, text (env: NATSCONF_LOG_FORMAT)")

	flag.BoolVar(&cfg.ShowVersion, "version",
		false,
		"Print version and exit")

	flag.BoolVar(&cfg.Validate, "validate",
		getEnvBool("NATSCONF_VALIDATE", false),
		"Validate the configuration file and exit (env: NATSCONF_VALIDATE)")

	flag.Parse()
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
