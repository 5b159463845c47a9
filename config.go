package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const defaultPort = 9120

type Config struct {
	Bind           string   `yaml:"bind"`
	Port           int      `yaml:"port"`
	Token          string   `yaml:"token"`
	LogLevel       string   `yaml:"log_level"`
	LogFile        string   `yaml:"log_file"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func defaultConfig() *Config {
	return &Config{
		Bind:     "127.0.0.1",
		Port:     defaultPort,
		Token:    "",
		LogLevel: "info",
		AllowedOrigins: []string{
			"http://localhost:1420",
			"tauri://localhost",
		},
	}
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".sysmon-agent", "agent.yaml")
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.Bind == "" {
		cfg.Bind = "127.0.0.1"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("parsing config: log_level: %w", err)
	}

	return cfg, nil
}

// ListenAddr is the host:port the bridge listens on.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func (c *Config) newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(level)
	if c.LogFile != "" {
		loggerConfig.OutputPaths = []string{c.LogFile}
	}
	return loggerConfig.Build()
}
