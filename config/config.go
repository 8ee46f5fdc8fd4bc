// Package config loads configuration for the sync engine and the reference
// server from environment variables.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"
)

// Engine holds configuration for the client-side sync engine.
type Engine struct {
	// APIBaseURL is the remote store endpoint. An empty value is not an
	// error: it puts the engine into permanent offline-only mode.
	APIBaseURL string

	// DBPath is the SQLite database file. Defaults to "pwa-travel.db".
	DBPath string

	// SyncInterval is the delay between background sync rounds.
	// Defaults to 30s.
	SyncInterval time.Duration

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string
}

// Server holds configuration for the reference remote store server.
type Server struct {
	// Port is the TCP port to listen on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	LogLevel string
}

// LoadEngine reads the engine configuration. It never fails on a missing
// API base URL; offline-only is a supported mode, not a misconfiguration.
func LoadEngine() (Engine, error) {
	cfg := Engine{
		APIBaseURL:   os.Getenv("API_BASE_URL"),
		DBPath:       getEnv("DB_PATH", "pwa-travel.db"),
		SyncInterval: 30 * time.Second,
		LogLevel:     getEnv("LOG_LEVEL", "info"),
	}
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Engine{}, fmt.Errorf("invalid SYNC_INTERVAL %q: %w", v, err)
		}
		cfg.SyncInterval = d
	}
	return cfg, nil
}

// LoadServer reads the server configuration and reports missing required
// values.
func LoadServer() (Server, error) {
	cfg := Server{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
	if cfg.DatabaseURL == "" {
		return Server{}, fmt.Errorf("required environment variable not set: DATABASE_URL")
	}
	return cfg, nil
}

// getEnv returns the value of the environment variable named by key, or
// fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
