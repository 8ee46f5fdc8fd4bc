// Package main runs the sync engine headless: it opens the local database,
// wires the outbox, gateway, and sync manager, and keeps the background
// loop running until interrupted. With no API_BASE_URL configured the
// process still runs, queueing locally in offline-only mode.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/qafariamirhossein/pwa-travel/config"
	"github.com/qafariamirhossein/pwa-travel/gateway"
	"github.com/qafariamirhossein/pwa-travel/localstore"
	"github.com/qafariamirhossein/pwa-travel/syncer"
)

func main() {
	cfg, err := config.LoadEngine()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	local, err := localstore.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open local store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer local.Close()

	var gw syncer.Gateway
	if cfg.APIBaseURL != "" {
		gw = gateway.New(cfg.APIBaseURL)
	}

	syncConfig := syncer.DefaultConfig()
	syncConfig.Interval = cfg.SyncInterval
	manager := syncer.New(local, localstore.NewOutbox(local), gw, syncConfig)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	slog.Info("sync engine started", "db", cfg.DBPath, "endpoint", cfg.APIBaseURL)
	manager.Kick()
	manager.Run(ctx)
	slog.Info("sync engine stopped")
}
