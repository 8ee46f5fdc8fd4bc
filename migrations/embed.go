// Package migrations embeds the SQL migration files for the remote store
// schema so server bootstrap and tests can apply them through the goose
// programmatic API without a filesystem path at runtime.
//
// Copyright 2025 The pwa-travel Authors
// SPDX-License-Identifier: Apache-2.0

package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
