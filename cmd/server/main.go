// Sentinel - Abuse Mitigation and Security Telemetry for IndieVault
// Copyright 2026 IndieVault Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/indievault/sentinel

// Package main is the entry point for the Sentinel server.
//
// Sentinel is IndieVault's abuse-mitigation sidecar: the platform's
// application servers consult it before handling logins, registrations,
// and content submissions, and report outcomes back to its audit log.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered load (defaults, YAML file, env)
//  2. Logging: global zerolog logger per the loaded config
//  3. Rate-limit store: in-memory, or Redis when SENTINEL_REDIS_ENABLED=true
//  4. Content guard, scorer options, audit log (optional Badger archive)
//  5. HTTP router: Chi with request-id, CORS, httprate, metrics
//  6. Supervisor tree: api layer (HTTP server) and maintenance layer
//     (limiter sweep, guard sweep, audit purge)
//
// # Configuration
//
// Everything is configurable via SENTINEL_* environment variables or a
// sentinel.yaml file; see internal/config. A minimal production run:
//
//	export SENTINEL_SERVER_PORT=8675
//	export SENTINEL_LOGGING_LEVEL=info
//	./sentinel
//
// Multi-replica deployments share limiter state through Redis:
//
//	export SENTINEL_REDIS_ENABLED=true
//	export SENTINEL_REDIS_ADDR=redis:6379
//	./sentinel
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the supervisor tree is
// canceled, the HTTP server drains in-flight requests (10s timeout),
// and the audit archive is flushed and closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/indievault/sentinel/internal/abusescore"
	"github.com/indievault/sentinel/internal/api"
	"github.com/indievault/sentinel/internal/audit"
	"github.com/indievault/sentinel/internal/config"
	"github.com/indievault/sentinel/internal/contentguard"
	"github.com/indievault/sentinel/internal/logging"
	"github.com/indievault/sentinel/internal/ratelimit"
	"github.com/indievault/sentinel/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging.ToLogging())
	logging.Info().
		Int("port", cfg.Server.Port).
		Bool("redis", cfg.Redis.Enabled).
		Bool("audit_archive", cfg.Audit.ArchiveEnabled).
		Msg("Starting Sentinel")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize rate-limit store")
	}
	limiter := ratelimit.NewLimiter(store)
	auth := ratelimit.NewAuthLimiter(limiter, authPolicies(cfg))

	guard := contentguard.New(contentguard.DefaultPolicyTable())

	auditLog, err := buildAuditLog(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize audit log")
	}
	defer func() {
		if err := auditLog.Close(); err != nil {
			logging.Err(err).Msg("Audit archive close failed")
		}
	}()

	handler := api.NewHandler(auth, guard, scorerOptions(cfg), auditLog)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:     cfg.Server.CORSOrigins,
		GlobalRateLimit: cfg.Server.GlobalRateLimit,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddAPIService(supervisor.NewHTTPService(server, 10*time.Second))
	addMaintenance(tree, cfg, limiter, guard, auditLog)

	logging.Info().Str("addr", server.Addr).Msg("Sentinel listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}

	logging.Info().Msg("Sentinel stopped")
}

// buildStore selects the limiter backend. Redis is a deployment escape
// hatch for multi-replica installs; the in-memory store is the default.
func buildStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, error) {
	if !cfg.Redis.Enabled {
		return ratelimit.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logging.Info().Str("addr", cfg.Redis.Addr).Msg("Using Redis rate-limit store")
	return ratelimit.NewRedisStore(client)
}

func authPolicies(cfg *config.Config) ratelimit.AuthPolicies {
	return ratelimit.AuthPolicies{
		LoginPerIP: ratelimit.Policy{
			MaxRequests: cfg.Auth.LoginPerIPMax,
			Window:      cfg.Auth.LoginWindow,
		},
		LoginPerIdentity: ratelimit.Policy{
			MaxRequests: cfg.Auth.LoginPerIdentMax,
			Window:      cfg.Auth.LoginWindow,
		},
		Registration: ratelimit.Policy{
			MaxRequests: cfg.Auth.RegistrationMax,
			Window:      cfg.Auth.RegistrationWindow,
		},
	}
}

func scorerOptions(cfg *config.Config) abusescore.Options {
	return abusescore.Options{
		CheckURLs: cfg.Scorer.CheckURLs,
		MaxLinks:  cfg.Scorer.MaxLinks,
		MinLength: cfg.Scorer.MinLength,
	}
}

func buildAuditLog(cfg *config.Config) (*audit.Log, error) {
	auditCfg := audit.Config{MaxEntries: cfg.Audit.MaxEntries}

	if cfg.Audit.ArchiveEnabled {
		archive, err := audit.NewBadgerArchive(cfg.Audit.ArchivePath, cfg.Audit.ArchiveRetention)
		if err != nil {
			return nil, err
		}
		auditCfg.Archive = archive
		logging.Info().Str("path", cfg.Audit.ArchivePath).Msg("Audit archive enabled")
	}

	return audit.NewLog(auditCfg), nil
}

// addMaintenance registers the background sweepers.
func addMaintenance(tree *supervisor.Tree, cfg *config.Config, limiter *ratelimit.Limiter, guard *contentguard.Guard, auditLog *audit.Log) {
	tree.AddMaintenanceService(supervisor.NewSweepService(
		"ratelimit", cfg.Maintain.SweepInterval,
		func(ctx context.Context) (int, error) { return limiter.Sweep(ctx) },
	))

	tree.AddMaintenanceService(supervisor.NewSweepService(
		"contentguard", cfg.Content.SweepInterval,
		func(context.Context) (int, error) { return guard.Sweep(), nil },
	))

	if cfg.Audit.RetentionDays > 0 {
		retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
		tree.AddMaintenanceService(supervisor.NewSweepService(
			"audit", cfg.Maintain.PurgeInterval,
			func(context.Context) (int, error) {
				removed := auditLog.PurgeOlderThan(time.Now().Add(-retention))
				if removed > 0 {
					auditLog.Record(audit.EventAuditPurged, audit.Context{
						IP:      "internal",
						Details: map[string]any{"removed": removed},
						Success: true,
					})
				}
				return removed, nil
			},
		))
	}
}
