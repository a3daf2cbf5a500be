package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/cache"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/freeagent"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/storage/gormdb"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/cli"
	"github.com/custodia-labs/ledgerbridge/internal/config"
	"github.com/custodia-labs/ledgerbridge/internal/core/domain"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/core/services"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// stores groups the persistence ports of one backend.
type stores struct {
	tokens   driven.TokenStore
	contacts driven.ContactStore
	projects driven.ProjectStore
	invoices driven.InvoiceStore
	links    driven.LinkStore
	close    func() error
}

// bootstrap resolves configuration and wires every service.
func bootstrap(ctx context.Context, dir string) (*cli.Runtime, error) {
	dir, err := settingsDir(dir)
	if err != nil {
		return nil, err
	}
	settings, err := openSettings(dir)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	cfg, err := config.Resolve(settings, dir)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.Logs.Level,
		Format: cfg.Logs.Format,
		File:   cfg.Logs.File,
	}); err != nil {
		return nil, err
	}

	st, err := openStores(cfg.Database)
	if err != nil {
		return nil, err
	}
	responses, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		_ = st.close()
		return nil, err
	}

	oauthManager := services.NewOAuthManager(oauth.NewProvider(cfg.OAuth), st.tokens)
	gateway := freeagent.NewGateway(cfg.API, cfg.Cache, oauthManager, responses)
	engine := services.NewSyncEngine(gateway, st.contacts, st.projects, st.invoices, responses, cfg.Cache)

	mirror := services.NewMirrorService(services.MirrorDeps{
		OAuth:    oauthManager,
		Sync:     engine,
		Scope:    services.NewScopeResolver(),
		Owners:   services.NewOwnerResolver(cfg.OAuth.Mode),
		API:      gateway,
		Contacts: st.contacts,
		Projects: st.projects,
		Invoices: st.invoices,
		Links:    st.links,
	})

	logger.WithFields(logger.Fields{
		"environment": cfg.Environment,
		"database":    cfg.Database.Driver,
		"cache":       cfg.Cache.Driver,
		"owner_mode":  cfg.OAuth.Mode,
	}).Debug("Runtime ready")

	return &cli.Runtime{
		Config: cfg,
		Mirror: mirror,
		OAuth:  oauthManager,
		Close: func() error {
			return errors.Join(closeCache(), st.close())
		},
	}, nil
}

func openStores(db domain.DatabaseSettings) (*stores, error) {
	switch db.Driver {
	case "memory":
		logger.Warn("Using the in-memory database; the mirror is lost on exit")
		return &stores{
			tokens:   memory.NewTokenStore(),
			contacts: memory.NewContactStore(),
			projects: memory.NewProjectStore(),
			invoices: memory.NewInvoiceStore(),
			links:    memory.NewLinkStore(),
			close:    func() error { return nil },
		}, nil

	case "postgres", "mysql":
		handle, err := gormdb.Open(db.Driver, db.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", db.Driver, err)
		}
		store, err := gormdb.NewStore(handle)
		if err != nil {
			if sqlDB, dbErr := handle.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return &stores{
			tokens:   store.TokenStore(),
			contacts: store.ContactStore(),
			projects: store.ProjectStore(),
			invoices: store.InvoiceStore(),
			links:    store.LinkStore(),
			close:    store.Close,
		}, nil

	default:
		store, err := sqlite.NewStore(db.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			tokens:   store.TokenStore(),
			contacts: store.ContactStore(),
			projects: store.ProjectStore(),
			invoices: store.InvoiceStore(),
			links:    store.LinkStore(),
			close:    store.Close,
		}, nil
	}
}

// openCache returns the response cache. Redis is wrapped in a circuit
// breaker that falls back to process memory while Redis is down.
func openCache(ctx context.Context, settings domain.CacheSettings) (driven.Cache, func() error, error) {
	if settings.Driver != "redis" {
		return cache.NewMemory(), func() error { return nil }, nil
	}

	client := cache.NewRedisClient(cache.DefaultRedisConfig(settings.RedisAddr))
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis at %s unavailable, serving from memory until it recovers: %v", settings.RedisAddr, err)
	}
	fallback := cache.NewFallback(cache.NewRedis(client), cache.BreakerSettings("redis"))
	return fallback, client.Close, nil
}
