package main

import (
	"context"
	"log"

	"registryd/internal/config"
	"registryd/internal/domain"
	"registryd/internal/infra/eventlog"
	httpinfra "registryd/internal/infra/http"
	"registryd/internal/infra/policyopa"
	"registryd/internal/infra/ratelimit"
	"registryd/internal/infra/redisevents"
	"registryd/internal/ledger"
	"registryd/internal/ledger/gormledger"
	"registryd/internal/ledger/memledger"
	"registryd/internal/usecase"
)

func main() {
	cfg := config.FromEnv()
	ctx := context.Background()

	var slots ledger.Ledger
	if cfg.PostgresDSN != "" {
		gl, err := gormledger.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("failed to open slot store: %v", err)
		}
		slots = gl
	} else {
		log.Printf("POSTGRES_DSN not set, using in-memory slot store")
		slots = memledger.New()
	}

	journal := eventlog.New()
	publishers := eventlog.Fanout{journal}
	if cfg.RedisAddr != "" {
		pub, err := redisevents.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.EventsChannel)
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		publishers = append(publishers, pub)
	}

	program := usecase.New(slots)
	program.Events = publishers

	if cfg.PolicyPath != "" {
		engine, err := policyopa.NewFromPath(ctx, cfg.PolicyPath)
		if err != nil {
			log.Fatalf("failed to load admission policy: %v", err)
		}
		program.Policy = engine
	}

	var limiter domain.RateLimiter
	if cfg.RateLimitRequests > 0 {
		if cfg.RedisAddr != "" {
			rl, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
			if err != nil {
				log.Fatalf("failed to init rate limiter: %v", err)
			}
			limiter = rl
		} else {
			limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{
				MaxKeys: cfg.RateLimitMaxKeys,
			})
		}
	}

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Program:     program,
		Journal:     journal,
		RateLimiter: limiter,
	})
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
