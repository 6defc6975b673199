// Copyright 2026 SAR Project
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package healthagent

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/Gannon44/sar-project/connectors/base"
	"github.com/Gannon44/sar-project/connectors/drugscom"
	"github.com/Gannon44/sar-project/healthagent/llm"
	"github.com/Gannon44/sar-project/healthagent/llm/bedrock"
	"github.com/Gannon44/sar-project/healthagent/llm/gemini"
	"github.com/Gannon44/sar-project/healthagent/llm/openai"
	"github.com/Gannon44/sar-project/shared/config"
	"github.com/Gannon44/sar-project/shared/logger"
)

// Run starts the health agent service and blocks until shutdown.
func Run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "health-agent")
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting health agent",
		zap.String("port", cfg.Port),
		zap.String("mission_id", cfg.MissionID),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Profile storage: PostgreSQL when configured, in-memory otherwise.
	var store Storage
	if dsn := cfg.DatabaseDSN(); dsn != "" {
		pg, err := NewPostgresStorage(dsn, log)
		if err != nil {
			return err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
		log.Info("Using PostgreSQL profile storage")
	} else {
		store = NewMemoryStorage()
		log.Info("Using in-memory profile storage")
	}
	defer func() {
		_ = store.Close()
	}()

	// Optional Redis cache for interaction lookups.
	var cache *drugscom.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("Redis unreachable, interaction caching disabled", zap.Error(err))
		} else {
			cache = drugscom.NewCache(client, time.Duration(cfg.Interactions.CacheTTLSeconds)*time.Second)
			log.Info("Interaction caching enabled", zap.String("redis_addr", cfg.Redis.Addr))
		}
	}

	// Drug interactions connector.
	interactions := drugscom.New(log, cache)
	if err := interactions.Connect(ctx, &base.ConnectorConfig{
		Name:    "drugscom",
		Type:    "http_scrape",
		BaseURL: cfg.Interactions.BaseURL,
	}); err != nil {
		return err
	}
	defer func() {
		_ = interactions.Disconnect(context.Background())
	}()

	// LLM providers, preferred in registration weight order.
	router := llm.NewRouter(log)
	if cfg.LLM.OpenAIKey != "" {
		p, err := openai.New(cfg.LLM.OpenAIKey, cfg.LLM.OpenAIModel)
		if err != nil {
			return err
		}
		router.Register(p, 0.7)
		log.Info("Registered LLM provider", zap.String("provider", p.Name()))
	}
	if cfg.LLM.GeminiKey != "" {
		p, err := gemini.New(gemini.Config{
			APIKey: cfg.LLM.GeminiKey,
			Model:  cfg.LLM.GeminiModel,
		})
		if err != nil {
			return err
		}
		router.Register(p, 0.5)
		log.Info("Registered LLM provider", zap.String("provider", p.Name()))
	}
	if cfg.LLM.BedrockRegion != "" {
		p, err := bedrock.New(ctx, cfg.LLM.BedrockRegion, cfg.LLM.BedrockModel)
		if err != nil {
			return err
		}
		router.Register(p, 0.3)
		log.Info("Registered LLM provider", zap.String("provider", p.Name()))
	}
	if len(router.Providers()) == 0 {
		log.Warn("No LLM providers configured, narrative generation disabled")
	}

	agent := New(store, log,
		WithInteractions(interactions),
		WithRouter(router),
		WithMissionID(cfg.MissionID),
	)

	registerMetrics()
	metrics := newServiceMetrics()
	handler := NewAPIHandler(agent, metrics, log)

	r := mux.NewRouter()
	r.HandleFunc("/health", healthHandler(agent, interactions, router)).Methods("GET")
	r.HandleFunc("/metrics", handler.handleMetrics).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/").Subrouter()
	api.Use(mux.MiddlewareFunc(authMiddleware(cfg.Auth.JWTSecret, log)))
	handler.RegisterRoutes(api)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler.Handler(requestIDMiddleware(loggingMiddleware(log)(r))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Health agent listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// healthHandler reports the health of the agent's components.
func healthHandler(agent *HealthAgent, interactions *drugscom.Connector, router *llm.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]string{
			"storage": "healthy",
		}

		if hs, err := interactions.HealthCheck(r.Context()); err != nil || !hs.Healthy {
			components["interactions"] = "unhealthy"
		} else {
			components["interactions"] = "healthy"
		}

		if router.Healthy() {
			components["llm"] = "healthy"
		} else {
			components["llm"] = "unavailable"
		}

		status := http.StatusOK
		payload := map[string]interface{}{
			"status":         "healthy",
			"mission_id":     agent.MissionID(),
			"mission_status": agent.Status(),
			"components":     components,
		}
		if components["interactions"] == "unhealthy" {
			payload["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(payload)
	}
}
