package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"fleetgate/internal/access"
	"fleetgate/internal/actor"
	actorclient "fleetgate/internal/actor/client"
	actorstore "fleetgate/internal/actor/store"
	"fleetgate/internal/audit"
	"fleetgate/internal/capability"
	"fleetgate/internal/guard"
	jwttoken "fleetgate/internal/jwt_token"
	"fleetgate/internal/navigation"
	"fleetgate/internal/platform/config"
	"fleetgate/internal/platform/httpserver"
	"fleetgate/internal/platform/logger"
	"fleetgate/internal/platform/metrics"
	platformredis "fleetgate/internal/platform/redis"
	"fleetgate/internal/routes"
	"fleetgate/internal/session"
	sessionstore "fleetgate/internal/session/store"
	httptransport "fleetgate/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Policy logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	m := metrics.New()
	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)

	// Actor store: Postgres when configured, seeded memory store otherwise.
	var actors httptransport.ActorStore
	var db *sql.DB
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store := actorstore.NewPostgres(db)
		if err := store.Migrate(ctx); err != nil {
			log.Error("postgres migrate failed", "error", err)
			os.Exit(1)
		}
		actors = store
	} else {
		actors = seededMemoryStore(ctx)
		log.Warn("no POSTGRES_URL configured, using seeded in-memory actor store")
	}

	// Capability refreshes come from the remote actor service when one is
	// configured; otherwise the gateway answers from its own store.
	var source actor.Source
	if cfg.ActorServiceURL != "" {
		source = actorclient.New(cfg.ActorServiceURL)
	} else {
		source = actors
	}

	// Session store: Redis when configured, memory otherwise.
	var sessions sessionstore.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionstore.NewRedis(redisClient.Client, cfg.SessionTTL)
	} else {
		sessions = sessionstore.NewMemory()
		log.Warn("no REDIS_URL configured, using in-memory session store")
	}

	// Audit trail: Kafka when brokers are configured.
	var publisher audit.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaOpts := []audit.KafkaOption{audit.WithKafkaLogger(log)}
		if cfg.AuditTopic != "" {
			kafkaOpts = append(kafkaOpts, audit.WithTopic(cfg.AuditTopic))
		}
		kafkaPublisher, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, kafkaOpts...)
		if err != nil {
			log.Error("kafka publisher init failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		publisher = audit.NewInMemoryPublisher()
		log.Warn("no KAFKA_BROKERS configured, audit events stay in memory")
	}

	// Optional audit consumer: drains the topic into a queryable store.
	if cfg.AuditGroup != "" && len(cfg.KafkaBrokers) > 0 {
		var auditStore audit.Store
		if db != nil {
			pgStore := audit.NewPostgresStore(db)
			if err := pgStore.Migrate(ctx); err != nil {
				log.Error("audit store migrate failed", "error", err)
				os.Exit(1)
			}
			auditStore = pgStore
		} else {
			auditStore = audit.NewInMemoryStore()
		}

		consumerOpts := []audit.ConsumerOption{audit.WithConsumerLogger(log)}
		if cfg.AuditTopic != "" {
			consumerOpts = append(consumerOpts, audit.WithConsumerTopic(cfg.AuditTopic))
		}
		consumer, err := audit.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, auditStore, consumerOpts...)
		if err != nil {
			log.Error("audit consumer init failed", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit consumer stopped", "error", err)
			}
		}()
	}

	evaluator := access.New(routes.Registry(), access.WithPublicAuthPrefix(routes.PublicAuthPrefix))
	nav := navigation.New(routes.Menu())

	sessCtx := session.NewContext()
	refresher := session.NewRefresher(source, sessCtx,
		session.WithPeriod(cfg.RefreshPeriod),
		session.WithLogger(log),
	)
	g := guard.New(evaluator, nav, sessCtx,
		guard.WithRefresher(refresher),
		guard.WithAuditPublisher(publisher),
		guard.WithLogger(log),
		guard.WithLoginPath(routes.LoginPath),
	)
	g.Hydrate(nil)

	handler := httptransport.NewHandler(log, evaluator, nav, actors, sessions, tokens,
		httptransport.WithAuditPublisher(publisher),
		httptransport.WithMetrics(m),
		httptransport.WithSessionTTL(cfg.SessionTTL),
		httptransport.WithGuard(g),
	)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting fleetgate", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	g.Logout()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// seededMemoryStore provides development actors so the gateway answers
// policy questions out of the box.
func seededMemoryStore(ctx context.Context) *actorstore.InMemoryStore {
	store := actorstore.NewMemory()

	seed := []*capability.Actor{
		{
			ID:    uuid.New(),
			Email: "admin@fleet.example",
			Name:  "Fleet Admin",
			Role:  capability.RoleAdmin,
			Capabilities: bagOf(
				capability.Keys()...,
			),
		},
		{
			ID:    uuid.New(),
			Email: "manager@fleet.example",
			Name:  "Fleet Manager",
			Role:  capability.RoleManager,
			Capabilities: bagOf(
				capability.KeyViewDashboard,
				capability.KeyViewVehicles,
				capability.KeyAddVehicles,
				capability.KeyEditVehicles,
				capability.KeyViewOwners,
				capability.KeyViewLocations,
				capability.KeyViewDeliveryNotes,
				capability.KeyViewReports,
			),
		},
		{
			ID:    uuid.New(),
			Email: "driver@fleet.example",
			Name:  "Delivery Driver",
			Role:  capability.RoleDriver,
			Capabilities: bagOf(
				capability.KeyViewDeliveryNotes,
				capability.KeyAddDeliveryNotes,
			),
		},
	}
	for _, a := range seed {
		_ = store.Put(ctx, a)
	}
	return store
}

func bagOf(keys ...capability.Key) capability.Bag {
	bag := capability.Bag{}
	for _, k := range keys {
		bag[k] = true
	}
	return bag
}
