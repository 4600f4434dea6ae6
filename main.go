package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/Billy-Davies-2/fc-draft-simulator/internal/auth"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/catalog"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/clickhouse"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/config"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/dal"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/formation"
	grpcserver "github.com/Billy-Davies-2/fc-draft-simulator/internal/grpc"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/handlers"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/logger"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/mocks"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/models"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/pubsub"
	"github.com/Billy-Davies-2/fc-draft-simulator/internal/session"
)

// analytics is the pick recorder plus the most-drafted query
type analytics interface {
	session.PickRecorder
	handlers.PopularitySource
	Ping(context.Context) error
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger first
	logger.Init(cfg.LogLevel)
	logger.Info("Starting FC draft simulator", "environment", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := loadCatalog(ctx, cfg)
	formations := formation.NewTable()

	// Snapshot store
	var store dal.SnapshotStore
	if cfg.UseMockPostgres() {
		store, err = mocks.NewMockPostgresStore(cfg.SQLiteFile)
	} else {
		store, err = dal.Open(cfg.DBDriver, cfg.SQLiteFile, cfg.DatabaseURL)
	}
	if err != nil {
		logger.Error("Failed to initialize snapshot store", "error", err, "driver", cfg.DBDriver)
		log.Fatalf("Failed to initialize snapshot store: %v", err)
	}
	defer store.Close()
	logger.Info("Snapshot store ready", "driver", cfg.DBDriver)

	// Use embedded NATS in development mode, real NATS in production
	var broker pubsub.Broker
	if cfg.IsDevelopment() {
		logger.Info("Starting embedded NATS server for local development")
		opts := pubsub.DefaultEmbeddedNATSOptions()
		opts.Subject = cfg.NATSSubject
		embedded, err := pubsub.NewEmbeddedNATSPubSub(opts)
		if err != nil {
			logger.Error("Failed to initialize embedded NATS", "error", err)
			log.Fatalf("Failed to initialize embedded NATS: %v", err)
		}
		logger.Info("Embedded NATS server ready", "url", embedded.ServerURL())
		broker = embedded
	} else {
		logger.Info("Using real NATS JetStream for production")
		realNats, err := pubsub.NewNATSPubSub(cfg.NATSURL, cfg.NATSSubject)
		if err != nil {
			logger.Error("Failed to initialize NATS", "error", err)
			log.Fatalf("Failed to initialize NATS: %v", err)
		}
		logger.Info("Connected to NATS", "url", cfg.NATSURL)
		broker = realNats
	}
	defer broker.Close()
	ps := pubsub.NewWithUpstream(broker)

	// Pick analytics: ClickHouse in production, in-memory in development
	var stats analytics
	if cfg.IsDevelopment() {
		logger.Info("Using mock ClickHouse for local development (no ClickHouse server required)")
		stats = mocks.NewMockClickHouseClient()
	} else {
		stats, err = clickhouse.NewClient(cfg.ClickHouseAddr, cfg.ClickHouseDB, cfg.ClickHouseUser, cfg.ClickHousePassword)
		if err != nil {
			logger.Error("Failed to initialize ClickHouse", "error", err, "address", cfg.ClickHouseAddr)
			log.Fatalf("Failed to initialize ClickHouse: %v", err)
		}
		logger.Info("Connected to ClickHouse", "address", cfg.ClickHouseAddr, "database", cfg.ClickHouseDB)
	}
	defer stats.Close()

	// Use mock auth in development mode, Authentik OAuth2 in production
	var authProvider auth.AuthProvider
	if cfg.IsDevelopment() {
		logger.Info("Using mock authentication for local development (no Authentik server required)")
		authProvider = auth.NewMockAuth()
	} else {
		authProvider = auth.NewAuthentikAuth(&auth.AuthentikConfig{
			BaseURL:      cfg.AuthentikBaseURL,
			ClientID:     cfg.AuthentikClientID,
			ClientSecret: cfg.AuthentikClientSecret,
			RedirectURL:  cfg.AuthentikRedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
		})
		logger.Info("Using Authentik", "url", cfg.AuthentikBaseURL)
	}

	drafts := session.NewService(cat, formations, store,
		session.WithPublisher(ps),
		session.WithRecorder(stats),
		session.WithDefaults(cfg.MaxRounds, cfg.DefaultFormation),
	)

	// gRPC server
	grpcServer := grpc.NewServer()
	grpcserver.RegisterDraftServiceServer(grpcServer, grpcserver.NewServer(drafts, ps))
	go func() {
		lis, err := net.Listen("tcp", "0.0.0.0:"+cfg.GRPCPort)
		if err != nil {
			logger.Error("Failed to listen for gRPC", "error", err, "port", cfg.GRPCPort)
			log.Fatalf("Failed to listen for gRPC: %v", err)
		}
		logger.Info("gRPC server starting", "address", "0.0.0.0:"+cfg.GRPCPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server failed", "error", err)
		}
	}()

	health := handlers.NewHealth().
		Add("store", true, func(ctx context.Context) error {
			_, err := store.List(ctx)
			return err
		}).
		Add("analytics", false, stats.Ping)

	api := handlers.NewAPIHandlers(drafts, cat, formations, ps, stats)
	api.SetAllowedOrigins(cfg.AllowedOrigins)
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           handlers.NewRouter(api, authProvider, health),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcServer.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown incomplete", "error", err)
		}
	}()

	logger.Info("Server starting", "address", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", "error", err)
		log.Fatal(err)
	}
}

// loadCatalog reads PLAYERS_FILE, optionally syncs from the ratings API, and
// falls back to the built-in seed list
func loadCatalog(ctx context.Context, cfg *config.Config) *catalog.Catalog {
	var (
		players []models.Player
		err     error
		source  = "seed"
	)

	if cfg.PlayersSync {
		source = "ratings api"
		fetchCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		players, err = catalog.NewFetcher(catalog.DefaultRatingsURL).Fetch(fetchCtx)
		cancel()
		if err != nil {
			logger.Warn("Ratings sync failed, falling back", "error", err)
			players = nil
		}
	}

	if players == nil && cfg.PlayersFile != "" {
		source = cfg.PlayersFile
		players, err = catalog.LoadFile(cfg.PlayersFile)
		if err != nil {
			logger.Error("Failed to load players file", "error", err, "file", cfg.PlayersFile)
			log.Fatalf("Failed to load players file: %v", err)
		}
	}

	if players == nil {
		source = "seed"
		players = catalog.Seed()
	}

	cat, err := catalog.New(players)
	if err != nil {
		logger.Error("Invalid player catalog", "error", err, "source", source)
		log.Fatalf("Invalid player catalog: %v", err)
	}
	logger.Info("Player catalog loaded", "source", source, "players", cat.Len())
	return cat
}
