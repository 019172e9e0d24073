// Command libraryd runs the library lending service: a Postgres-backed
// inventory and borrowing ledger, a Neo4j mirror of borrow
// relationships, and the HTTP API on top.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Emin3mUI/library-management-task/config"
	"github.com/Emin3mUI/library-management-task/graphstore"
	"github.com/Emin3mUI/library-management-task/httpapi"
	"github.com/Emin3mUI/library-management-task/inventorystore"
	"github.com/Emin3mUI/library-management-task/lending"
	"github.com/Emin3mUI/library-management-task/logadapters"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logadapters.NewSlogLogger(slog.NewJSONHandler(os.Stdout, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Primary store: pgx pool + schema bootstrap
	poolConfig, err := cfg.PostgresPGXPoolConfig()
	if err != nil {
		log.Fatalf("Failed to build pool config: %v", err)
	}

	pgxPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to create pgx pool: %v", err)
	}
	defer pgxPool.Close()

	if err = pgxPool.Ping(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	inventory, err := inventorystore.NewStoreFromPGXPool(pgxPool, inventorystore.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create inventory store: %v", err)
	}

	if err = inventory.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Relationship store mirror
	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUsername, cfg.Neo4jPassword, ""))
	if err != nil {
		log.Fatalf("Failed to create neo4j driver: %v", err)
	}

	graph, err := graphstore.New(driver, graphstore.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create graph store: %v", err)
	}

	mirror, err := lending.NewMirrorer(graph,
		lending.WithMirrorQueueSize(cfg.MirrorQueueSize),
		lending.WithMirrorLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create mirror worker: %v", err)
	}

	mirror.Start()

	coordinator, err := lending.NewCoordinator(inventory, mirror, lending.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create lending coordinator: %v", err)
	}

	server, err := httpapi.NewServer(coordinator, inventory, graph, httpapi.WithServerLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	log.Printf("Library lending service listening on %s", cfg.HTTPListenAddr)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err = <-errChan:
		log.Printf("HTTP server failed: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during HTTP shutdown: %v", err)
	}

	// Drain pending mirror writes before closing the driver they target.
	mirror.Close()

	if err = driver.Close(shutdownCtx); err != nil {
		log.Printf("Error closing neo4j driver: %v", err)
	}

	log.Printf("Shutdown complete")
}
