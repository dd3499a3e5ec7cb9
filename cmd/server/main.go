/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance dashboard server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags, load optional YAML config
  2. Initialize SQLite store (records, roster, audit log)
  3. Seed the demo roster when the directory is empty
  4. Wire engine, queries, handler, router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config file (optional)
  -port    HTTP server port override
  -db      SQLite database path override
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Configuration schema
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/directory"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *port != 0 {
		cfg.Server.ListenAddr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.Storage.SQLitePath = *dbPath
	}

	// Initialize store; one SQLite database carries records, roster
	// and the audit trail.
	st, err := sqlite.New(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer st.Close()

	// Seed the demo roster on first run so the dashboard is usable
	// straight away.
	roster, err := st.List(context.Background())
	if err != nil {
		log.Fatalf("Failed to read roster: %v", err)
	}
	if len(roster) == 0 {
		if err := directory.SeedDemo(context.Background(), st); err != nil {
			log.Fatalf("Failed to seed roster: %v", err)
		}
		log.Printf("Seeded demo roster (%d identities)", len(directory.DemoRoster()))
	}

	engine := attendance.NewEngine(st)
	engine.Audit = st
	engine.Latency = cfg.Attendance.CommitLatency
	if cfg.Attendance.GeofenceMeters > 0 {
		engine.ThresholdMeters = cfg.Attendance.GeofenceMeters
	}

	handler := api.NewHandler(engine, attendance.NewQueries(st), st)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Attendance server starting on %s", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
