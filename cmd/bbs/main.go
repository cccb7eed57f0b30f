package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brandon541/BBS/internal/config"
	"github.com/Brandon541/BBS/internal/db"
	"github.com/Brandon541/BBS/internal/message"
	"github.com/Brandon541/BBS/internal/ratelimit"
	"github.com/Brandon541/BBS/internal/server"
	"github.com/Brandon541/BBS/internal/session"
	"github.com/Brandon541/BBS/internal/user"
	"github.com/Brandon541/BBS/internal/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	bindAddr := flag.String("bind", "", "override bind address")
	port := flag.Int("port", 0, "override telnet port")
	httpPort := flag.Int("http-port", 0, "override web port")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *bindAddr != "" {
		cfg.Server.BindAddr = *bindAddr
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *httpPort != 0 {
		cfg.Server.HTTPPort = *httpPort
	}

	log.Printf("Starting %s (sysop: %s)", cfg.BBS.Name, cfg.BBS.Sysop)

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.Paths.Data, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Open database
	database, err := db.Open(cfg.Paths.Database)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()
	log.Printf("Database opened: %s", cfg.Paths.Database)

	// Repositories and shared services
	userRepo := user.NewRepo(database.DB)
	messageRepo := message.NewRepo(database.DB)
	limiter := ratelimit.New()
	manager := session.NewManager(userRepo, messageRepo, limiter)

	// --- Telnet server ---
	handler := server.NewHandler(manager, limiter)
	listener := server.NewListener(cfg.Server.BindAddr, cfg.Server.Port, handler.Handle)
	go func() {
		if err := listener.ListenAndServe(); err != nil {
			log.Fatalf("Telnet server error: %v", err)
		}
	}()

	// --- Web server ---
	webServer := web.NewServer(manager, limiter)
	go func() {
		if err := webServer.ListenAndServe(cfg.Server.BindAddr, cfg.Server.HTTPPort); err != nil {
			log.Fatalf("Web server error: %v", err)
		}
	}()

	// Background sweep for timed-out sessions.
	go func() {
		ticker := time.NewTicker(session.CleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			manager.EvictExpired()
		}
	}()

	fmt.Printf("\n%s is running\n", cfg.BBS.Name)
	fmt.Printf("  Telnet: port %d\n", cfg.Server.Port)
	fmt.Printf("  Web:    port %d\n", cfg.Server.HTTPPort)
	fmt.Println("\nPress Ctrl+C to shut down.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Printf("Received signal %v, shutting down...", sig)
	log.Printf("%s shut down complete.", cfg.BBS.Name)
}
