package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/docufill/docx-fill/internal/config"
	"github.com/docufill/docx-fill/internal/docx"
	"github.com/docufill/docx-fill/internal/oracle"
	"github.com/docufill/docx-fill/internal/server"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// runServer handles server execution with signal handling
func runServer(ctx context.Context, cancel context.CancelFunc, srv *server.Server) {
	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start server in a goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.Run(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		// Wait for server to shutdown
		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// buildOracleClient constructs the oracle client when a credential is
// present. The client's lifecycle is owned here, not by the components that
// use it; without a credential the service runs with the regex scanner only.
func buildOracleClient(cfg *config.Config) *oracle.Client {
	if !cfg.HasOracle() {
		log.Println("No oracle credential found; placeholder detection uses the regex scanner")
		return nil
	}

	client, err := oracle.NewClient(
		cfg.OracleBaseURL,
		cfg.OracleModel,
		cfg.OracleAPIKey,
		time.Duration(cfg.OracleTimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("Failed to create oracle client: %v", err)
	}

	log.Printf("Oracle detection enabled (model %s)", client.Model())

	return client
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load .env before reading configuration; a missing file is fine.
	_ = godotenv.Load()

	// Load configuration from flags
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	// Create the oracle client (optional) and document service
	oracleClient := buildOracleClient(cfg)

	var completer docx.Completer
	var extractor server.ValueExtractor
	if oracleClient != nil {
		completer = oracleClient
		extractor = oracleClient
	}

	documents := docx.NewService(cfg.MaxFileSize, cfg.FillAllOccurrences, completer)

	// Create the HTTP server
	srv, err := server.NewServer(cfg, documents, extractor)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runServer(ctx, cancel, srv)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("docx-fill\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
