// agentstats-collector is the local endpoint the AgentStats hooks POST
// to. It receives telemetry events on /api/events, persists them to
// Meilisearch, and optionally renders a live terminal dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"agentstats-hooks/internal/ingest"
	"agentstats-hooks/internal/store"
	"agentstats-hooks/internal/tui"
)

var version = "dev"

func main() {
	// Local dev convenience: pick up MEILI_* etc. from a .env file.
	_ = godotenv.Load()

	port := flag.String("port", envOrDefault("AGENTSTATS_PORT", "3141"), "HTTP listen port")
	meiliURL := flag.String("meili-url", envOrDefault("MEILI_URL", "http://localhost:7700"), "Meilisearch endpoint")
	meiliKey := flag.String("meili-key", envOrDefault("MEILI_KEY", ""), "Meilisearch API key")
	meiliIndex := flag.String("meili-index", envOrDefault("MEILI_INDEX", "agentstats-events"), "Meilisearch index name")
	withTUI := flag.Bool("tui", false, "render a live dashboard instead of plain output")
	flag.Parse()

	// Connect to Meilisearch — fail fast if unreachable.
	fmt.Printf("Connecting to Meilisearch at %s...\n", *meiliURL)
	ms, err := store.NewMeiliStore(*meiliURL, *meiliKey, *meiliIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer ms.Close()

	srv := ingest.New(ms)

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", "127.0.0.1:"+*port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	actualPort := ln.Addr().(*net.TCPAddr).Port

	// Graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	var shutdownOnce sync.Once
	doShutdown := func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpSrv.Shutdown(shutdownCtx)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case <-sig:
			fmt.Println("\nShutting down...")
			shutdownOnce.Do(doShutdown)
		case <-ctx.Done():
		}
	}()

	if *withTUI {
		// Server in the background, dashboard in the foreground.
		eventCh := make(chan ingest.IngestEvent, 64)
		srv.SetOnIngest(func(evt ingest.IngestEvent) {
			select {
			case eventCh <- evt:
			default: // dashboard lagging — drop rather than block ingest
			}
		})

		go func() {
			if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			close(eventCh)
		}()

		m := tui.NewModel(tui.Config{
			Version:    version,
			MeiliURL:   *meiliURL,
			MeiliIndex: *meiliIndex,
			ListenAddr: fmt.Sprintf("http://localhost:%d", actualPort),
		}, eventCh, ctx, srv.ErrCount())
		if err := tui.Run(m); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		shutdownOnce.Do(doShutdown)
		return
	}

	printBanner(actualPort, *meiliURL, *meiliIndex)

	if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	shutdownOnce.Do(doShutdown)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printBanner(port int, meiliURL, index string) {
	title := fmt.Sprintf("agentstats-collector %s", version)
	sep := strings.Repeat("─", 50)
	fmt.Println(sep)
	fmt.Printf("  %s\n", title)
	fmt.Println(sep)
	fmt.Printf("  Meilisearch: %s (index: %s)\n", meiliURL, index)
	fmt.Printf("  Listening:   http://localhost:%d\n", port)
	fmt.Println("  Endpoints:   POST /api/events  GET /health  GET /stats")
	fmt.Println(sep)
	fmt.Println("  Waiting for events...")
	fmt.Println()
}
