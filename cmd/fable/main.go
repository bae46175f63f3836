// ABOUTME: CLI entrypoint for the fable story collaboration client with TUI and server modes.
// ABOUTME: Wires together the API client, conversation controller, upload flow, and signal handling.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/conversation"
	"github.com/2389-research/fable/diag"
	"github.com/2389-research/fable/server"
	"github.com/2389-research/fable/tui"
	"github.com/2389-research/fable/upload"
)

var version = "dev"

// config holds all CLI configuration parsed from flags.
type config struct {
	serverMode  bool
	port        int
	dbPath      string
	seed        bool
	serverURL   string
	showVersion bool
}

func main() {
	loadDotEnv(".env")

	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("fable %s\n", version)
		os.Exit(0)
	}

	os.Exit(run(cfg))
}

// parseFlags parses command-line flags and returns a populated config.
func parseFlags() config {
	var cfg config

	fs := flag.NewFlagSet("fable", flag.ContinueOnError)
	fs.BoolVar(&cfg.serverMode, "server", false, "Start the development backend instead of the TUI")
	fs.IntVar(&cfg.port, "port", 8000, "Server port (default: 8000)")
	fs.StringVar(&cfg.dbPath, "db", "fable.db", "SQLite database path for the server")
	fs.BoolVar(&cfg.seed, "seed", true, "Seed an empty server database with the sample story")
	fs.StringVar(&cfg.serverURL, "url", "http://localhost:8000", "Backend base URL for the client")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printHelp(os.Stderr, version)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	return cfg
}

// run dispatches to the appropriate mode based on the config.
// Returns an exit code: 0 for success, 1 for failure.
func run(cfg config) int {
	if cfg.serverMode {
		return runServer(cfg)
	}
	return runClient(cfg)
}

// runClient starts the interactive TUI connected to the configured backend.
func runClient(cfg config) int {
	client := api.NewClient(cfg.serverURL)

	// Diagnostics go to the in-app log panel; stderr writes would corrupt
	// the alt screen.
	d := diag.New()
	d.SetQuiet(true)

	controller := conversation.NewController(client, conversation.WithDiagnostics(d))
	flow := upload.NewFlow(client, upload.WithDiagnostics(d))

	// Cancelling the context stops any in-flight dispatch when the TUI exits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := tui.NewAppModel(ctx, controller, client, flow)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}

// runServer starts the development backend HTTP server.
func runServer(cfg config) int {
	srv, err := server.NewServer(server.Config{
		Addr:   fmt.Sprintf("127.0.0.1:%d", cfg.port),
		DBPath: cfg.dbPath,
		Seed:   cfg.seed,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer srv.Close()

	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Fprintln(os.Stderr, "note: OPENAI_API_KEY not set, bot replies use the keyword ladder")
	}

	// Set up context with signal handling for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "listening on 127.0.0.1:%d\n", cfg.port)
	if err := srv.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	return 0
}
