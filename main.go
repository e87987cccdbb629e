// ABOUTME: Entry point for the scrub player
// ABOUTME: Parses CLI flags and starts the player application
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sendspin/scrub-go/internal/app"
	"github.com/Sendspin/scrub-go/internal/version"
)

var (
	backend    = flag.String("backend", "oto", "Audio output backend (oto, malgo, portaudio)")
	blockSize  = flag.Int("block", 512, "Engine block size in frames")
	loop       = flag.Bool("loop", false, "Loop playback at the end of the file")
	remoteCtl  = flag.Bool("remote", false, "Accept remote scrub controllers over WebSocket")
	port       = flag.Int("port", 8928, "Remote control port")
	name       = flag.String("name", "", "Player friendly name (default: hostname-scrub-player)")
	noMDNS     = flag.Bool("no-mdns", false, "Disable mDNS advertisement of the remote server")
	logFile    = flag.String("log-file", "scrub-player.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs = flag.Bool("stream-logs", false, "Alias for -no-tui")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [file.mp3|file.flac|file.wav]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		multiWriter := io.MultiWriter(os.Stdout, f)
		log.SetOutput(multiWriter)
	}

	// Determine player name
	playerName := *name
	if playerName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		playerName = fmt.Sprintf("%s-scrub-player", hostname)
	}

	log.Printf("Starting %s %s: %s", version.Product, version.Version, playerName)
	if !useTUI {
		log.Printf("TUI disabled - scrub with a remote controller (-remote)")
	}

	player := app.New(app.Config{
		File:        flag.Arg(0),
		Backend:     *backend,
		BlockFrames: *blockSize,
		Loop:        *loop,
		Remote:      *remoteCtl,
		Port:        *port,
		Name:        playerName,
		EnableMDNS:  !*noMDNS,
		UseTUI:      useTUI,
	})

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			log.Printf("Shutdown signal received")
		case <-player.Done():
		}
		player.Stop()
	}()

	if err := player.Start(); err != nil {
		player.Stop()
		log.Fatalf("Player error: %v", err)
	}

	player.Stop()
	log.Printf("Player stopped")
}
