// ABOUTME: Entry point for the headless scrub server
// ABOUTME: Serves a deck to remote controllers and streams it to listeners
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/scrub-go/internal/app"
	"github.com/Sendspin/scrub-go/internal/server"
	"github.com/Sendspin/scrub-go/pkg/deck"
	"github.com/Sendspin/scrub-go/pkg/remote"
)

var (
	port      = flag.Int("port", 8928, "WebSocket server port")
	name      = flag.String("name", "", "Server friendly name (default: hostname-scrub-server)")
	logFile   = flag.String("log-file", "scrub-server.log", "Log file path")
	debug     = flag.Bool("debug", false, "Enable debug logging")
	noMDNS    = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	audioFile = flag.String("audio", "", "Audio file to serve (MP3, FLAC, WAV). If not specified, serves a test tone")
	loop      = flag.Bool("loop", true, "Loop playback at the end of the file")
	paused    = flag.Bool("paused", false, "Start paused instead of playing")
	noTUI     = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

func main() {
	flag.Parse()

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	if useTUI {
		log.SetOutput(f)
	} else {
		// Log to both file and stdout
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	// Determine server name
	serverName := *name
	if serverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		serverName = fmt.Sprintf("%s-scrub-server", hostname)
	}

	log.Printf("Starting Scrub Server: %s on port %d", serverName, *port)
	if *debug {
		log.Printf("Debug logging enabled")
	}
	log.Printf("Logging to: %s", *logFile)

	src, title, err := app.LoadSource(*audioFile)
	if err != nil {
		log.Fatalf("Failed to load source: %v", err)
	}

	d, err := deck.New(src, deck.Config{Loop: *loop, Title: title})
	if err != nil {
		log.Fatalf("Failed to create deck: %v", err)
	}
	defer d.Close()

	srv, err := remote.NewServer(remote.ServerConfig{
		Port:       *port,
		Name:       serverName,
		Controller: d,
		Stream:     d,
		EnableMDNS: !*noMDNS,
		Debug:      *debug,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if !*paused {
		d.Play()
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var tui *server.ServerTUI
	done := make(chan struct{})
	if useTUI {
		tui = server.NewServerTUI()
		go func() {
			if err := tui.Start(serverName, *port); err != nil {
				log.Printf("TUI error: %v", err)
			}
		}()
		go tuiUpdateLoop(tui, srv, d, serverName, done)
	} else {
		log.Printf("Press Ctrl-C to stop")
	}

	go func() {
		if tui != nil {
			select {
			case sig := <-sigChan:
				log.Printf("Received %v signal, shutting down gracefully...", sig)
			case <-tui.QuitChan():
				log.Printf("Received quit signal from TUI")
			}
		} else {
			sig := <-sigChan
			log.Printf("Received %v signal, shutting down gracefully...", sig)
		}
		srv.Stop()
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	close(done)
	if tui != nil {
		tui.Stop()
	}

	log.Printf("Server stopped")
}

// tuiUpdateLoop pushes deck and client state to the TUI
func tuiUpdateLoop(tui *server.ServerTUI, srv *remote.Server, d *deck.Deck, serverName string, done <-chan struct{}) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			tui.Update(server.ServerStatus{
				Name:    serverName,
				Port:    *port,
				Deck:    d.Status(),
				Clients: srv.Clients(),
			})
		case <-done:
			return
		}
	}
}
