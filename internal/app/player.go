// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates source loading, deck, audio output, remote control and UI
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sendspin/scrub-go/internal/ui"
	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/Sendspin/scrub-go/pkg/audio/decode"
	"github.com/Sendspin/scrub-go/pkg/audio/output"
	"github.com/Sendspin/scrub-go/pkg/deck"
	"github.com/Sendspin/scrub-go/pkg/remote"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// Test tone used when no file is given
	ToneSampleRate = 48000
	ToneChannels   = 2
	ToneSeconds    = 30.0
)

// Config holds player configuration
type Config struct {
	File        string
	Backend     string
	BlockFrames int
	Loop        bool

	// Remote control server
	Remote     bool
	Port       int
	Name       string
	EnableMDNS bool

	UseTUI bool
}

// Player represents the main player application
type Player struct {
	config  Config
	deck    *deck.Deck
	output  output.Output
	server  *remote.Server
	tuiProg *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc

	stopOnce sync.Once
}

// New creates a new player
func New(config Config) *Player {
	if config.Backend == "" {
		config.Backend = "oto"
	}
	if config.Port == 0 {
		config.Port = remote.DefaultPort
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Player{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// LoadSource loads path into a source buffer, or a test tone when path is empty
func LoadSource(path string) (*audio.SourceBuffer, string, error) {
	if path == "" {
		buf, err := audio.NewToneBuffer(ToneSampleRate, ToneChannels, ToneSeconds)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build test tone: %w", err)
		}
		log.Printf("No file given, using test tone (%.0fs)", ToneSeconds)
		return buf, "Test Tone", nil
	}

	buf, _, err := decode.Load(path)
	if err != nil {
		return nil, "", err
	}
	return buf, decode.Title(path), nil
}

// Deck returns the player's deck (nil before Start)
func (p *Player) Deck() *deck.Deck {
	return p.deck
}

// Start starts the player and blocks until Stop or the TUI quits
func (p *Player) Start() error {
	src, title, err := LoadSource(p.config.File)
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}

	d, err := deck.New(src, deck.Config{
		BlockFrames: p.config.BlockFrames,
		Loop:        p.config.Loop,
		Title:       title,
	})
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}
	p.deck = d

	out, err := output.New(p.config.Backend)
	if err != nil {
		return err
	}
	if err := out.Open(d.SampleRate(), d.Channels(), d); err != nil {
		return fmt.Errorf("failed to open %s output: %w", p.config.Backend, err)
	}
	p.output = out

	if p.config.Remote {
		if err := p.startRemote(); err != nil {
			return err
		}
	}

	if p.config.UseTUI {
		p.tuiProg = ui.Run(d, p.config.Backend)
		go func() {
			if _, err := p.tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			p.cancel()
		}()

		if p.server != nil {
			go p.remoteUpdateLoop()
		}
	}

	d.Play()
	log.Printf("Playing %s (%d frames, %dHz/%dch)", title, src.Frames(), src.SampleRate(), src.Channels())

	<-p.ctx.Done()

	return nil
}

// startRemote serves the deck to remote controllers. The local device
// drains the deck, so the server does not stream audio.
func (p *Player) startRemote() error {
	server, err := remote.NewServer(remote.ServerConfig{
		Port:       p.config.Port,
		Name:       p.config.Name,
		Controller: p.deck,
		EnableMDNS: p.config.EnableMDNS,
	})
	if err != nil {
		return fmt.Errorf("failed to create remote server: %w", err)
	}
	p.server = server

	go func() {
		if err := server.Start(); err != nil {
			log.Printf("Remote server error: %v", err)
		}
	}()

	return nil
}

// remoteUpdateLoop reports remote clients to the TUI
func (p *Player) remoteUpdateLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	addr := fmt.Sprintf(":%d", p.config.Port)
	for {
		select {
		case <-ticker.C:
			ui.UpdateRemote(p.tuiProg, addr, len(p.server.Clients()))
		case <-p.ctx.Done():
			return
		}
	}
}

// Done is closed when the player stops
func (p *Player) Done() <-chan struct{} {
	return p.ctx.Done()
}

// Stop stops the player. It is safe to call more than once.
func (p *Player) Stop() {
	p.cancel()
	p.stopOnce.Do(p.shutdown)
}

func (p *Player) shutdown() {
	if p.server != nil {
		p.server.Stop()
	}

	if p.output != nil {
		if err := p.output.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}

	if p.deck != nil {
		p.deck.Close()
	}

	if p.tuiProg != nil {
		p.tuiProg.Quit()
	}
}
