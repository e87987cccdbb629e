// ABOUTME: Command-line scrub remote
// ABOUTME: Finds a scrub server, performs a scripted scrub sweep and reports feedback
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sendspin/scrub-go/internal/discovery"
	"github.com/Sendspin/scrub-go/internal/version"
	"github.com/Sendspin/scrub-go/pkg/audio"
	"github.com/Sendspin/scrub-go/pkg/audio/decode"
	"github.com/Sendspin/scrub-go/pkg/protocol"
	"github.com/google/uuid"
)

var (
	serverAddr = flag.String("server", "", "Manual server address host:port (skip mDNS)")
	timeout    = flag.Duration("timeout", 5*time.Second, "mDNS discovery timeout")
	name       = flag.String("name", "", "Remote friendly name (default: hostname-scrub-remote)")
	speed      = flag.Float64("speed", 1.5, "Sweep speed relative to real time")
	sweep      = flag.Duration("sweep", time.Second, "Duration of each sweep direction")
	hold       = flag.Duration("hold", 500*time.Millisecond, "Pause between forward and backward sweeps")
	listen     = flag.Bool("listen", false, "Also join as a listener and decode the audio stream")
)

// moveInterval matches a typical pointer event rate
const moveInterval = 20 * time.Millisecond

func main() {
	flag.Parse()

	remoteName := *name
	if remoteName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		remoteName = fmt.Sprintf("%s-scrub-remote", hostname)
	}

	addr := *serverAddr
	if addr == "" {
		log.Printf("Browsing for scrub servers...")
		disc := discovery.NewManager(discovery.Config{})
		server, err := disc.Discover(*timeout)
		disc.Stop()
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
		addr = server.Addr()
		log.Printf("Discovered %s at %s", server.Name, addr)
	}

	roles := []string{protocol.RoleController}
	var support *protocol.ListenerV1Support
	if *listen {
		roles = append(roles, protocol.RoleListener)
		support = &protocol.ListenerV1Support{
			SupportedFormats: []protocol.AudioFormat{
				{Codec: "opus", Channels: 2, SampleRate: 48000, BitDepth: 16},
				{Codec: "pcm", Channels: 2, SampleRate: 48000, BitDepth: 16},
				{Codec: "pcm", Channels: 2, SampleRate: 44100, BitDepth: 16},
			},
			BufferCapacity: 1048576,
		}
	}

	client := protocol.NewClient(protocol.Config{
		ServerAddr: addr,
		ClientID:   uuid.New().String(),
		Name:       remoteName,
		Version:    1,
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
		Roles:             roles,
		ListenerV1Support: support,
	})

	if err := client.Connect(); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer client.Close()

	if *listen {
		go receiveAudio(client)
	}

	// Initial state tells us where the deck is
	var state protocol.ServerState
	select {
	case state = <-client.ServerState:
	case <-time.After(5 * time.Second):
		log.Fatalf("No server/state received")
	}
	log.Printf("Deck: %q at frame %d of %d (%dHz)", state.Title, state.Position, state.Frames, state.SampleRate)

	go reportState(client)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- runSweep(client, state)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("Sweep failed: %v", err)
		}
	case <-sigChan:
		log.Printf("Interrupted, ending scrub")
		client.EndScrub()
	case <-client.Done():
		log.Printf("Server closed the connection")
		return
	}

	client.SendGoodbye("user_request")
	log.Printf("Done")
}

// runSweep scrubs forward, holds still, then scrubs back
func runSweep(client *protocol.Client, state protocol.ServerState) error {
	velocity := *speed * 100
	step := int(*speed * float64(state.SampleRate) * moveInterval.Seconds())
	if step < 1 {
		step = 1
	}

	if err := client.BeginScrub(); err != nil {
		return fmt.Errorf("scrub/start: %w", err)
	}
	log.Printf("Scrub started at frame %d, %d frames per move at %.0f%%", state.Position, step, velocity)

	target := state.Position
	moves := int(*sweep / moveInterval)

	move := func(delta int) error {
		target += delta
		if target < 0 {
			target = 0
		}
		if target > state.Frames-1 {
			target = state.Frames - 1
		}
		return client.ScrubTo(target, velocity)
	}

	for i := 0; i < moves; i++ {
		if err := move(step); err != nil {
			return fmt.Errorf("scrub/move: %w", err)
		}
		time.Sleep(moveInterval)
	}

	log.Printf("Holding at frame %d", target)
	time.Sleep(*hold)

	for i := 0; i < moves; i++ {
		if err := move(-step); err != nil {
			return fmt.Errorf("scrub/move: %w", err)
		}
		time.Sleep(moveInterval)
	}

	// Let the engine catch up before releasing
	time.Sleep(200 * time.Millisecond)

	if err := client.EndScrub(); err != nil {
		return fmt.Errorf("scrub/end: %w", err)
	}
	log.Printf("Scrub ended at frame %d", target)
	return nil
}

// reportState logs position feedback a few times per second
func reportState(client *protocol.Client) {
	var last time.Time
	for {
		select {
		case state := <-client.ServerState:
			if time.Since(last) < 200*time.Millisecond {
				continue
			}
			last = time.Now()
			mode := "paused"
			switch {
			case state.Scrubbing:
				mode = fmt.Sprintf("scrubbing %.0f%%", state.Velocity)
			case state.Playing:
				mode = "playing"
			}
			log.Printf("Position %d/%d (%s)", state.Position, state.Frames, mode)
		case <-client.Done():
			return
		}
	}
}

// receiveAudio decodes the listener stream and reports throughput
func receiveAudio(client *protocol.Client) {
	var decoder decode.Decoder
	var channels int
	var samples int

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case start := <-client.StreamStart:
			if decoder != nil {
				decoder.Close()
			}
			d, err := decode.New(audio.Format{
				Codec:      start.Codec,
				SampleRate: start.SampleRate,
				Channels:   start.Channels,
				BitDepth:   start.BitDepth,
			})
			if err != nil {
				log.Printf("Failed to create decoder: %v", err)
				continue
			}
			decoder = d
			channels = start.Channels

		case chunk := <-client.AudioChunks:
			if decoder == nil {
				continue
			}
			pcm, err := decoder.Decode(chunk.Data)
			if err != nil {
				log.Printf("Decode error: %v", err)
				continue
			}
			samples += len(pcm)

		case <-ticker.C:
			if channels > 0 && samples > 0 {
				log.Printf("Listener: decoded %d frames", samples/channels)
			}
			samples = 0

		case <-client.Done():
			if decoder != nil {
				decoder.Close()
			}
			return
		}
	}
}
