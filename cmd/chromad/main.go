// Package main is the entry point for the chromad daemon.
// chromad is a headless audio-reactive VJ brain: it analyzes a mono
// sample stream, decides pattern/palette/parameter state, and publishes
// per-tick frame snapshots to renderer clients via IPC.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroma-vj/chromad/internal/config"
	"github.com/chroma-vj/chromad/internal/engine"
	"github.com/chroma-vj/chromad/internal/ipc"
)

// Version is set at build time via ldflags
var Version = "dev"

// Flags holds command line options
type Flags struct {
	SocketPath string
	ConfigDir  string
	SampleRate int
	Demo       bool
	Verbose    bool
}

func main() {
	flags := parseFlags()

	if flags.Verbose {
		log.Printf("chromad version %s starting...", Version)
	}

	// Create context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	if err := run(ctx, flags); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func parseFlags() *Flags {
	flags := &Flags{}

	flag.StringVar(&flags.SocketPath, "socket", "", "IPC socket path (default: auto-generated based on UID)")
	flag.StringVar(&flags.ConfigDir, "config", "", "Configuration directory (default: ~/.config/chromad)")
	flag.IntVar(&flags.SampleRate, "rate", 0, "Input sample rate in Hz (default: from config)")
	flag.BoolVar(&flags.Demo, "demo", false, "Generate a built-in demo signal instead of reading stdin")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	// Set defaults
	if flags.ConfigDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to get home directory: %v", err)
		}
		flags.ConfigDir = homeDir + "/.config/chromad"
	}

	return flags
}

func run(ctx context.Context, flags *Flags) error {
	// Initialize config manager
	configMgr := config.NewManager(flags.ConfigDir)
	if err := configMgr.Load(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := configMgr.Get()

	sampleRate := cfg.Audio.SampleRate
	if flags.SampleRate > 0 {
		sampleRate = flags.SampleRate
	}

	socketPath := flags.SocketPath
	if socketPath == "" {
		socketPath = cfg.SocketPath
	}
	if socketPath == "" {
		socketPath = fmt.Sprintf("/tmp/chromad-%d.sock", os.Getuid())
	}

	chunkSizeMs := cfg.Audio.ChunkSizeMs
	if chunkSizeMs <= 0 {
		chunkSizeMs = 100
	}
	chunkSamples := sampleRate * chunkSizeMs / 1000

	// Initialize the decision pipeline
	pipeline, err := engine.New(sampleRate, engine.Options{
		MinHold:          time.Duration(cfg.Director.MinHoldSec * float64(time.Second)),
		MaxHold:          time.Duration(cfg.Director.MaxHoldSec * float64(time.Second)),
		BlacklistFor:     time.Duration(cfg.Director.BlacklistSec * float64(time.Second)),
		MorphDuration:    time.Duration(cfg.Director.MorphMs) * time.Millisecond,
		TransitionChance: cfg.Director.TransitionChance,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	log.Printf("[ENGINE] Pipeline ready: rate=%dHz chunk=%dms", sampleRate, chunkSizeMs)

	// Initialize IPC server
	server := ipc.NewServer(socketPath, configMgr, pipeline)

	// Start the capture loop
	if flags.Demo {
		log.Printf("[AUDIO] Demo signal generator enabled")
		go demoLoop(ctx, pipeline, server, sampleRate, chunkSamples)
	} else {
		log.Printf("[AUDIO] Reading float32 LE samples from stdin")
		go stdinLoop(ctx, pipeline, server, chunkSamples)
	}

	log.Printf("Starting IPC server on %s", socketPath)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("IPC server error: %w", err)
	}

	return nil
}

// stdinLoop reads fixed-size chunks of little-endian float32 samples
// from stdin and ticks the pipeline once per chunk.
func stdinLoop(ctx context.Context, pipeline *engine.Pipeline, server *ipc.Server, chunkSamples int) {
	buf := make([]byte, chunkSamples*4)
	samples := make([]float32, chunkSamples)
	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := io.ReadFull(os.Stdin, buf); err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.Printf("[AUDIO] Read error: %v", err)
			}
			log.Printf("[AUDIO] Input stream ended")
			return
		}

		for i := range samples {
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		}

		now := time.Now()
		delta := now.Sub(lastTick).Seconds()
		lastTick = now

		snap := pipeline.Tick(samples, delta)
		server.PushSnapshot(snap)
	}
}

// demoLoop synthesizes a four-on-the-floor test signal: a 60Hz kick at
// 120 BPM over a quiet mid-range pad. Useful for exercising renderers
// without a capture source.
func demoLoop(ctx context.Context, pipeline *engine.Pipeline, server *ipc.Server, sampleRate, chunkSamples int) {
	ticker := time.NewTicker(time.Duration(chunkSamples) * time.Second / time.Duration(sampleRate))
	defer ticker.Stop()

	samples := make([]float32, chunkSamples)
	var streamPos int
	lastTick := time.Now()

	beatPeriod := sampleRate / 2 // 120 BPM
	kickLen := sampleRate / 20   // 50ms kick

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i := range samples {
			pos := streamPos + i
			t := float64(pos) / float64(sampleRate)

			// Quiet pad at 440Hz
			v := 0.05 * math.Sin(2*math.Pi*440*t)

			// Kick burst at every beat
			if phase := pos % beatPeriod; phase < kickLen {
				env := 1 - float64(phase)/float64(kickLen)
				v += 0.8 * env * math.Sin(2*math.Pi*60*t)
			}

			samples[i] = float32(v)
		}
		streamPos += chunkSamples

		now := time.Now()
		delta := now.Sub(lastTick).Seconds()
		lastTick = now

		snap := pipeline.Tick(samples, delta)
		server.PushSnapshot(snap)
	}
}
