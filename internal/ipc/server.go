package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/chroma-vj/chromad/internal/config"
	"github.com/chroma-vj/chromad/internal/engine"
)

// Server handles IPC communication with renderer clients
type Server struct {
	socketPath string
	configMgr  *config.Manager
	pipeline   *engine.Pipeline
	listener   net.Listener

	mu      sync.Mutex
	clients map[net.Conn]struct{}

	// Frame streaming (callback-based, no polling)
	frameSubsMu sync.RWMutex
	frameSubs   map[net.Conn]bool

	frameLogCounter int // For throttled frame debug logging
}

// NewServer creates a new IPC server
func NewServer(socketPath string, configMgr *config.Manager, pipeline *engine.Pipeline) *Server {
	return &Server{
		socketPath: socketPath,
		configMgr:  configMgr,
		pipeline:   pipeline,
		clients:    make(map[net.Conn]struct{}),
		frameSubs:  make(map[net.Conn]bool),
	}
}

// Start starts the IPC server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	// Remove existing socket file if it exists
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	log.Printf("[IPC] Creating socket at %s", s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions (user-only)
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("[IPC] Server listening, waiting for connections...")

	go s.acceptLoop(ctx)

	<-ctx.Done()

	log.Printf("[IPC] Shutting down server...")

	s.mu.Lock()
	clientCount := len(s.clients)
	for conn := range s.clients {
		conn.Close()
	}
	s.mu.Unlock()

	log.Printf("[IPC] Closed %d client connections", clientCount)

	listener.Close()
	os.RemoveAll(s.socketPath)

	log.Printf("[IPC] Server stopped")

	return nil
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
				log.Printf("[IPC] Accept error: %v", err)
				continue
			}
		}

		s.mu.Lock()
		s.clients[conn] = struct{}{}
		clientCount := len(s.clients)
		s.mu.Unlock()

		log.Printf("[IPC] New client connection (active: %d)", clientCount)

		go s.handleConnection(ctx, conn)
	}
}

func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.clients, conn)
		clientCount := len(s.clients)
		s.mu.Unlock()
		// Remove from frame subscribers
		s.frameSubsMu.Lock()
		delete(s.frameSubs, conn)
		s.frameSubsMu.Unlock()
		log.Printf("[IPC] Client disconnected (active: %d)", clientCount)
	}()

	reader := bufio.NewReader(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Read line (newline-delimited JSON)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("[IPC] Read error: %v", err)
			}
			return
		}

		req, err := DecodeRequest(line)
		if err != nil {
			log.Printf("[IPC] Invalid request format: %v", err)
			s.sendError(conn, "invalid request format")
			continue
		}

		// Status is polled by HUD clients; keep it out of the log
		if req.Cmd != CmdStatus {
			log.Printf("[IPC] Command: %s", req.Cmd)
		}

		resp := s.handleRequest(conn, req)

		if err := s.sendResponse(conn, resp); err != nil {
			log.Printf("[IPC] Send error: %v", err)
			return
		}
	}
}

func (s *Server) handleRequest(conn net.Conn, req *Request) *Response {
	switch req.Cmd {
	case CmdStatus:
		return s.handleStatus()
	case CmdGetConfig:
		return s.handleGetConfig()
	case CmdSetConfig:
		return s.handleSetConfig(req)
	case CmdHistory:
		return s.handleHistory()
	case CmdReset:
		return s.handleReset()
	case CmdSubscribeFrames:
		return s.handleSubscribeFrames(conn)
	case CmdUnsubscribeFrames:
		return s.handleUnsubscribeFrames(conn)
	default:
		return NewErrorResponse("unknown command")
	}
}

func (s *Server) handleStatus() *Response {
	snap := s.pipeline.Snapshot()

	s.frameSubsMu.RLock()
	subs := len(s.frameSubs)
	s.frameSubsMu.RUnlock()

	resp, err := NewSuccessResponse(StatusResponse{
		BPM:         snap.Tempo.BPM,
		Confidence:  snap.Tempo.Confidence,
		Stable:      snap.Tempo.Stable,
		Mood:        snap.Mood,
		Pattern:     snap.Display.Pattern.String(),
		Palette:     snap.Display.Palette.String(),
		ColorMode:   snap.Display.ColorMode.String(),
		Energy:      snap.Features.Overall,
		Subscribers: subs,
	})
	if err != nil {
		return NewErrorResponse("internal error")
	}
	return resp
}

func (s *Server) handleGetConfig() *Response {
	cfg := s.configMgr.Get()

	resp, err := NewSuccessResponse(ConfigResponse{
		ConfigPath:       s.configMgr.GetPath(),
		SampleRate:       cfg.Audio.SampleRate,
		ChunkSizeMs:      cfg.Audio.ChunkSizeMs,
		MinHoldSec:       cfg.Director.MinHoldSec,
		MaxHoldSec:       cfg.Director.MaxHoldSec,
		BlacklistSec:     cfg.Director.BlacklistSec,
		MorphMs:          cfg.Director.MorphMs,
		TransitionChance: cfg.Director.TransitionChance,
	})
	if err != nil {
		return NewErrorResponse("internal error")
	}
	return resp
}

func (s *Server) handleSetConfig(req *Request) *Response {
	log.Printf("[CONFIG] Set config requested")
	var cfgReq ConfigRequest
	if err := json.Unmarshal(req.Data, &cfgReq); err != nil {
		return NewErrorResponse("invalid config request")
	}

	cfg := s.configMgr.Get()

	// Update fields if provided
	if cfgReq.SampleRate != nil {
		cfg.Audio.SampleRate = *cfgReq.SampleRate
	}
	if cfgReq.ChunkSizeMs != nil {
		cfg.Audio.ChunkSizeMs = *cfgReq.ChunkSizeMs
	}
	if cfgReq.MinHoldSec != nil {
		cfg.Director.MinHoldSec = *cfgReq.MinHoldSec
	}
	if cfgReq.MaxHoldSec != nil {
		cfg.Director.MaxHoldSec = *cfgReq.MaxHoldSec
	}
	if cfgReq.BlacklistSec != nil {
		cfg.Director.BlacklistSec = *cfgReq.BlacklistSec
	}
	if cfgReq.MorphMs != nil {
		cfg.Director.MorphMs = *cfgReq.MorphMs
	}
	if cfgReq.TransitionChance != nil {
		cfg.Director.TransitionChance = *cfgReq.TransitionChance
	}

	if err := s.configMgr.Update(cfg); err != nil {
		log.Printf("[CONFIG] Failed to save config: %v", err)
		return NewErrorResponse(fmt.Sprintf("failed to save config: %v", err))
	}

	// Timing changes apply on the next daemon start; the running
	// pipeline keeps the policy it was constructed with
	log.Printf("[CONFIG] Config updated and saved")
	return s.handleGetConfig()
}

func (s *Server) handleHistory() *Response {
	records := s.pipeline.History()

	transitions := make([]TransitionInfo, len(records))
	for i, r := range records {
		transitions[i] = TransitionInfo{
			FromPattern: r.FromPattern.String(),
			ToPattern:   r.ToPattern.String(),
			FromPalette: r.FromPalette.String(),
			ToPalette:   r.ToPalette.String(),
			Trigger:     r.Trigger.String(),
			Timestamp:   r.Timestamp.UnixMilli(),
		}
	}

	resp, err := NewSuccessResponse(HistoryResponse{Transitions: transitions})
	if err != nil {
		return NewErrorResponse("internal error")
	}
	return resp
}

func (s *Server) handleReset() *Response {
	log.Printf("[ENGINE] Tempo reset requested")
	s.pipeline.Reset()
	return s.handleStatus()
}

func (s *Server) sendResponse(conn net.Conn, resp *Response) error {
	data, err := EncodeResponse(resp)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = conn.Write(data)
	return err
}

func (s *Server) sendError(conn net.Conn, msg string) {
	s.sendResponse(conn, NewErrorResponse(msg))
}

// Frame subscription handlers

func (s *Server) handleSubscribeFrames(conn net.Conn) *Response {
	s.frameSubsMu.Lock()
	s.frameSubs[conn] = true
	count := len(s.frameSubs)
	s.frameSubsMu.Unlock()

	log.Printf("[IPC] Client subscribed to frames (total: %d)", count)

	resp, _ := NewSuccessResponse(map[string]bool{"subscribed": true})
	return resp
}

func (s *Server) handleUnsubscribeFrames(conn net.Conn) *Response {
	s.frameSubsMu.Lock()
	delete(s.frameSubs, conn)
	count := len(s.frameSubs)
	s.frameSubsMu.Unlock()

	log.Printf("[IPC] Client unsubscribed from frames (remaining: %d)", count)

	resp, _ := NewSuccessResponse(map[string]bool{"subscribed": false})
	return resp
}

// framePush is the wire shape of a pushed frame
type framePush struct {
	engine.Snapshot
	Timestamp int64 `json:"timestamp"` // Unix ms
}

// PushSnapshot sends one tick's snapshot to every subscribed client.
// Called directly from the analysis loop after each tick, so frames
// reach renderers without a polling timer.
func (s *Server) PushSnapshot(snap engine.Snapshot) {
	s.frameSubsMu.RLock()
	if len(s.frameSubs) == 0 {
		s.frameSubsMu.RUnlock()
		return
	}

	// Copy subscriber list to avoid holding lock during I/O
	subs := make([]net.Conn, 0, len(s.frameSubs))
	for conn := range s.frameSubs {
		subs = append(subs, conn)
	}
	s.frameSubsMu.RUnlock()

	// Debug: log roughly once per second at a 10Hz tick rate
	s.frameLogCounter++
	if s.frameLogCounter%10 == 0 {
		log.Printf("[IPC] Frame: mood=%s pattern=%s bpm=%.0f energy=%.2f subs=%d",
			snap.Mood, snap.Display.Pattern, snap.Tempo.BPM, snap.Features.Overall, len(subs))
	}

	msgBytes, err := NewPushMessage("frame", framePush{
		Snapshot:  snap,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}
	msgBytes = append(msgBytes, '\n')

	for _, conn := range subs {
		if _, err := conn.Write(msgBytes); err != nil {
			// Remove failed connection from subscribers
			s.frameSubsMu.Lock()
			delete(s.frameSubs, conn)
			s.frameSubsMu.Unlock()
		}
	}
}
