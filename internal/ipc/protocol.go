// Package ipc handles inter-process communication between the daemon
// and renderer clients over a local unix socket. Messages are
// newline-delimited JSON: clients send Requests, the daemon replies
// with Responses, and subscribed clients additionally receive
// server-initiated PushMessages carrying per-tick frame snapshots.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents the type of command
type CommandType string

const (
	CmdStatus    CommandType = "status"
	CmdGetConfig CommandType = "getConfig"
	CmdSetConfig CommandType = "setConfig"
	CmdHistory   CommandType = "history"
	CmdReset     CommandType = "reset"

	// Frame streaming
	CmdSubscribeFrames   CommandType = "subscribeFrames"
	CmdUnsubscribeFrames CommandType = "unsubscribeFrames"
)

// PushMessage represents a server-initiated message (no request needed)
type PushMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Request represents a client request
type Request struct {
	Cmd  CommandType     `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response represents a server response
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// StatusResponse is the response to a status command
type StatusResponse struct {
	BPM         float64 `json:"bpm"`
	Confidence  float64 `json:"confidence"`
	Stable      bool    `json:"stable"`
	Mood        string  `json:"mood"`
	Pattern     string  `json:"pattern"`
	Palette     string  `json:"palette"`
	ColorMode   string  `json:"colorMode"`
	Energy      float64 `json:"energy"`
	Subscribers int     `json:"subscribers"`
}

// ConfigRequest is the data for a setConfig command; nil fields are
// left unchanged
type ConfigRequest struct {
	SampleRate       *int     `json:"sampleRate,omitempty"`
	ChunkSizeMs      *int     `json:"chunkSizeMs,omitempty"`
	MinHoldSec       *float64 `json:"minHoldSec,omitempty"`
	MaxHoldSec       *float64 `json:"maxHoldSec,omitempty"`
	BlacklistSec     *float64 `json:"blacklistSec,omitempty"`
	MorphMs          *int     `json:"morphMs,omitempty"`
	TransitionChance *float64 `json:"transitionChance,omitempty"`
}

// ConfigResponse is the response to a getConfig command
type ConfigResponse struct {
	ConfigPath       string  `json:"configPath"`
	SampleRate       int     `json:"sampleRate"`
	ChunkSizeMs      int     `json:"chunkSizeMs"`
	MinHoldSec       float64 `json:"minHoldSec"`
	MaxHoldSec       float64 `json:"maxHoldSec"`
	BlacklistSec     float64 `json:"blacklistSec"`
	MorphMs          int     `json:"morphMs"`
	TransitionChance float64 `json:"transitionChance"`
}

// TransitionInfo is one transition log entry in a history response
type TransitionInfo struct {
	FromPattern string `json:"fromPattern"`
	ToPattern   string `json:"toPattern"`
	FromPalette string `json:"fromPalette"`
	ToPalette   string `json:"toPalette"`
	Trigger     string `json:"trigger"`
	Timestamp   int64  `json:"timestamp"` // Unix ms
}

// HistoryResponse is the response to a history command
type HistoryResponse struct {
	Transitions []TransitionInfo `json:"transitions"`
}

// EncodeRequest encodes a request to JSON
func EncodeRequest(req *Request) ([]byte, error) {
	return json.Marshal(req)
}

// DecodeRequest decodes a request from JSON
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &req, nil
}

// EncodeResponse encodes a response to JSON
func EncodeResponse(resp *Response) ([]byte, error) {
	return json.Marshal(resp)
}

// DecodeResponse decodes a response from JSON
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// NewSuccessResponse creates a successful response
func NewSuccessResponse(data interface{}) (*Response, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	return &Response{
		Success: true,
		Data:    rawData,
	}, nil
}

// NewErrorResponse creates an error response
func NewErrorResponse(err string) *Response {
	return &Response{
		Success: false,
		Error:   err,
	}
}

// NewPushMessage creates a push message for streaming data
func NewPushMessage(msgType string, data interface{}) ([]byte, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, err
		}
	}
	msg := PushMessage{
		Type: msgType,
		Data: rawData,
	}
	return json.Marshal(msg)
}
