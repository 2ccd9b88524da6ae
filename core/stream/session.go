// Package stream implements the bidirectional session protocol used by
// realtime generation backends: connect, configure, start playback,
// drain audio chunks concurrently, stop. Each call is a self-contained
// session over one websocket connection.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mediaforge/logger"
)

// ErrNoData indicates a session ended without receiving a single audio chunk.
var ErrNoData = errors.New("streaming session produced no audio data")

// Dialer opens realtime sessions against one websocket endpoint.
type Dialer struct {
	endpoint string
	dialer   *websocket.Dialer
}

// NewDialer creates a dialer for the given websocket URL.
func NewDialer(endpoint string) *Dialer {
	return &Dialer{
		endpoint: endpoint,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
		},
	}
}

// Connect opens a session for the given model. The caller must Close the
// session on every exit path.
func (d *Dialer) Connect(ctx context.Context, model string) (*Session, error) {
	conn, _, err := d.dialer.DialContext(ctx, d.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.endpoint, err)
	}

	s := &Session{
		id:   uuid.NewString()[:8],
		conn: conn,
	}

	if err := s.send(map[string]any{
		"setup": map[string]any{"model": model},
	}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session setup: %w", err)
	}

	logger.Debug("realtime session opened", logger.String("session", s.id), logger.String("model", model))
	return s, nil
}

// Config carries the generation parameters set before playback starts.
// Fields a vendor does not support are ignored on its side.
type Config struct {
	Prompt      string
	Weight      float64
	BPM         int
	Temperature float64
}

// Session is one open realtime generation session.
type Session struct {
	id   string
	conn *websocket.Conn
}

// ID returns the local correlation id used in logs.
func (s *Session) ID() string {
	return s.id
}

// Configure sets the weighted prompt and generation parameters. Must be
// called before Play.
func (s *Session) Configure(cfg Config) error {
	weight := cfg.Weight
	if weight == 0 {
		weight = 1.0
	}
	if err := s.send(map[string]any{
		"clientContent": map[string]any{
			"weightedPrompts": []map[string]any{
				{"text": cfg.Prompt, "weight": weight},
			},
		},
	}); err != nil {
		return fmt.Errorf("set prompt: %w", err)
	}

	if err := s.send(map[string]any{
		"musicGenerationConfig": map[string]any{
			"bpm":         cfg.BPM,
			"temperature": cfg.Temperature,
		},
	}); err != nil {
		return fmt.Errorf("set generation config: %w", err)
	}
	return nil
}

// Play begins audio emission.
func (s *Session) Play() error {
	return s.send(map[string]any{"playbackControl": "PLAY"})
}

// Stop signals graceful shutdown of audio emission.
func (s *Session) Stop() error {
	return s.send(map[string]any{"playbackControl": "STOP"})
}

// Close tears the connection down.
func (s *Session) Close() error {
	return s.conn.Close()
}

// serverMessage is the subset of the vendor's downstream frames we care
// about. Chunk data arrives base64-encoded and decodes into raw bytes.
type serverMessage struct {
	ServerContent *struct {
		AudioChunks []struct {
			Data []byte `json:"data"`
		} `json:"audioChunks"`
	} `json:"serverContent"`
}

// Capture runs playback for the given duration while a background
// receive goroutine drains incoming chunks in arrival order. The timed
// wait and the receiver run concurrently; on stop the receiver is
// cancelled cooperatively and awaited before the caller may tear the
// session down. Zero received chunks is ErrNoData. Any transport error
// mid-session aborts the capture and the partial audio is discarded,
// since a torn session has unknown chunk boundaries.
func (s *Session) Capture(ctx context.Context, duration time.Duration) ([]byte, error) {
	var chunks [][]byte

	done := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		for {
			select {
			case <-done:
				finished <- nil
				return
			default:
			}

			_, raw, err := s.conn.ReadMessage()
			if err != nil {
				// After cancellation the read is unblocked by a forced
				// deadline; that error is the expected exit, not a failure.
				select {
				case <-done:
					finished <- nil
				default:
					finished <- err
				}
				return
			}

			var msg serverMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				logger.Warn("undecodable session frame", logger.String("session", s.id), logger.ErrorField(err))
				continue
			}
			if msg.ServerContent == nil {
				continue
			}
			for _, chunk := range msg.ServerContent.AudioChunks {
				if len(chunk.Data) > 0 {
					chunks = append(chunks, chunk.Data)
				}
			}
		}
	}()

	if err := s.Play(); err != nil {
		s.cancelReceiver(done)
		<-finished
		return nil, fmt.Errorf("start playback: %w", err)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		_ = s.Stop()
		s.cancelReceiver(done)
		<-finished
		return nil, ctx.Err()
	case err := <-finished:
		// Receiver died mid-capture: transport failure.
		return nil, fmt.Errorf("session receive: %w", err)
	}

	if err := s.Stop(); err != nil {
		logger.Warn("stop failed", logger.String("session", s.id), logger.ErrorField(err))
	}

	s.cancelReceiver(done)
	if err := <-finished; err != nil {
		return nil, fmt.Errorf("session receive: %w", err)
	}

	logger.Debug("capture finished",
		logger.String("session", s.id),
		logger.Int("chunks", len(chunks)))

	if len(chunks) == 0 {
		return nil, ErrNoData
	}

	var total int
	for _, c := range chunks {
		total += len(c)
	}
	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}

// cancelReceiver flips the done flag and forces the pending read to
// return so the receive goroutine can observe cancellation.
func (s *Session) cancelReceiver(done chan struct{}) {
	close(done)
	_ = s.conn.SetReadDeadline(time.Now())
}

func (s *Session) send(v any) error {
	return s.conn.WriteJSON(v)
}
