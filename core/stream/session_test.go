package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{}

// fakeVendor runs a websocket endpoint that records client frames and
// emits the given audio chunks once playback starts.
type fakeVendor struct {
	t      *testing.T
	chunks [][]byte

	mu     sync.Mutex
	frames []map[string]any
}

func newFakeVendor(t *testing.T, chunks [][]byte) (*fakeVendor, string) {
	v := &fakeVendor{t: t, chunks: chunks}

	srv := httptest.NewServer(http.HandlerFunc(v.handle))
	t.Cleanup(srv.Close)

	return v, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func (v *fakeVendor) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var frame map[string]any
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}
		v.record(frame)

		if frame["playbackControl"] == "PLAY" {
			for _, chunk := range v.chunks {
				msg := map[string]any{
					"serverContent": map[string]any{
						"audioChunks": []map[string]any{{"data": chunk}},
					},
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}
}

func (v *fakeVendor) record(frame map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frames = append(v.frames, frame)
}

func (v *fakeVendor) recorded() []map[string]any {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]map[string]any, len(v.frames))
	copy(out, v.frames)
	return out
}

func TestCaptureConcatenatesChunksInOrder(t *testing.T) {
	_, url := newFakeVendor(t, [][]byte{[]byte("aaa"), []byte("bbb"), []byte("ccc")})

	s, err := NewDialer(url).Connect(context.Background(), "models/test")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Configure(Config{Prompt: "lofi", BPM: 80, Temperature: 1.0}))

	data, err := s.Capture(context.Background(), 300*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, []byte("aaabbbccc"), data)
}

func TestCaptureNoData(t *testing.T) {
	_, url := newFakeVendor(t, nil)

	s, err := NewDialer(url).Connect(context.Background(), "models/test")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Capture(context.Background(), 100*time.Millisecond)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestCaptureContextCancel(t *testing.T) {
	_, url := newFakeVendor(t, nil)

	s, err := NewDialer(url).Connect(context.Background(), "models/test")
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	_, err = s.Capture(ctx, 10*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSessionProtocolFrames(t *testing.T) {
	vendor, url := newFakeVendor(t, [][]byte{[]byte("x")})

	s, err := NewDialer(url).Connect(context.Background(), "models/test")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Configure(Config{Prompt: "warm pads", BPM: 70, Temperature: 1.2}))

	_, err = s.Capture(context.Background(), 200*time.Millisecond)
	require.NoError(t, err)

	// The STOP frame is written as Capture returns and the vendor
	// records it on its own goroutine, so wait for it to land.
	require.Eventually(t, func() bool {
		return len(vendor.recorded()) >= 5
	}, 2*time.Second, 10*time.Millisecond)
	frames := vendor.recorded()

	setup, ok := frames[0]["setup"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "models/test", setup["model"])

	content, ok := frames[1]["clientContent"].(map[string]any)
	require.True(t, ok)
	prompts, ok := content["weightedPrompts"].([]any)
	require.True(t, ok)
	first := prompts[0].(map[string]any)
	assert.Equal(t, "warm pads", first["text"])
	assert.Equal(t, 1.0, first["weight"])

	genCfg, ok := frames[2]["musicGenerationConfig"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(70), genCfg["bpm"])

	assert.Equal(t, "PLAY", frames[3]["playbackControl"])
	assert.Equal(t, "STOP", frames[4]["playbackControl"])
}

func TestSessionID(t *testing.T) {
	_, url := newFakeVendor(t, nil)

	s, err := NewDialer(url).Connect(context.Background(), "models/test")
	require.NoError(t, err)
	defer s.Close()

	assert.Len(t, s.ID(), 8)
}
