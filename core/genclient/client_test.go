package genclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit(t *testing.T) {
	var gotAuth, gotContentType string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]string{"id": "gen-123"})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	defer c.Close()

	id, err := c.Submit(context.Background(), "/v2/generate/audio", map[string]any{"prompt": "lofi"})
	require.NoError(t, err)
	assert.Equal(t, "gen-123", id)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "lofi", gotPayload["prompt"])
}

func TestSubmitAltIDKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"generation_id": "gen-456"})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	id, err := c.Submit(context.Background(), "/v2/generate/audio", nil)
	require.NoError(t, err)
	assert.Equal(t, "gen-456", id)
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.Submit(context.Background(), "/v2/generate/audio", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmission)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSubmitMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.Submit(context.Background(), "/v2/generate/audio", nil)
	assert.ErrorIs(t, err, ErrSubmission)
}

func TestPollStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gen-9", r.URL.Query().Get("generation_id"))
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "completed",
			"audio_url": "http://example.com/a.mp3",
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	status, err := c.PollStatus(context.Background(), "/v2/generate/audio", "gen-9")
	require.NoError(t, err)
	assert.Equal(t, "completed", status.State())
	assert.Equal(t, "http://example.com/a.mp3", status.URL("audio_url"))
}

func TestWaitForCompletion(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := "processing"
		if polls.Add(1) >= 3 {
			state = "completed"
		}
		json.NewEncoder(w).Encode(map[string]string{"status": state})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	status, err := c.WaitForCompletion(context.Background(), "/v2/generate/audio", "gen-1",
		func(s Status) bool { return s.State() == "completed" },
		time.Millisecond, 10)
	require.NoError(t, err)
	assert.Equal(t, "completed", status.State())
	assert.Equal(t, int32(3), polls.Load())
}

func TestWaitForCompletionBudgetExhausted(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.WaitForCompletion(context.Background(), "/v2/generate/audio", "gen-1",
		func(s Status) bool { return false },
		time.Millisecond, 4)
	assert.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, int32(4), polls.Load())
}

func TestWaitForCompletionContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "processing"})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := New(srv.URL, "k")
	_, err := c.WaitForCompletion(ctx, "/v2/generate/audio", "gen-1",
		func(s Status) bool { return false },
		time.Second, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3 bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	data, err := c.DownloadFile(context.Background(), srv.URL+"/asset.mp3")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), data)
}

func TestDownloadFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.DownloadFile(context.Background(), srv.URL+"/asset.mp3")
	assert.ErrorIs(t, err, ErrDownload)
}
