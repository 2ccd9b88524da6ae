package genclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Status {
	t.Helper()
	var s Status
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func TestStatusState(t *testing.T) {
	assert.Equal(t, "completed", decode(t, `{"status":"COMPLETED"}`).State())
	assert.Equal(t, "queued", decode(t, `{"state":"queued"}`).State())
	assert.Equal(t, "", decode(t, `{"progress":50}`).State())
}

func TestStatusURLShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "direct string",
			raw:  `{"audio_url":"http://x/a.mp3"}`,
			want: "http://x/a.mp3",
		},
		{
			name: "nested object",
			raw:  `{"audio_file":{"audio_url":"http://x/b.mp3"}}`,
			want: "http://x/b.mp3",
		},
		{
			name: "object with plain url",
			raw:  `{"result":{"url":"http://x/c.mp4"}}`,
			want: "http://x/c.mp4",
		},
		{
			name: "list of objects",
			raw:  `{"output":[{"url":"http://x/d.mp3"},{"url":"http://x/e.mp3"}]}`,
			want: "http://x/d.mp3",
		},
		{
			name: "non-url string ignored",
			raw:  `{"audio_url":"pending"}`,
			want: "",
		},
		{
			name: "absent keys",
			raw:  `{"status":"processing"}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := decode(t, tt.raw)
			assert.Equal(t, tt.want, s.URL("audio_file", "audio_url", "url", "output", "result"))
		})
	}
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "bad prompt", decode(t, `{"error":"bad prompt"}`).ErrorMessage())
	assert.Equal(t, "rate limited", decode(t, `{"message":"rate limited"}`).ErrorMessage())
	assert.Equal(t, "", decode(t, `{"status":"ok"}`).ErrorMessage())
}

func TestStatusToleratesUnknownFields(t *testing.T) {
	s := decode(t, `{"status":"completed","new_field":{"a":1},"extra":[1,2]}`)
	assert.Equal(t, "completed", s.State())
}
