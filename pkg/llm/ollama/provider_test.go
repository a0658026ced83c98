package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-kbchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

// drainDeltas reads until the channel closes, failing the test if the
// producer goroutine never terminates.
func drainDeltas(t *testing.T, deltas <-chan llm.StreamDelta) []llm.StreamDelta {
	t.Helper()

	var collected []llm.StreamDelta
	timeout := time.After(5 * time.Second)
	for {
		select {
		case d, ok := <-deltas:
			if !ok {
				return collected
			}
			collected = append(collected, d)
		case <-timeout:
			t.Fatalf("stream never closed, got %d deltas", len(collected))
		}
	}
}

func TestStreamForwardsContentDeltas(t *testing.T) {
	srv := streamServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"Hello "},"done":false}` + "\n"))
		w.Write([]byte(`{"message":{"content":"world"},"done":true}` + "\n"))
	})
	p := NewOllamaProvider(srv.URL, "llama3")

	deltas, err := p.Stream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	collected := drainDeltas(t, deltas)
	require.Len(t, collected, 2)
	assert.Equal(t, "Hello ", collected[0].Content)
	assert.Equal(t, "world", collected[1].Content)
	assert.NoError(t, collected[0].Err)
	assert.NoError(t, collected[1].Err)
}

func TestStreamMalformedChunkYieldsError(t *testing.T) {
	srv := streamServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json\n"))
	})
	p := NewOllamaProvider(srv.URL, "llama3")

	deltas, err := p.Stream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	collected := drainDeltas(t, deltas)
	require.Len(t, collected, 1)
	assert.Error(t, collected[0].Err)
}

func TestStreamTerminatesAfterConsumerCancels(t *testing.T) {
	srv := streamServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"first"},"done":false}` + "\n"))
		w.(http.Flusher).Flush()
		// Hold the connection open until the client gives up.
		<-r.Context().Done()
	})
	p := NewOllamaProvider(srv.URL, "llama3")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deltas, err := p.Stream(ctx, []llm.Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)

	select {
	case first := <-deltas:
		assert.Equal(t, "first", first.Content)
	case <-time.After(5 * time.Second):
		t.Fatal("never received the first delta")
	}

	// Walk away mid-stream. The producer hits a read error on the cancelled
	// body and must close the channel instead of blocking on the error send.
	cancel()
	drainDeltas(t, deltas)
}
