package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runBroadcaster(t *testing.T, opts ...Option) (*Broadcaster, context.CancelFunc) {
	t.Helper()
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger, append([]Option{WithHeartbeat(0)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx)
	t.Cleanup(cancel)
	return b, cancel
}

// readFrames collects SSE frames from r until n frames have been read.
func readFrames(t *testing.T, r *bufio.Reader, n int) []string {
	t.Helper()
	var (
		frames []string
		cur    strings.Builder
	)
	for len(frames) < n {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if line == "\n" {
			frames = append(frames, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteString(line)
	}
	return frames
}

func TestBroadcaster_Stream(t *testing.T) {
	b, _ := runBroadcaster(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	first := readFrames(t, reader, 1)
	assert.Contains(t, first[0], "event: connected")
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	b.Broadcast(Event{Event: "hierarchy.built", ID: "42", Data: map[string]any{"total_entities": 3}})

	frames := readFrames(t, reader, 1)
	assert.Contains(t, frames[0], "event: hierarchy.built\n")
	assert.Contains(t, frames[0], "id: 42\n")
	assert.Contains(t, frames[0], `data: {"total_entities":3}`)
}

func TestBroadcaster_ClientDisconnect(t *testing.T) {
	b, _ := runBroadcaster(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	readFrames(t, bufio.NewReader(resp.Body), 1)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	_ = resp.Body.Close()
	require.Eventually(t, func() bool { return b.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBroadcaster_ShutdownEndsStreams(t *testing.T) {
	b, cancel := runBroadcaster(t)
	srv := httptest.NewServer(b)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	reader := bufio.NewReader(resp.Body)
	readFrames(t, reader, 1)

	cancel()
	done := make(chan struct{})
	go func() {
		for {
			if _, err := reader.ReadString('\n'); err != nil {
				close(done)
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream not ended after shutdown")
	}
}

func TestBroadcaster_Replay(t *testing.T) {
	b, _ := runBroadcaster(t, WithReplay(2))
	srv := httptest.NewServer(b)
	defer srv.Close()

	// A live client guarantees the broadcasts below have been processed.
	live, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer live.Body.Close()
	liveReader := bufio.NewReader(live.Body)
	readFrames(t, liveReader, 1)
	require.Eventually(t, func() bool { return b.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for _, id := range []string{"1", "2", "3"} {
		b.Broadcast(Event{Event: "hierarchy.built", ID: id, Data: id})
	}
	readFrames(t, liveReader, 3)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Last-Event-ID", "1")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	frames := readFrames(t, bufio.NewReader(resp.Body), 3)
	assert.Contains(t, frames[0], `"replayed":2`)
	assert.Contains(t, frames[1], "id: 2\n")
	assert.Contains(t, frames[2], "id: 3\n")

	// Everything is older than the history window: replay what is kept.
	resp2, err := http.Get(srv.URL + "?last_event_id=0")
	require.NoError(t, err)
	defer resp2.Body.Close()
	frames = readFrames(t, bufio.NewReader(resp2.Body), 1)
	assert.Contains(t, frames[0], `"replayed":2`)
}

func TestBroadcaster_Heartbeat(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger, WithHeartbeat(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	srv := httptest.NewServer(b)
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	readFrames(t, reader, 1)
	frames := readFrames(t, reader, 1)
	assert.Equal(t, ": ping\n", frames[0])
}

func TestBroadcaster_BroadcastNeverBlocks(t *testing.T) {
	logger := zerolog.Nop()
	b := NewBroadcaster(&logger)
	for range cap(b.events) + 5 {
		b.Broadcast(Event{Event: "pairings.saved"})
	}
	assert.Len(t, b.events, cap(b.events))
}
