package sse

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-flags/internal/domain"
)

func TestHandler_StreamsEvents(t *testing.T) {
	m, _ := newTestManager(t)
	h := NewHandler(m, slog.New(slog.DiscardHandler))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := domain.WithActor(r.Context(), domain.Actor{UserID: "alice"})
		h.ServeHTTP(w, r.WithContext(ctx))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	// Wait until the handler registered its client before emitting.
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	m.Emit(NewFlaggingCreatedEvent(&domain.Flagging{FlagID: "bookmark", EntityType: "node", EntityID: 9, UserID: "alice"}, 1))

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "event: flagging.created") {
			break
		}
	}
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, data, `"flag_id":"bookmark"`)
	assert.Contains(t, data, `"entity_id":9`)
}

func TestHandler_RejectsNonGet(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	h := NewHandler(m, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/events", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
