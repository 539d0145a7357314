package companion

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

	"adhdrpg/internal/engine"
)

func TestHTTPClientChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Message)
		assert.Equal(t, 1, req.GameState.Player.Level)
		_, _ = w.Write([]byte(`{"text":"hi there","functionCall":{"name":"get_player_status","arguments":{}}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL+"/", time.Second)
	reply, err := c.Chat(context.Background(), Request{Message: "hello", GameState: engine.NewGameState(7)})
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply.Text)
	require.NotNil(t, reply.FunctionCall)
	assert.Equal(t, "get_player_status", reply.FunctionCall.Name)
}

func TestHTTPClientUnexpectedReplies(t *testing.T) {
	bodies := []struct {
		status int
		body   string
	}{
		{http.StatusOK, `not json`},
		{http.StatusOK, `{}`},
		{http.StatusBadRequest, `{"text":"bad"}`},
	}
	for _, b := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(b.status)
			_, _ = w.Write([]byte(b.body))
		}))
		reply, err := NewHTTPClient(srv.URL, time.Second).Chat(context.Background(), Request{Message: "x"})
		srv.Close()
		require.NoError(t, err, b.body)
		assert.Equal(t, UnexpectedResponse, reply.Text, b.body)
	}
}

func TestHTTPClientServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	c := NewHTTPClient(srv.URL, time.Second)
	_, err := c.Chat(context.Background(), Request{Message: "x"})
	assert.ErrorIs(t, err, ErrServerUnavailable)
	assert.ErrorIs(t, c.Status(context.Background()), ErrServerUnavailable)
	srv.Close()

	_, err = c.Chat(context.Background(), Request{Message: "x"})
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestMonitorReportsChanges(t *testing.T) {
	var up atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var changes []bool
	client := NewHTTPClient(srv.URL, time.Second)
	m := NewMonitor(client.Status, time.Minute, func(online bool, _ error) {
		changes = append(changes, online)
	})

	assert.Error(t, m.Check(context.Background()))
	assert.False(t, m.Online())

	up.Store(true)
	require.NoError(t, m.Check(context.Background()))
	require.NoError(t, m.Check(context.Background()))
	assert.True(t, m.Online())
	assert.Equal(t, []bool{false, true}, changes)

	online, checked, err := m.Snapshot()
	assert.True(t, online)
	assert.NoError(t, err)
	assert.False(t, checked.IsZero())
}

func TestMonitorRunStopsWithContext(t *testing.T) {
	var calls atomic.Int32
	m := NewMonitor(func(context.Context) error {
		calls.Add(1)
		return nil
	}, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
