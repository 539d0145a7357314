package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adhdrpg/internal/companion"
	"adhdrpg/internal/engine"
)

type fakeChat struct {
	resp companion.Response
	err  error
}

func (f fakeChat) Send(context.Context, string) (companion.Response, error) { return f.resp, f.err }
func (f fakeChat) Status(context.Context) error                              { return f.err }

func newTestServer(t *testing.T, chat Chat) (*httptest.Server, *engine.Service) {
	t.Helper()
	clock := engine.NewManualClock(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	svc := engine.NewService(context.Background(), nil, engine.WithClock(clock), engine.WithSeed(9))
	srv := httptest.NewServer(New(svc, chat, nil))
	t.Cleanup(srv.Close)
	return srv, svc
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestPostActionAndState(t *testing.T) {
	srv, svc := newTestServer(t, nil)

	resp, body := postJSON(t, srv.URL+"/api/actions", `{"type":"add_quest","payload":{"title":"Tidy desk","xpReward":30}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["changed"])
	assert.Equal(t, "ADD_QUEST", body["action"])

	id := svc.State().Quests[0].ID
	resp, body = postJSON(t, srv.URL+"/api/actions", `{"type":"COMPLETE_QUEST","payload":{"id":"`+id+`"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notices, ok := body["notices"].([]any)
	require.True(t, ok)
	assert.NotNil(t, notices)

	get, err := http.Get(srv.URL + "/api/state")
	require.NoError(t, err)
	defer get.Body.Close()
	var st engine.GameState
	require.NoError(t, json.NewDecoder(get.Body).Decode(&st))
	assert.Equal(t, 30, st.Player.XP)
	assert.Equal(t, engine.StatusCompleted, st.Quests[0].Status)
}

func TestPostActionRejected(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp, body := postJSON(t, srv.URL+"/api/actions", `{"type":"SPEND_GOLD","payload":{"amount":10}}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, body["changed"])
	assert.NotEmpty(t, body["reason"])
}

func TestPostActionBadInput(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	cases := []string{
		`not json`,
		`{"type":"FLY_TO_MOON"}`,
		`{"type":"ADD_QUEST","payload":{"title":""}}`,
		`{"type":"ADD_GOLD","payload":{"amount":"lots"}}`,
	}
	for _, c := range cases {
		resp, body := postJSON(t, srv.URL+"/api/actions", c)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, c)
		assert.NotEmpty(t, body["error"], c)
	}
}

func TestPostUndo(t *testing.T) {
	srv, svc := newTestServer(t, nil)
	ctx := context.Background()
	_, err := svc.Dispatch(ctx, engine.AddGold{Amount: 40})
	require.NoError(t, err)
	_, err = svc.Dispatch(ctx, engine.SpendGold{Amount: 15})
	require.NoError(t, err)

	resp, _ := postJSON(t, srv.URL+"/api/undo", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 40, svc.State().Player.Gold)

	resp, _ = postJSON(t, srv.URL+"/api/undo", `{}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSkillsAndAnalytics(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/skills")
	require.NoError(t, err)
	var chart engine.SkillChart
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chart))
	resp.Body.Close()
	assert.NotEmpty(t, chart.Skills)

	resp, err = http.Get(srv.URL + "/api/analytics?days=3")
	require.NoError(t, err)
	var sum engine.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	resp.Body.Close()
	assert.Len(t, sum.Days, 3)

	resp, err = http.Get(srv.URL + "/api/analytics?days=zero")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCompanionEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, fakeChat{resp: companion.Response{Text: "You got this!"}})

	resp, body := postJSON(t, srv.URL+"/api/companion/chat", `{"message":"help me start"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "You got this!", body["text"])

	resp, body = postJSON(t, srv.URL+"/api/companion/chat", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	get, err := http.Get(srv.URL + "/api/companion/status")
	require.NoError(t, err)
	defer get.Body.Close()
	require.NoError(t, json.NewDecoder(get.Body).Decode(&body))
	assert.Equal(t, true, body["online"])
}

func TestCompanionUnavailable(t *testing.T) {
	srv, _ := newTestServer(t, fakeChat{err: companion.ErrServerUnavailable})
	resp, _ := postJSON(t, srv.URL+"/api/companion/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	disabled, _ := newTestServer(t, nil)
	resp, _ = postJSON(t, disabled.URL+"/api/companion/chat", `{"message":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/actions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
