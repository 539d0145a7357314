// Package server exposes the game over a small JSON API for browser
// front-ends.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"adhdrpg/internal/companion"
	"adhdrpg/internal/engine"
)

// Game is the state owner the API serves. *engine.Service implements it.
type Game interface {
	State() engine.GameState
	Dispatch(ctx context.Context, a engine.Action) (engine.Outcome, error)
	Undo(ctx context.Context) (engine.Outcome, error)
	SkillChart() engine.SkillChart
	Analytics(days int) engine.Summary
}

// Chat is the companion as seen by the API. *companion.Companion implements it.
type Chat interface {
	Send(ctx context.Context, message string) (companion.Response, error)
	Status(ctx context.Context) error
}

type Handler struct {
	game Game
	chat Chat
}

// New builds the router. chat may be nil when the companion is disabled.
func New(game Game, chat Chat, origins []string) http.Handler {
	h := &Handler{game: game, chat: chat}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/state", h.GetState).Methods("GET")
	api.HandleFunc("/actions", h.PostAction).Methods("POST")
	api.HandleFunc("/skills", h.GetSkills).Methods("GET")
	api.HandleFunc("/analytics", h.GetAnalytics).Methods("GET")
	api.HandleFunc("/undo", h.PostUndo).Methods("POST")
	api.HandleFunc("/companion/chat", h.PostChat).Methods("POST")
	api.HandleFunc("/companion/status", h.GetCompanionStatus).Methods("GET")

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// Serve runs the API on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type actionRequest struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outcomeResponse struct {
	Action  engine.ActionType `json:"action"`
	Changed bool              `json:"changed"`
	Reason  string            `json:"reason,omitempty"`
	Notices []engine.Notice   `json:"notices"`
	State   engine.GameState  `json:"state"`
}

func toResponse(out engine.Outcome) outcomeResponse {
	notices := out.Notices
	if notices == nil {
		notices = []engine.Notice{}
	}
	return outcomeResponse{
		Action:  out.Action,
		Changed: out.Changed,
		Reason:  out.Reason,
		Notices: notices,
		State:   out.State,
	}
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.State())
}

func (h *Handler) PostAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid request body"})
		return
	}
	action, err := engine.DecodeAction(req.Type, req.Payload)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.dispatch(w, r, func(ctx context.Context) (engine.Outcome, error) {
		return h.game.Dispatch(ctx, action)
	})
}

func (h *Handler) PostUndo(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, h.game.Undo)
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, fn func(context.Context) (engine.Outcome, error)) {
	out, err := fn(r.Context())
	if err != nil {
		var verr engine.ValidationError
		if errors.As(err, &verr) || errors.Is(err, engine.ErrUnknownAction) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		log.Printf("[server] dispatch %s: %v", out.Action, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to apply action"})
		return
	}
	status := http.StatusOK
	if !out.Changed {
		status = http.StatusConflict
	}
	writeJSON(w, status, toResponse(out))
}

func (h *Handler) GetSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.SkillChart())
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 366 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be between 1 and 366"})
			return
		}
		days = n
	}
	writeJSON(w, http.StatusOK, h.game.Analytics(days))
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Text     string           `json:"text"`
	Function string           `json:"function,omitempty"`
	Outcome  *outcomeResponse `json:"outcome,omitempty"`
}

func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: companion.ErrDisabled.Error()})
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}
	resp, err := h.chat.Send(r.Context(), req.Message)
	if err != nil {
		log.Printf("[server] companion chat: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	out := chatResponse{Text: resp.Text, Function: resp.Function}
	if resp.Outcome != nil {
		o := toResponse(*resp.Outcome)
		out.Outcome = &o
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetCompanionStatus(w http.ResponseWriter, r *http.Request) {
	if h.chat == nil {
		writeJSON(w, http.StatusOK, map[string]any{"online": false, "error": companion.ErrDisabled.Error()})
		return
	}
	if err := h.chat.Status(r.Context()); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"online": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"online": true})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
