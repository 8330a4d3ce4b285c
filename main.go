package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/maxswackygames-dev/nexus-chat/config"
	"github.com/maxswackygames-dev/nexus-chat/domain"
	"github.com/maxswackygames-dev/nexus-chat/hub"
	"github.com/maxswackygames-dev/nexus-chat/protocol"
	ws "github.com/maxswackygames-dev/nexus-chat/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.SlogLevel())

	router := hub.New()
	dispatcher := protocol.NewDispatcher(router,
		protocol.WithTypingTTL(cfg.TypingTTL),
		protocol.WithPresenceRetention(cfg.PresenceRetention),
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go dispatcher.Run(sweepCtx, cfg.SweepInterval)

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newMux(cfg, router, dispatcher),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				slog.Info("server shutting down")
				return server.Shutdown(ctx)
			},
			"sweeper": func(context.Context) error {
				stopSweep()
				return nil
			},
		},
	)

	os.Exit(<-wait)
}

func setupLogger(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func newMux(cfg config.Config, router *hub.Hub, dispatcher *protocol.Dispatcher) *http.ServeMux {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.Origins()),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler(upgrader, dispatcher, cfg))
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /stats", statsHandler(router, dispatcher))
	mux.HandleFunc("GET /presence", onlineHandler(dispatcher))
	mux.HandleFunc("GET /presence/{userId}", presenceHandler(dispatcher))
	return mux
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		return lo.Contains(allowed, r.Header.Get("Origin"))
	}
}

func wsHandler(upgrader websocket.Upgrader, dispatcher *protocol.Dispatcher, cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrade error", "error", err)
			return
		}

		wsConn := ws.NewConn(uuid.New().String(), conn, dispatcher,
			ws.WithSendBuffer(cfg.SendBufferSize),
			ws.WithMaxMessageSize(cfg.MaxMessageSize),
		)
		wsConn.Start()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func statsHandler(router domain.Router, dispatcher *protocol.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, clients := router.Stats()
		writeJSON(w, http.StatusOK, map[string]int{
			"rooms":   rooms,
			"clients": clients,
			"users":   dispatcher.Connections().Len(),
			"typing":  dispatcher.Typing().Len(),
		})
	}
}

func onlineHandler(dispatcher *protocol.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]domain.UserID{"online": dispatcher.Presence().Online()})
	}
}

func presenceHandler(dispatcher *protocol.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		p, ok := dispatcher.Presence().Status(domain.UserID(id))
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "presence not found"})
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
