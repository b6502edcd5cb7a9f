package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/physics/internal/core/observability/log"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WebsocketTransport sends every frame as one binary websocket message.
type WebsocketTransport struct {
	addr   string
	path   string
	hub    *Hub
	logger log.Log

	mu    sync.Mutex
	bound net.Addr
}

var _ Transport = (*WebsocketTransport)(nil)

func NewWebsocketTransport(addr, path string, hub *Hub, logger log.Log) *WebsocketTransport {
	if path == "" {
		path = "/"
	}
	return &WebsocketTransport{addr: addr, path: path, hub: hub, logger: logger}
}

func (t *WebsocketTransport) Name() string { return "websocket" }

func (t *WebsocketTransport) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bound
}

// Handler serves the snapshot endpoint.
func (t *WebsocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(t.path, t.handleViewer)
	return mux
}

func (t *WebsocketTransport) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", t.addr)
	}
	t.mu.Lock()
	t.bound = listener.Addr()
	t.mu.Unlock()

	srv := &http.Server{Handler: t.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), writeWait)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	t.logger.Info("websocket replication listening", log.String("addr", listener.Addr().String()), log.String("path", t.path))
	if err = srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve websocket")
	}
	return ctx.Err()
}

func (t *WebsocketTransport) handleViewer(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		t.logger.Warn("websocket upgrade failed", log.String("remote", r.RemoteAddr), log.Error(err))
		return
	}

	viewer := t.hub.Register(r.RemoteAddr)
	logger := t.logger.With(log.String("viewer", viewer.ID.String()))
	logger.Info("viewer connected", log.String("remote", viewer.Remote))

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	defer func() {
		t.hub.Unregister(viewer.ID)
		_ = conn.Close()
		logger.Info("viewer disconnected", log.Uint64("dropped", viewer.Dropped()))
	}()

	for {
		select {
		case frame, ok := <-viewer.Frames():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				logger.Debug("viewer write failed", log.Error(err))
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
