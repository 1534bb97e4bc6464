// Package wsfeed exposes the event stream to external consumers over a
// websocket endpoint. Each connection gets its own bus subscription, so a
// slow client only ever drops its own events.
package wsfeed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/apexarb/apexarb/internal/events"
	"github.com/apexarb/apexarb/internal/logger"
)

const writeTimeout = 5 * time.Second

// Server streams bus events to websocket clients on /ws.
type Server struct {
	bus    *events.Bus
	logger logger.LoggerInterface
	server *http.Server
}

// New creates a feed server listening on the given port.
func New(port int, bus *events.Bus, log logger.LoggerInterface) *Server {
	s := &Server{bus: bus, logger: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handle)
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start serves until Stop is called. It blocks.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "event feed listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	stream, cancel := s.bus.Subscribe()
	defer cancel()

	s.logger.Info(ctx, "feed client connected", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		case ev, ok := <-stream:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "stream closed")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, conn, ev)
			cancelWrite()
			if err != nil {
				s.logger.Debug(ctx, "feed client dropped", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}
