// Package rpc serves the query tools over JSON-RPC on a unix socket.
// Clients call trace/* methods and receive trace/updated notifications
// after every rebuild.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/spectrace/spectrace/internal/logger"
	"github.com/spectrace/spectrace/internal/session"
	"github.com/spectrace/spectrace/internal/tools"
	"github.com/spectrace/spectrace/pkg/protocol"
)

var log = logger.ForComponent("rpc")

const methodPrefix = "trace/"

// UpdateNotification is pushed to every connected client after a rebuild
// attempt.
type UpdateNotification struct {
	Spec       string  `json:"spec"`
	Kind       string  `json:"kind"`
	Generation uint64  `json:"generation"`
	Percent    float64 `json:"coverage_percent,omitempty"`
	Error      string  `json:"error,omitempty"`
}

type Server struct {
	socketPath string
	registry   *tools.Registry
	sess       *session.Session

	listener net.Listener
	connMu   sync.Mutex
	conns    map[*jsonrpc2.Conn]bool
	closed   bool
}

func NewServer(socketPath string, registry *tools.Registry, sess *session.Session) *Server {
	return &Server{
		socketPath: socketPath,
		registry:   registry,
		sess:       sess,
		conns:      make(map[*jsonrpc2.Conn]bool),
	}
}

// Serve listens on the unix socket and handles connections until ctx is
// done. It blocks.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	// A stale socket from a dead process blocks the bind.
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	s.listener = listener
	log.Info("listening", "socket", s.socketPath)

	events, unsubscribe := s.sess.Subscribe()
	defer unsubscribe()
	go s.broadcastUpdates(ctx, events)

	go func() {
		<-ctx.Done()
		s.shutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.PlainObjectCodec{})
	rpcConn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))

	s.connMu.Lock()
	s.conns[rpcConn] = true
	s.connMu.Unlock()

	go func() {
		<-rpcConn.DisconnectNotify()
		s.connMu.Lock()
		delete(s.conns, rpcConn)
		s.connMu.Unlock()
	}()
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	name, ok := strings.CutPrefix(req.Method, methodPrefix)
	if !ok {
		return nil, &jsonrpc2.Error{
			Code:    protocol.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}

	var params json.RawMessage = []byte("{}")
	if req.Params != nil {
		params = *req.Params
	}

	tool, ok := s.registry.Get(name)
	if !ok {
		return nil, &jsonrpc2.Error{
			Code:    protocol.CodeMethodNotFound,
			Message: fmt.Sprintf("method not found: %s", req.Method),
		}
	}

	result, err := tool.Execute(ctx, params)
	if err != nil {
		return nil, &jsonrpc2.Error{
			Code:    protocol.CodeInvalidParams,
			Message: err.Error(),
		}
	}
	return result, nil
}

func (s *Server) broadcastUpdates(ctx context.Context, events <-chan session.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}

			note := UpdateNotification{
				Spec:       ev.Spec,
				Kind:       string(ev.Kind),
				Generation: ev.Generation,
			}
			if ev.Report != nil {
				note.Percent = ev.Report.Percent()
			}
			if ev.Err != nil {
				note.Error = ev.Err.Error()
			}

			s.connMu.Lock()
			for conn := range s.conns {
				if err := conn.Notify(ctx, "trace/updated", note); err != nil {
					log.Debug("notify failed", "error", err)
				}
			}
			s.connMu.Unlock()
		}
	}
}

func (s *Server) shutdown() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	for conn := range s.conns {
		conn.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
